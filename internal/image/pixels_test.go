package image

import (
	"image"
	"image/color"
	"testing"

	"github.com/jmylchreest/vibrance/internal/colour"
)

func TestDownscale(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxDimension  int
		wantW, wantH  int
	}{
		{name: "landscape", width: 400, height: 200, maxDimension: 100, wantW: 100, wantH: 50},
		{name: "portrait", width: 150, height: 600, maxDimension: 100, wantW: 25, wantH: 100},
		{name: "already small", width: 80, height: 60, maxDimension: 100, wantW: 80, wantH: 60},
		{name: "disabled", width: 400, height: 200, maxDimension: 0, wantW: 400, wantH: 200},
		{name: "thin strip keeps one pixel", width: 1000, height: 1, maxDimension: 10, wantW: 10, wantH: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, tt.width, tt.height))
			got := Downscale(src, tt.maxDimension).Bounds()
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Errorf("Downscale() = %dx%d, want %dx%d", got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDownscaleKeepsSolidColour(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 10, 120, 240, 255
	}

	for _, p := range Pixels(Downscale(src, 16)) {
		if p != colour.PackRGB(10, 120, 240) {
			t.Fatalf("pixel = %s, want rgb(10, 120, 240)", p)
		}
	}
}

func TestPixels(t *testing.T) {
	nrgba := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	nrgba.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	nrgba.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	nrgba.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 0})
	nrgba.SetNRGBA(1, 1, color.NRGBA{R: 9, G: 9, B: 9, A: 255})

	want := []colour.Color{
		colour.PackRGB(255, 0, 0),
		colour.PackRGB(0, 255, 0),
		colour.PackARGB(0, 0, 0, 255),
		colour.PackRGB(9, 9, 9),
	}

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 77})

	tests := []struct {
		name string
		img  image.Image
		want []colour.Color
	}{
		{name: "nrgba fast path", img: nrgba, want: want},
		{name: "sub image", img: nrgba.SubImage(image.Rect(1, 0, 2, 2)), want: []colour.Color{want[1], want[3]}},
		{name: "generic", img: gray, want: []colour.Color{colour.PackRGB(77, 77, 77)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pixels(tt.img)
			if len(got) != len(tt.want) {
				t.Fatalf("Pixels() returned %d pixels, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pixel %d = %08x, want %08x", i, uint32(got[i]), uint32(tt.want[i]))
				}
			}
		})
	}
}
