package swatch

import (
	"sync"
	"testing"

	"github.com/jmylchreest/vibrance/internal/colour"
)

func TestNewForcesOpaque(t *testing.T) {
	s := New(colour.PackARGB(10, 200, 100, 50), 42)

	if !s.RGB().IsOpaque() {
		t.Errorf("RGB() alpha = %d, want %d", s.RGB().Alpha(), colour.OpaqueAlpha)
	}
	if s.Population() != 42 {
		t.Errorf("Population() = %d, want 42", s.Population())
	}
	if s.Hex() != "#c86432" {
		t.Errorf("Hex() = %s, want #c86432", s.Hex())
	}
}

func TestFromHSL(t *testing.T) {
	s := FromHSL(colour.HSL{H: 0, S: 1, L: 0.5}, 0)
	if s.RGB() != colour.PackRGB(255, 0, 0) {
		t.Errorf("FromHSL(red) = %s, want rgb(255, 0, 0)", s.RGB())
	}
	if s.Population() != 0 {
		t.Errorf("Population() = %d, want 0", s.Population())
	}
}

func TestTextColors(t *testing.T) {
	tests := []struct {
		name      string
		rgb       colour.Color
		wantTitle uint32
		wantBody  uint32
	}{
		{
			name:      "dark swatch",
			rgb:       colour.PackRGB(30, 30, 60),
			wantTitle: colour.White.RGB(),
			wantBody:  colour.White.RGB(),
		},
		{
			name:      "light swatch",
			rgb:       colour.PackRGB(250, 240, 200),
			wantTitle: colour.Black.RGB(),
			wantBody:  colour.Black.RGB(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.rgb, 1)

			title := s.TitleTextColor()
			body := s.BodyTextColor()
			if title.RGB() != tt.wantTitle {
				t.Errorf("TitleTextColor() = %s, want rgb %06x", title, tt.wantTitle)
			}
			if body.RGB() != tt.wantBody {
				t.Errorf("BodyTextColor() = %s, want rgb %06x", body, tt.wantBody)
			}
			// Body text needs more contrast than title text.
			if body.Alpha() < title.Alpha() {
				t.Errorf("body alpha %d < title alpha %d", body.Alpha(), title.Alpha())
			}

			for _, text := range []struct {
				c   colour.Color
				min float64
			}{{title, MinContrastTitleText}, {body, MinContrastBodyText}} {
				ratio, err := colour.ContrastRatio(text.c, s.RGB())
				if err != nil {
					t.Fatal(err)
				}
				if ratio < text.min {
					t.Errorf("contrast of %s = %.2f, want >= %.1f", text.c, ratio, text.min)
				}
			}
		})
	}
}

func TestTextColorsConcurrentAccess(t *testing.T) {
	s := New(colour.PackRGB(90, 30, 160), 5)

	var wg sync.WaitGroup
	results := make([]colour.Color, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.BodyTextColor()
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != results[0] {
			t.Errorf("results[%d] = %s, want %s", i, got, results[0])
		}
	}
}
