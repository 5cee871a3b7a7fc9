package image

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/jmylchreest/vibrance/internal/colour"
)

// Downscale scales img so that its longest side is at most maxDimension,
// preserving aspect ratio. Images already within bounds, and a maxDimension
// of zero or less, return img unchanged.
func Downscale(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	longest := max(width, height)
	if longest <= maxDimension || width <= 0 || height <= 0 {
		return img
	}

	scale := float64(maxDimension) / float64(longest)
	targetWidth := max(int(math.Round(float64(width)*scale)), 1)
	targetHeight := max(int(math.Round(float64(height)*scale)), 1)

	dst := image.NewNRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// Pixels returns every pixel of img in row-major order as packed colours,
// with alpha mapped from [0, 255] to [0, 127].
func Pixels(img image.Image) []colour.Color {
	bounds := img.Bounds()
	pixels := make([]colour.Color, 0, bounds.Dx()*bounds.Dy())

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, y):nrgba.PixOffset(bounds.Max.X, y)]
			for i := 0; i+3 < len(row); i += 4 {
				pixels = append(pixels, colour.FromColor(color.NRGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]}))
			}
		}
		return pixels
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixels = append(pixels, colour.FromColor(img.At(x, y)))
		}
	}
	return pixels
}
