package histogram

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jmylchreest/vibrance/internal/colour"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		pixels     []colour.Color
		wantColors []colour.Color
		wantCounts []int
	}{
		{
			name:   "empty",
			pixels: nil,
		},
		{
			name:       "single pixel",
			pixels:     []colour.Color{0x7F336699},
			wantColors: []colour.Color{0x7F336699},
			wantCounts: []int{1},
		},
		{
			name:       "two dark one light",
			pixels:     []colour.Color{0x7F101010, 0x7F101010, 0x7FF0F0F0},
			wantColors: []colour.Color{0x7F101010, 0x7FF0F0F0},
			wantCounts: []int{2, 1},
		},
		{
			name:       "unsorted input",
			pixels:     []colour.Color{0x7F0000FF, 0x7F00FF00, 0x7F0000FF, 0x7FFF0000, 0x7F00FF00, 0x7F0000FF},
			wantColors: []colour.Color{0x7F0000FF, 0x7F00FF00, 0x7FFF0000},
			wantCounts: []int{3, 2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(tt.pixels)

			if diff := cmp.Diff(tt.wantColors, h.Colors(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Colors() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCounts, h.Counts(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Counts() mismatch (-want +got):\n%s", diff)
			}
			if h.NumberOfColors() != len(tt.wantColors) {
				t.Errorf("NumberOfColors() = %d, want %d", h.NumberOfColors(), len(tt.wantColors))
			}
			if h.Total() != len(tt.pixels) {
				t.Errorf("Total() = %d, want %d", h.Total(), len(tt.pixels))
			}
		})
	}
}

func TestNewConservesPixels(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{1, 2, 17, 1000, 5000} {
		pixels := make([]colour.Color, n)
		for i := range pixels {
			// Small channel range so duplicates are common.
			pixels[i] = colour.PackRGB(uint8(rng.Intn(4)*60), uint8(rng.Intn(4)*60), uint8(rng.Intn(3)*90))
		}

		h := New(pixels)

		sum := 0
		for _, c := range h.Counts() {
			sum += c
		}
		if sum != n {
			t.Errorf("n=%d: sum of counts = %d", n, sum)
		}

		colors := h.Colors()
		for i := 1; i < len(colors); i++ {
			if colors[i] <= colors[i-1] {
				t.Fatalf("n=%d: colours not strictly ascending at %d: %#x <= %#x", n, i, uint32(colors[i]), uint32(colors[i-1]))
			}
		}
	}
}

func TestNewDoesNotMutateInput(t *testing.T) {
	pixels := []colour.Color{3, 1, 2}
	New(pixels)

	if diff := cmp.Diff([]colour.Color{3, 1, 2}, pixels); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestAll(t *testing.T) {
	h := New([]colour.Color{5, 5, 9})

	var got []int
	for c, n := range h.All() {
		got = append(got, int(c), n)
	}

	if diff := cmp.Diff([]int{5, 2, 9, 1}, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}
