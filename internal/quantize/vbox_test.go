package quantize

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/vibrance/internal/colour"
)

// newTestBox builds a box over all colors, each with population 1 unless
// populations is given.
func newTestBox(colors []colour.Color, populations ...int) *VBox {
	space := &colorSpace{
		colors:      colors,
		populations: make(map[colour.Color]int, len(colors)),
	}
	for i, c := range colors {
		p := 1
		if i < len(populations) {
			p = populations[i]
		}
		space.populations[c] = p
	}
	return newVBox(space, 0, len(colors)-1)
}

func TestVBoxVolume(t *testing.T) {
	tests := []struct {
		name   string
		colors []colour.Color
		want   int
	}{
		{
			name:   "single colour",
			colors: []colour.Color{colour.PackRGB(10, 20, 30)},
			want:   1,
		},
		{
			name:   "red span only",
			colors: []colour.Color{colour.PackRGB(10, 20, 30), colour.PackRGB(19, 20, 30)},
			want:   10,
		},
		{
			name:   "all channels",
			colors: []colour.Color{colour.PackRGB(0, 0, 0), colour.PackRGB(1, 2, 3)},
			want:   2 * 3 * 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newTestBox(tt.colors).Volume(); got != tt.want {
				t.Errorf("Volume() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVBoxSplitSingleColour(t *testing.T) {
	box := newTestBox([]colour.Color{colour.PackRGB(1, 2, 3)})

	if box.CanSplit() {
		t.Fatal("CanSplit() = true for a single colour box")
	}
	if _, err := box.Split(); !errors.Is(err, ErrCannotSplit) {
		t.Errorf("Split() error = %v, want %v", err, ErrCannotSplit)
	}
}

func TestVBoxSplitTwoColours(t *testing.T) {
	tests := []struct {
		name   string
		colors []colour.Color
	}{
		{name: "red apart", colors: []colour.Color{colour.PackRGB(10, 0, 0), colour.PackRGB(20, 0, 0)}},
		{name: "green apart", colors: []colour.Color{colour.PackRGB(0, 200, 0), colour.PackRGB(0, 100, 0)}},
		{name: "adjacent blue", colors: []colour.Color{colour.PackRGB(0, 0, 7), colour.PackRGB(0, 0, 8)}},
		{name: "all channels", colors: []colour.Color{colour.PackRGB(255, 255, 255), colour.PackRGB(0, 0, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := newTestBox(tt.colors)

			next, err := box.Split()
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if box.ColorCount() != 1 || next.ColorCount() != 1 {
				t.Fatalf("colour counts = %d, %d, want 1, 1", box.ColorCount(), next.ColorCount())
			}
			if box.CanSplit() || next.CanSplit() {
				t.Error("halves of a two colour box should be terminal")
			}
			if box.Volume() != 1 || next.Volume() != 1 {
				t.Errorf("volumes = %d, %d, want 1, 1", box.Volume(), next.Volume())
			}
		})
	}
}

func TestVBoxSplitAtMidpoint(t *testing.T) {
	colors := []colour.Color{
		colour.PackRGB(210, 100, 100),
		colour.PackRGB(10, 100, 100),
		colour.PackRGB(200, 100, 100),
		colour.PackRGB(20, 100, 100),
	}
	box := newTestBox(colors)

	if got := box.LongestDimension(); got != DimensionRed {
		t.Fatalf("LongestDimension() = %s, want red", got)
	}

	next, err := box.Split()
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	// Midpoint is 110; the first colour at or above it (200) stays in the
	// lower box.
	wantOrder := []colour.Color{
		colour.PackRGB(10, 100, 100),
		colour.PackRGB(20, 100, 100),
		colour.PackRGB(200, 100, 100),
		colour.PackRGB(210, 100, 100),
	}
	if diff := cmp.Diff(wantOrder, colors); diff != "" {
		t.Errorf("colours not sorted by red (-want +got):\n%s", diff)
	}
	if box.ColorCount() != 3 || next.ColorCount() != 1 {
		t.Errorf("colour counts = %d, %d, want 3, 1", box.ColorCount(), next.ColorCount())
	}
	if box.minRed != 10 || box.maxRed != 200 {
		t.Errorf("lower box red bounds = [%d, %d], want [10, 200]", box.minRed, box.maxRed)
	}
	if next.minRed != 210 || next.maxRed != 210 {
		t.Errorf("upper box red bounds = [%d, %d], want [210, 210]", next.minRed, next.maxRed)
	}
}

func TestVBoxSplitStaysInRange(t *testing.T) {
	colors := []colour.Color{
		colour.PackRGB(250, 0, 0),
		colour.PackRGB(0, 0, 90),
		colour.PackRGB(0, 0, 10),
		colour.PackRGB(0, 0, 50),
		colour.PackRGB(1, 1, 1),
	}
	space := &colorSpace{colors: colors, populations: map[colour.Color]int{}}
	for _, c := range colors {
		space.populations[c] = 1
	}

	box := newVBox(space, 1, 3)
	if got := box.LongestDimension(); got != DimensionBlue {
		t.Fatalf("LongestDimension() = %s, want blue", got)
	}
	if _, err := box.Split(); err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	if colors[0] != colour.PackRGB(250, 0, 0) || colors[4] != colour.PackRGB(1, 1, 1) {
		t.Errorf("colours outside the box were modified: %v", colors)
	}
	want := []colour.Color{colour.PackRGB(0, 0, 10), colour.PackRGB(0, 0, 50), colour.PackRGB(0, 0, 90)}
	if diff := cmp.Diff(want, colors[1:4]); diff != "" {
		t.Errorf("box range not sorted by blue (-want +got):\n%s", diff)
	}
}

func TestVBoxLongestDimensionTies(t *testing.T) {
	tests := []struct {
		name   string
		colors []colour.Color
		want   Dimension
	}{
		{
			name:   "all equal prefers red",
			colors: []colour.Color{colour.PackRGB(0, 0, 0), colour.PackRGB(50, 50, 50)},
			want:   DimensionRed,
		},
		{
			name:   "green ties blue prefers green",
			colors: []colour.Color{colour.PackRGB(0, 0, 0), colour.PackRGB(10, 50, 50)},
			want:   DimensionGreen,
		},
		{
			name:   "red ties blue prefers red",
			colors: []colour.Color{colour.PackRGB(0, 0, 0), colour.PackRGB(50, 10, 50)},
			want:   DimensionRed,
		},
		{
			name:   "blue longest",
			colors: []colour.Color{colour.PackRGB(0, 0, 0), colour.PackRGB(10, 20, 30)},
			want:   DimensionBlue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newTestBox(tt.colors).LongestDimension(); got != tt.want {
				t.Errorf("LongestDimension() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVBoxVolumeNeverGrowsOnSplit(t *testing.T) {
	var colors []colour.Color
	for r := 0; r < 256; r += 37 {
		for g := 0; g < 256; g += 53 {
			for b := 0; b < 256; b += 71 {
				colors = append(colors, colour.PackRGB(uint8(r), uint8(g), uint8(b)))
			}
		}
	}

	queue := []*VBox{newTestBox(colors)}
	for len(queue) > 0 {
		box := queue[0]
		queue = queue[1:]
		if !box.CanSplit() {
			continue
		}

		before := box.Volume()
		next, err := box.Split()
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if box.Volume() > before || next.Volume() > before {
			t.Fatalf("volume grew on split: %d -> %d, %d", before, box.Volume(), next.Volume())
		}
		if box.ColorCount() < 1 || next.ColorCount() < 1 {
			t.Fatalf("split produced an empty box")
		}
		queue = append(queue, box, next)
	}
}

func TestVBoxAverageColor(t *testing.T) {
	tests := []struct {
		name        string
		colors      []colour.Color
		populations []int
		want        colour.Color
		wantPop     int
	}{
		{
			name:        "weighted",
			colors:      []colour.Color{colour.PackRGB(100, 0, 40), colour.PackRGB(200, 0, 80)},
			populations: []int{1, 3},
			want:        colour.PackRGB(175, 0, 70),
			wantPop:     4,
		},
		{
			name:        "rounds half up",
			colors:      []colour.Color{colour.PackRGB(10, 10, 10), colour.PackRGB(11, 10, 10)},
			populations: []int{1, 1},
			want:        colour.PackRGB(11, 10, 10),
			wantPop:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestBox(tt.colors, tt.populations...).AverageColor()
			if s.RGB() != tt.want {
				t.Errorf("AverageColor() = %s, want %s", s.RGB(), tt.want)
			}
			if s.Population() != tt.wantPop {
				t.Errorf("Population() = %d, want %d", s.Population(), tt.wantPop)
			}
		})
	}
}
