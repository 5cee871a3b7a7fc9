package palette

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/vibrance/internal/colour"
	"github.com/jmylchreest/vibrance/internal/swatch"
)

func hslSwatch(h, s, l float64, population int) *swatch.Swatch {
	return swatch.FromHSL(colour.HSL{H: h, S: s, L: l}, population)
}

func TestInvertDiff(t *testing.T) {
	tests := []struct {
		value, target, want float64
	}{
		{value: 0.5, target: 0.5, want: 1},
		{value: 0, target: 0, want: 1},
		{value: 0.2, target: 0.7, want: 0.5},
		{value: 0.7, target: 0.2, want: 0.5},
		{value: 0, target: 1, want: 0},
	}

	for _, tt := range tests {
		if got := invertDiff(tt.value, tt.target); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("invertDiff(%v, %v) = %v, want %v", tt.value, tt.target, got, tt.want)
		}
		if a, b := invertDiff(tt.value, tt.target), invertDiff(tt.target, tt.value); a != b {
			t.Errorf("invertDiff not symmetric for (%v, %v): %v vs %v", tt.value, tt.target, a, b)
		}
	}
}

func TestWeightedMean(t *testing.T) {
	got := weightedMean(weighted{1, 3}, weighted{0.5, 6}, weighted{0, 1})
	if want := 0.6; math.Abs(got-want) > 1e-9 {
		t.Errorf("weightedMean() = %v, want %v", got, want)
	}
	if got := weightedMean(); got != 0 {
		t.Errorf("weightedMean() with no terms = %v, want 0", got)
	}
}

func TestScoreZeroMaxPopulation(t *testing.T) {
	target := targets[RoleVibrant]
	got := score(target, 1.0, 0.5, 10, 0)
	// Saturation and lightness hit the target exactly; population adds nothing.
	if want := 0.9; math.Abs(got-want) > 1e-9 {
		t.Errorf("score() = %v, want %v", got, want)
	}
}

func TestGenerateEmpty(t *testing.T) {
	for _, input := range [][]*swatch.Swatch{nil, {}} {
		p := Generate(input)
		if p.Len() != 0 {
			t.Errorf("Len() = %d, want 0", p.Len())
		}
		for _, role := range AllRoles() {
			if s, ok := p.Swatch(role); ok || s != nil {
				t.Errorf("Swatch(%s) = %v, %v, want nil, false", role, s, ok)
			}
			if got := p.Color(role, colour.White); got != colour.White {
				t.Errorf("Color(%s) = %s, want fallback", role, got)
			}
		}
		if p.String() != "Empty palette" {
			t.Errorf("String() = %q", p.String())
		}
	}
}

func TestGenerateSynthesisesVibrantFromDarkVibrant(t *testing.T) {
	dark := hslSwatch(200, 0.8, 0.25, 10)
	p := Generate([]*swatch.Swatch{dark})

	if got := p.DarkVibrant(); got != dark {
		t.Fatalf("DarkVibrant() = %v, want input swatch", got)
	}

	vib, ok := p.Swatch(RoleVibrant)
	if !ok {
		t.Fatal("vibrant was not synthesised")
	}
	if vib.Population() != 0 {
		t.Errorf("synthesised population = %d, want 0", vib.Population())
	}
	hsl := vib.HSL()
	if math.Abs(hsl.L-TargetNormalLuma) > 0.01 {
		t.Errorf("synthesised lightness = %v, want %v", hsl.L, TargetNormalLuma)
	}
	if math.Abs(hsl.H-dark.HSL().H) > 2 {
		t.Errorf("synthesised hue = %v, want %v", hsl.H, dark.HSL().H)
	}
}

func TestGenerateSynthesisesDarkVibrantFromVibrant(t *testing.T) {
	vib := hslSwatch(120, 0.9, 0.5, 10)
	p := Generate([]*swatch.Swatch{vib})

	if got := p.Vibrant(); got != vib {
		t.Fatalf("Vibrant() = %v, want input swatch", got)
	}
	dark := p.DarkVibrant()
	if dark == nil {
		t.Fatal("dark vibrant was not synthesised")
	}
	if dark.Population() != 0 {
		t.Errorf("synthesised population = %d, want 0", dark.Population())
	}
	if math.Abs(dark.HSL().L-TargetDarkLuma) > 0.01 {
		t.Errorf("synthesised lightness = %v, want %v", dark.HSL().L, TargetDarkLuma)
	}
}

func TestGenerateSwatchClaimedOnce(t *testing.T) {
	// Qualifies as both vibrant and light vibrant.
	s := hslSwatch(280, 0.9, 0.6, 5)
	p := Generate([]*swatch.Swatch{s})

	if p.Vibrant() != s {
		t.Fatalf("Vibrant() = %v, want the only swatch", p.Vibrant())
	}
	if _, ok := p.Swatch(RoleLightVibrant); ok {
		t.Error("light vibrant reused the swatch already chosen as vibrant")
	}
}

func TestGenerateFirstSeenWinsTies(t *testing.T) {
	a := hslSwatch(240, 1.0, 0.5, 7)
	b := hslSwatch(240, 1.0, 0.5, 7)
	p := Generate([]*swatch.Swatch{a, b})

	if p.Vibrant() != a {
		t.Error("tie should resolve to the first swatch")
	}
}

func TestGenerateScoring(t *testing.T) {
	nearTarget := hslSwatch(30, 1.0, 0.5, 1)
	popular := hslSwatch(200, 0.5, 0.65, 100)
	mutedMid := hslSwatch(90, 0.2, 0.5, 40)
	mutedDark := hslSwatch(10, 0.25, 0.2, 40)
	mutedLight := hslSwatch(60, 0.3, 0.8, 40)

	p := Generate([]*swatch.Swatch{popular, nearTarget, mutedMid, mutedDark, mutedLight})

	tests := []struct {
		role Role
		want *swatch.Swatch
	}{
		{RoleVibrant, nearTarget},
		{RoleLightVibrant, popular},
		{RoleMuted, mutedMid},
		{RoleDarkMuted, mutedDark},
		{RoleLightMuted, mutedLight},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, ok := p.Swatch(tt.role)
			if !ok || got != tt.want {
				t.Errorf("Swatch(%s) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}

	if got := p.Color(RoleVibrant, colour.Black); got != nearTarget.RGB() {
		t.Errorf("Color(vibrant) = %s, want %s", got, nearTarget.RGB())
	}
}

func TestRolesOrder(t *testing.T) {
	p := Generate([]*swatch.Swatch{
		hslSwatch(60, 0.3, 0.8, 1),
		hslSwatch(200, 0.9, 0.5, 1),
		hslSwatch(90, 0.2, 0.5, 1),
	})

	var got []Role
	for role := range p.Roles() {
		got = append(got, role)
	}
	want := []Role{RoleVibrant, RoleDarkVibrant, RoleMuted, RoleLightMuted}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Roles() mismatch (-want +got):\n%s", diff)
	}
}

func TestRoleTitle(t *testing.T) {
	tests := map[Role]string{
		RoleVibrant:      "Vibrant",
		RoleDarkMuted:    "Dark Muted",
		RoleLightVibrant: "Light Vibrant",
	}
	for role, want := range tests {
		if got := role.Title(); got != want {
			t.Errorf("%s.Title() = %q, want %q", role, got, want)
		}
	}
}

func TestToJSON(t *testing.T) {
	swatches := []*swatch.Swatch{hslSwatch(200, 0.9, 0.5, 12)}
	p := Generate(swatches)

	data, err := p.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded PaletteJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Roles) != 2 {
		t.Fatalf("roles = %d, want 2", len(decoded.Roles))
	}
	if decoded.Roles[0].Role != RoleVibrant || decoded.Roles[0].Population != 12 {
		t.Errorf("first role = %+v", decoded.Roles[0])
	}
	if decoded.Roles[1].Role != RoleDarkVibrant || decoded.Roles[1].Population != 0 {
		t.Errorf("second role = %+v", decoded.Roles[1])
	}
	if len(decoded.Swatches) != 1 || decoded.Swatches[0].Hex != swatches[0].RGB().Hex() {
		t.Errorf("swatches = %+v", decoded.Swatches)
	}
}

func TestStringWithPreview(t *testing.T) {
	p := Generate([]*swatch.Swatch{hslSwatch(200, 0.9, 0.5, 1234)})

	plain := p.String()
	if strings.Contains(plain, "\033[") {
		t.Error("String() should not contain ANSI codes")
	}
	if !strings.Contains(plain, "Vibrant") || !strings.Contains(plain, "1,234") {
		t.Errorf("String() missing role or population:\n%s", plain)
	}

	if preview := p.StringWithPreview(true); !strings.Contains(preview, "\033[48;2;") {
		t.Error("StringWithPreview(true) should contain background colour codes")
	}
}
