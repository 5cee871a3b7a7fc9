// Package palette picks the six themed roles (vibrant, muted and their light
// and dark variants) out of a set of quantized swatches.
package palette

import (
	"strings"

	"github.com/jmylchreest/vibrance/internal/colour"
	"github.com/jmylchreest/vibrance/internal/swatch"
)

// Role names a palette slot.
type Role string

const (
	RoleVibrant      Role = "vibrant"
	RoleLightVibrant Role = "light_vibrant"
	RoleDarkVibrant  Role = "dark_vibrant"
	RoleMuted        Role = "muted"
	RoleLightMuted   Role = "light_muted"
	RoleDarkMuted    Role = "dark_muted"
)

// roleOrder is both the selection order and the iteration order.
var roleOrder = []Role{
	RoleVibrant,
	RoleLightVibrant,
	RoleDarkVibrant,
	RoleMuted,
	RoleLightMuted,
	RoleDarkMuted,
}

// AllRoles returns every role in selection order.
func AllRoles() []Role {
	out := make([]Role, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// IsValidRole checks if the given role name is known.
func IsValidRole(role Role) bool {
	_, ok := targets[role]
	return ok
}

// Title returns the role formatted for display, e.g. "Light Vibrant".
func (r Role) Title() string {
	words := strings.Split(string(r), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Palette holds the swatch chosen for each role. Roles with no suitable
// swatch are left empty.
type Palette struct {
	swatches      []*swatch.Swatch
	roles         map[Role]*swatch.Swatch
	maxPopulation int
}

// Generate selects a swatch for each role from swatches. Roles are filled
// greedily in a fixed order and a swatch is used for at most one role. A
// missing vibrant or dark vibrant swatch is synthesised from the other one
// when possible.
func Generate(swatches []*swatch.Swatch) *Palette {
	p := &Palette{
		swatches:      swatches,
		roles:         make(map[Role]*swatch.Swatch, len(roleOrder)),
		maxPopulation: findMaxPopulation(swatches),
	}

	claimed := make(map[int]struct{}, len(roleOrder))
	for _, role := range roleOrder {
		if i, ok := p.findSwatch(targets[role], claimed); ok {
			p.roles[role] = swatches[i]
			claimed[i] = struct{}{}
		}
	}

	p.generateEmptySwatches()
	return p
}

func findMaxPopulation(swatches []*swatch.Swatch) int {
	population := 0
	for _, s := range swatches {
		if s != nil {
			population = max(population, s.Population())
		}
	}
	return population
}

// findSwatch returns the index of the best unclaimed swatch for the target.
// The first swatch seen wins ties.
func (p *Palette) findSwatch(t Target, claimed map[int]struct{}) (int, bool) {
	best := -1
	var bestScore float64

	for i, s := range p.swatches {
		if s == nil {
			continue
		}
		if _, taken := claimed[i]; taken {
			continue
		}

		hsl := s.HSL()
		if !t.Accepts(hsl.S, hsl.L) {
			continue
		}

		v := score(t, hsl.S, hsl.L, s.Population(), p.maxPopulation)
		if best < 0 || v > bestScore {
			best, bestScore = i, v
		}
	}

	return best, best >= 0
}

// generateEmptySwatches fills vibrant from dark vibrant and dark vibrant from
// vibrant by moving the lightness to the role's target. Synthesised swatches
// have a population of zero.
func (p *Palette) generateEmptySwatches() {
	if _, ok := p.roles[RoleVibrant]; !ok {
		if dark, ok := p.roles[RoleDarkVibrant]; ok {
			hsl := dark.HSL()
			hsl.L = TargetNormalLuma
			p.roles[RoleVibrant] = swatch.FromHSL(hsl, 0)
		}
	}

	if _, ok := p.roles[RoleDarkVibrant]; !ok {
		if vib, ok := p.roles[RoleVibrant]; ok {
			hsl := vib.HSL()
			hsl.L = TargetDarkLuma
			p.roles[RoleDarkVibrant] = swatch.FromHSL(hsl, 0)
		}
	}
}

// Swatch returns the swatch selected for role.
func (p *Palette) Swatch(role Role) (*swatch.Swatch, bool) {
	s, ok := p.roles[role]
	return s, ok
}

// Color returns the colour selected for role, or fallback when the role is
// empty.
func (p *Palette) Color(role Role, fallback colour.Color) colour.Color {
	if s, ok := p.roles[role]; ok {
		return s.RGB()
	}
	return fallback
}

// Vibrant returns the most vibrant swatch, or nil.
func (p *Palette) Vibrant() *swatch.Swatch { return p.roles[RoleVibrant] }

// LightVibrant returns a light and vibrant swatch, or nil.
func (p *Palette) LightVibrant() *swatch.Swatch { return p.roles[RoleLightVibrant] }

// DarkVibrant returns a dark and vibrant swatch, or nil.
func (p *Palette) DarkVibrant() *swatch.Swatch { return p.roles[RoleDarkVibrant] }

// Muted returns a muted swatch, or nil.
func (p *Palette) Muted() *swatch.Swatch { return p.roles[RoleMuted] }

// LightMuted returns a light and muted swatch, or nil.
func (p *Palette) LightMuted() *swatch.Swatch { return p.roles[RoleLightMuted] }

// DarkMuted returns a dark and muted swatch, or nil.
func (p *Palette) DarkMuted() *swatch.Swatch { return p.roles[RoleDarkMuted] }

// Swatches returns the swatches the palette was generated from.
func (p *Palette) Swatches() []*swatch.Swatch {
	return p.swatches
}

// Len returns the number of filled roles.
func (p *Palette) Len() int {
	return len(p.roles)
}

// Roles returns an iterator over the filled roles in selection order.
func (p *Palette) Roles() func(func(Role, *swatch.Swatch) bool) {
	return func(yield func(Role, *swatch.Swatch) bool) {
		for _, role := range roleOrder {
			s, ok := p.roles[role]
			if !ok {
				continue
			}
			if !yield(role, s) {
				return
			}
		}
	}
}
