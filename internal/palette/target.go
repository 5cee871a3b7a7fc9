package palette

// Lightness and saturation targets for the six roles.
const (
	TargetDarkLuma = 0.26
	MaxDarkLuma    = 0.45

	MinLightLuma    = 0.55
	TargetLightLuma = 0.74

	MinNormalLuma    = 0.3
	TargetNormalLuma = 0.5
	MaxNormalLuma    = 0.7

	TargetMutedSaturation = 0.3
	MaxMutedSaturation    = 0.4

	TargetVibrantSaturation = 1.0
	MinVibrantSaturation    = 0.35
)

// Score weights.
const (
	WeightSaturation = 3.0
	WeightLuma       = 6.0
	WeightPopulation = 1.0
)

// Target is the acceptable lightness and saturation range of a role, with
// the ideal value the scoring pulls towards.
type Target struct {
	MinLuma, TargetLuma, MaxLuma                   float64
	MinSaturation, TargetSaturation, MaxSaturation float64
}

// Accepts reports whether the given saturation and lightness fall inside the
// target's inclusive ranges.
func (t Target) Accepts(saturation, luma float64) bool {
	return saturation >= t.MinSaturation && saturation <= t.MaxSaturation &&
		luma >= t.MinLuma && luma <= t.MaxLuma
}

var (
	normalLuma = Target{MinLuma: MinNormalLuma, TargetLuma: TargetNormalLuma, MaxLuma: MaxNormalLuma}
	lightLuma  = Target{MinLuma: MinLightLuma, TargetLuma: TargetLightLuma, MaxLuma: 1.0}
	darkLuma   = Target{MinLuma: 0.0, TargetLuma: TargetDarkLuma, MaxLuma: MaxDarkLuma}
)

func vibrant(t Target) Target {
	t.MinSaturation, t.TargetSaturation, t.MaxSaturation = MinVibrantSaturation, TargetVibrantSaturation, 1.0
	return t
}

func muted(t Target) Target {
	t.MinSaturation, t.TargetSaturation, t.MaxSaturation = 0.0, TargetMutedSaturation, MaxMutedSaturation
	return t
}

// targets maps each role to its target.
var targets = map[Role]Target{
	RoleVibrant:      vibrant(normalLuma),
	RoleLightVibrant: vibrant(lightLuma),
	RoleDarkVibrant:  vibrant(darkLuma),
	RoleMuted:        muted(normalLuma),
	RoleLightMuted:   muted(lightLuma),
	RoleDarkMuted:    muted(darkLuma),
}

// TargetFor returns the target of a role.
func TargetFor(role Role) (Target, bool) {
	t, ok := targets[role]
	return t, ok
}
