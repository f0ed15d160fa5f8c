package controller

// State is the locomotion state. Exactly one is active at a time; all
// behavior keyed on it lives in the Controller.
type State int

const (
	Grounded State = iota
	Falling
	Sliding
	Rising
	Jumping
)

func (s State) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case Falling:
		return "falling"
	case Sliding:
		return "sliding"
	case Rising:
		return "rising"
	case Jumping:
		return "jumping"
	default:
		return "unknown"
	}
}

// IsGroundedFamily reports whether the body is supported in s. The ground
// sensor range is extended only in these states.
func (s State) IsGroundedFamily() bool {
	return s == Grounded || s == Sliding
}
