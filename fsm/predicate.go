package fsm

// Predicate is a transition guard. Guards must not mutate the state they
// observe; side effects belong in Hooks.
type Predicate func() bool

// And is true when every predicate is true. An empty And is true.
func And(preds ...Predicate) Predicate {
	return func() bool {
		for _, p := range preds {
			if p == nil || !p() {
				return false
			}
		}
		return true
	}
}

// Or is true when any predicate is true. An empty Or is false.
func Or(preds ...Predicate) Predicate {
	return func() bool {
		for _, p := range preds {
			if p != nil && p() {
				return true
			}
		}
		return false
	}
}

// Not negates p. A nil predicate counts as false, so Not(nil) is true.
func Not(p Predicate) Predicate {
	return func() bool {
		return p == nil || !p()
	}
}

// Flag lifts a bool pointer into a predicate.
func Flag(b *bool) Predicate {
	return func() bool {
		return b != nil && *b
	}
}

// Trigger is an edge-triggered guard: Fire marks that an event happened and
// the owning Machine clears it after every evaluation pass, whether or not a
// transition fired.
type Trigger struct {
	fired bool
}

// Fire marks the event for the current evaluation pass.
func (t *Trigger) Fire() {
	if t == nil {
		return
	}
	t.fired = true
}

// Fired reports whether the event happened since the last evaluation pass.
// Reading does not consume the event, so several guards may observe it.
func (t *Trigger) Fired() bool {
	return t != nil && t.fired
}

// Predicate returns Fired as a Predicate.
func (t *Trigger) Predicate() Predicate {
	return t.Fired
}

func (t *Trigger) reset() {
	if t == nil {
		return
	}
	t.fired = false
}
