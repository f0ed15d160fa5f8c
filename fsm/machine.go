// Package fsm is a small finite-state machine with guarded transitions,
// global ("any-state") transitions and edge-triggered guards.
//
// Transitions are only evaluated by Update. FixedUpdate runs the active
// state's fixed hook and never changes state.
package fsm

import (
	"errors"
	"fmt"
)

var ErrUnknownState = errors.New("fsm: unknown state")

// Hooks is the capability set of a state. Nil hooks are no-ops.
type Hooks struct {
	OnEnter     func()
	OnExit      func()
	Update      func()
	FixedUpdate func()
}

// Transition moves the machine to To when Guard is true.
type Transition[S comparable] struct {
	To    S
	Guard Predicate
}

type node[S comparable] struct {
	state       S
	hooks       Hooks
	transitions []Transition[S]
}

// Machine holds one current state out of a set of registered states.
type Machine[S comparable] struct {
	nodes    map[S]*node[S]
	any      []Transition[S]
	triggers []*Trigger
	current  *node[S]

	onChange func(from, to S)
}

// New returns an empty machine. Call SetState before the first Update.
func New[S comparable]() *Machine[S] {
	return &Machine[S]{nodes: make(map[S]*node[S])}
}

// AddState registers s with its hooks, replacing hooks of an existing state.
func (m *Machine[S]) AddState(s S, hooks Hooks) {
	m.getOrAdd(s).hooks = hooks
}

// At adds a transition from one state to another. Transitions of a state are
// evaluated in the order they were added.
func (m *Machine[S]) At(from, to S, guard Predicate) {
	m.getOrAdd(to)
	n := m.getOrAdd(from)
	n.transitions = append(n.transitions, Transition[S]{To: to, Guard: guard})
}

// Any adds a global transition evaluated before the current state's own
// transitions.
func (m *Machine[S]) Any(to S, guard Predicate) {
	m.getOrAdd(to)
	m.any = append(m.any, Transition[S]{To: to, Guard: guard})
}

// NewTrigger creates an edge-triggered guard owned by the machine.
func (m *Machine[S]) NewTrigger() *Trigger {
	t := &Trigger{}
	m.triggers = append(m.triggers, t)
	return t
}

// OnChange registers a callback invoked after every state change, once the
// new state's OnEnter has run.
func (m *Machine[S]) OnChange(fn func(from, to S)) {
	m.onChange = fn
}

// SetState forces the current state and runs its OnEnter. It does not run
// OnExit on the previous state.
func (m *Machine[S]) SetState(s S) error {
	n, ok := m.nodes[s]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownState, s)
	}
	m.current = n
	if n.hooks.OnEnter != nil {
		n.hooks.OnEnter()
	}
	return nil
}

// Current returns the active state, or the zero value before SetState.
func (m *Machine[S]) Current() S {
	if m.current == nil {
		var zero S
		return zero
	}
	return m.current.state
}

// Started reports whether SetState has been called.
func (m *Machine[S]) Started() bool {
	return m.current != nil
}

// Update evaluates transitions once, switches state if a guard fired, clears
// every trigger and then runs the (possibly new) state's Update hook. It
// reports whether the state changed.
func (m *Machine[S]) Update() bool {
	if m.current == nil {
		return false
	}

	changed := false
	if t, ok := m.transition(); ok {
		changed = m.change(t.To)
	}
	for _, t := range m.triggers {
		t.reset()
	}

	if m.current.hooks.Update != nil {
		m.current.hooks.Update()
	}
	return changed
}

// FixedUpdate runs the current state's FixedUpdate hook.
func (m *Machine[S]) FixedUpdate() {
	if m.current == nil || m.current.hooks.FixedUpdate == nil {
		return
	}
	m.current.hooks.FixedUpdate()
}

func (m *Machine[S]) transition() (Transition[S], bool) {
	for _, t := range m.any {
		if t.Guard != nil && t.Guard() {
			return t, true
		}
	}
	for _, t := range m.current.transitions {
		if t.Guard != nil && t.Guard() {
			return t, true
		}
	}
	return Transition[S]{}, false
}

func (m *Machine[S]) change(to S) bool {
	if to == m.current.state {
		return false
	}
	prev := m.current
	next := m.nodes[to]

	if prev.hooks.OnExit != nil {
		prev.hooks.OnExit()
	}
	m.current = next
	if next.hooks.OnEnter != nil {
		next.hooks.OnEnter()
	}
	if m.onChange != nil {
		m.onChange(prev.state, next.state)
	}
	return true
}

func (m *Machine[S]) getOrAdd(s S) *node[S] {
	n, ok := m.nodes[s]
	if !ok {
		n = &node[S]{state: s}
		m.nodes[s] = n
	}
	return n
}
