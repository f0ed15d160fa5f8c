package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state int

const (
	idle state = iota
	walk
	jump
	fall
)

type recorder struct {
	calls []string
}

func (r *recorder) hooks(name string) Hooks {
	return Hooks{
		OnEnter:     func() { r.calls = append(r.calls, "enter:"+name) },
		OnExit:      func() { r.calls = append(r.calls, "exit:"+name) },
		Update:      func() { r.calls = append(r.calls, "update:"+name) },
		FixedUpdate: func() { r.calls = append(r.calls, "fixed:"+name) },
	}
}

func newMachine(r *recorder) *Machine[state] {
	m := New[state]()
	m.AddState(idle, r.hooks("idle"))
	m.AddState(walk, r.hooks("walk"))
	m.AddState(jump, r.hooks("jump"))
	m.AddState(fall, r.hooks("fall"))
	return m
}

func TestTransitionRunsExitThenEnterOnce(t *testing.T) {
	r := &recorder{}
	m := newMachine(r)
	moving := false
	m.At(idle, walk, func() bool { return moving })
	require.NoError(t, m.SetState(idle))
	r.calls = nil

	assert.False(t, m.Update())
	assert.Equal(t, []string{"update:idle"}, r.calls)

	r.calls = nil
	moving = true
	assert.True(t, m.Update())
	assert.Equal(t, walk, m.Current())
	assert.Equal(t, []string{"exit:idle", "enter:walk", "update:walk"}, r.calls)
}

func TestAnyTransitionsWinOverOwnTransitions(t *testing.T) {
	r := &recorder{}
	m := newMachine(r)
	m.At(idle, walk, func() bool { return true })
	m.Any(fall, func() bool { return true })
	require.NoError(t, m.SetState(idle))

	m.Update()
	assert.Equal(t, fall, m.Current())
}

func TestDeclarationOrderBreaksTies(t *testing.T) {
	cases := []struct {
		name  string
		order []state
		want  state
	}{
		{"walk_first", []state{walk, jump, fall}, walk},
		{"jump_first", []state{jump, walk, fall}, jump},
		{"fall_first", []state{fall, jump, walk}, fall},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				m := newMachine(&recorder{})
				for _, to := range c.order {
					m.At(idle, to, func() bool { return true })
				}
				require.NoError(t, m.SetState(idle))
				m.Update()
				require.Equal(t, c.want, m.Current())
			}
		})
	}
}

func TestSelfTransitionSkipsHooks(t *testing.T) {
	r := &recorder{}
	m := newMachine(r)
	m.Any(idle, func() bool { return true })
	m.At(idle, walk, func() bool { return true })
	require.NoError(t, m.SetState(idle))
	r.calls = nil

	assert.False(t, m.Update())
	assert.Equal(t, idle, m.Current())
	assert.Equal(t, []string{"update:idle"}, r.calls)
}

func TestTriggersResetAfterEveryPass(t *testing.T) {
	m := newMachine(&recorder{})
	pressed := m.NewTrigger()
	other := m.NewTrigger()
	m.At(idle, jump, pressed.Predicate())
	m.At(jump, fall, func() bool { return true })
	require.NoError(t, m.SetState(idle))

	// No transition reads other, it is still cleared.
	other.Fire()
	m.Update()
	assert.False(t, other.Fired())

	pressed.Fire()
	other.Fire()
	assert.True(t, m.Update())
	assert.Equal(t, jump, m.Current())
	assert.False(t, pressed.Fired())
	assert.False(t, other.Fired())

	// A stale event must not fire once the machine is back in idle.
	require.NoError(t, m.SetState(idle))
	m.Update()
	assert.Equal(t, idle, m.Current())
}

func TestTriggerClearedWhenNoTransitionFires(t *testing.T) {
	m := newMachine(&recorder{})
	pressed := m.NewTrigger()
	m.At(jump, fall, pressed.Predicate())
	require.NoError(t, m.SetState(idle))

	pressed.Fire()
	assert.False(t, m.Update())
	assert.False(t, pressed.Fired())
}

func TestFixedUpdateDoesNotEvaluateTransitions(t *testing.T) {
	r := &recorder{}
	m := newMachine(r)
	m.At(idle, walk, func() bool { return true })
	require.NoError(t, m.SetState(idle))
	r.calls = nil

	m.FixedUpdate()
	assert.Equal(t, idle, m.Current())
	assert.Equal(t, []string{"fixed:idle"}, r.calls)
}

func TestSetStateUnknown(t *testing.T) {
	m := New[state]()
	err := m.SetState(walk)
	require.ErrorIs(t, err, ErrUnknownState)
	assert.False(t, m.Started())
	assert.False(t, m.Update())

	m.AddState(walk, Hooks{})
	require.NoError(t, m.SetState(walk))
	assert.True(t, m.Started())
}

func TestOnChangeObservesTransitions(t *testing.T) {
	m := newMachine(&recorder{})
	var seen [][2]state
	m.OnChange(func(from, to state) { seen = append(seen, [2]state{from, to}) })
	m.At(idle, walk, func() bool { return true })
	m.At(walk, fall, func() bool { return true })
	require.NoError(t, m.SetState(idle))

	m.Update()
	m.Update()
	assert.Equal(t, [][2]state{{idle, walk}, {walk, fall}}, seen)
}

func TestPredicates(t *testing.T) {
	yes := func() bool { return true }
	no := func() bool { return false }
	flag := false

	cases := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"and_all_true", And(yes, yes), true},
		{"and_one_false", And(yes, no), false},
		{"and_empty", And(), true},
		{"or_one_true", Or(no, yes), true},
		{"or_none", Or(no, no), false},
		{"or_empty", Or(), false},
		{"not", Not(no), true},
		{"not_nil", Not(nil), true},
		{"flag_false", Flag(&flag), false},
		{"nested", And(Or(no, yes), Not(Flag(&flag))), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.p())
		})
	}

	flag = true
	assert.True(t, Flag(&flag)())
}
