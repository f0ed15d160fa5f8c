package controller

import "github.com/go-gl/mathgl/mgl64"

type EventKind int

const (
	EventJump EventKind = iota
	EventLand
	EventFall
)

func (k EventKind) String() string {
	switch k {
	case EventJump:
		return "jump"
	case EventLand:
		return "land"
	case EventFall:
		return "fall"
	default:
		return "unknown"
	}
}

// Event is a locomotion notification. Momentum is in world space, captured
// when the event happened.
type Event struct {
	Kind     EventKind
	Momentum mgl64.Vec3
	Step     uint64
}

// eventQueue is a FIFO of events, drained to subscribers at the end of every
// Update and FixedUpdate.
type eventQueue struct {
	items []Event
}

func (q *eventQueue) push(evt Event) {
	q.items = append(q.items, evt)
}

func (q *eventQueue) drain() []Event {
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
