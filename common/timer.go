package common

// CountdownTimer counts a fixed duration down to zero. It is advanced
// explicitly with Tick so every reader within one step sees the same value.
type CountdownTimer struct {
	duration  float64
	remaining float64
	running   bool
}

func NewCountdownTimer(duration float64) *CountdownTimer {
	if duration < 0 {
		duration = 0
	}
	return &CountdownTimer{duration: duration}
}

// Start rewinds the timer to its full duration and starts it.
func (t *CountdownTimer) Start() {
	if t == nil {
		return
	}
	t.remaining = t.duration
	t.running = t.duration > 0
}

func (t *CountdownTimer) Stop() {
	if t == nil {
		return
	}
	t.running = false
}

// SetDuration changes the duration used by the next Start.
func (t *CountdownTimer) SetDuration(duration float64) {
	if t == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}
	t.duration = duration
}

func (t *CountdownTimer) Tick(dt float64) {
	if t == nil || !t.running {
		return
	}
	t.remaining -= dt
	if t.remaining <= 0 {
		t.remaining = 0
		t.running = false
	}
}

func (t *CountdownTimer) IsRunning() bool {
	return t != nil && t.running
}

// IsFinished reports whether no time remains. A timer that was never started
// is finished.
func (t *CountdownTimer) IsFinished() bool {
	return t == nil || t.remaining <= 0
}

func (t *CountdownTimer) Remaining() float64 {
	if t == nil {
		return 0
	}
	return t.remaining
}

// Progress returns the elapsed fraction in [0, 1].
func (t *CountdownTimer) Progress() float64 {
	if t == nil || t.duration <= 0 {
		return 1
	}
	return Clamp01(1 - t.remaining/t.duration)
}
