package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountdownTimer(t *testing.T) {
	timer := NewCountdownTimer(0.1)
	assert.True(t, timer.IsFinished(), "unstarted timer is finished")

	timer.Start()
	assert.True(t, timer.IsRunning())
	assert.False(t, timer.IsFinished())

	for i := 0; i < 4; i++ {
		timer.Tick(0.02)
	}
	assert.False(t, timer.IsFinished())
	assert.InDelta(t, 0.8, timer.Progress(), 1e-9)

	timer.Tick(0.02)
	timer.Tick(0.02)
	assert.True(t, timer.IsFinished())
	assert.False(t, timer.IsRunning())
	assert.Equal(t, 0.0, timer.Remaining())

	timer.Start()
	assert.InDelta(t, 0.1, timer.Remaining(), 1e-12)
}

func TestCountdownTimerZeroDuration(t *testing.T) {
	timer := NewCountdownTimer(-1)
	timer.Start()
	assert.True(t, timer.IsFinished())
	assert.Equal(t, 1.0, timer.Progress())
}
