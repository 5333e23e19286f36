package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerStart(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	tm := NewTimer()
	assert.False(t, tm.Running())
	assert.Zero(t, tm.Remaining(now))

	tm.Start(25, now)
	assert.True(t, tm.Running())
	assert.False(t, tm.Done())
	assert.Equal(t, 25*time.Minute, tm.Remaining(now))
	assert.Equal(t, 20*time.Minute, tm.Remaining(now.Add(5*time.Minute)))
}

func TestTimerStartDefaultsMinutes(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	tm := NewTimer()
	tm.Start(0, now)
	assert.Equal(t, 25*time.Minute, tm.Remaining(now))
}

func TestTimerTickCompletesOnce(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	completions := 0
	notifications := 0
	tm := NewTimer()
	tm.OnComplete = func() error { completions++; return nil }
	tm.Notify = func(string) { notifications++ }

	tm.Start(1, now)

	assert.False(t, tm.Tick(now.Add(30*time.Second)), "still inside the session")
	assert.Zero(t, completions)

	deadline := now.Add(time.Minute)
	assert.True(t, tm.Tick(deadline))
	assert.True(t, tm.Done())
	assert.False(t, tm.Running())
	assert.Equal(t, 1, completions)
	assert.Equal(t, 1, notifications)

	// A stopped timer reads every later tick as a no-op.
	assert.False(t, tm.Tick(deadline.Add(time.Second)))
	assert.Equal(t, 1, completions)
}

func TestTimerStopHasNoSideEffects(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	completions := 0
	tm := NewTimer()
	tm.OnComplete = func() error { completions++; return nil }

	tm.Start(25, now)
	tm.Stop()

	assert.False(t, tm.Running())
	assert.False(t, tm.Done())
	assert.Zero(t, tm.Remaining(now))

	assert.False(t, tm.Tick(now.Add(time.Hour)))
	assert.Zero(t, completions, "a cancelled session never records anything")
}

func TestTimerRestartRearmsLatch(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	completions := 0
	tm := NewTimer()
	tm.OnComplete = func() error { completions++; return nil }

	tm.Start(1, now)
	require.True(t, tm.Tick(now.Add(time.Minute)))

	tm.Start(1, now.Add(2*time.Minute))
	require.True(t, tm.Tick(now.Add(3*time.Minute)))

	assert.Equal(t, 2, completions, "each run gets its own completion")
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "24:05", FormatClock(24*time.Minute+5*time.Second))
	assert.Equal(t, "0:00", FormatClock(0))
	assert.Equal(t, "0:00", FormatClock(-time.Second))
	assert.Equal(t, "25:00", FormatClock(25*time.Minute))
	assert.Equal(t, "1:09", FormatClock(69*time.Second))
}
