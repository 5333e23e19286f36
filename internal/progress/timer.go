package progress

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TickInterval is the poll resolution for the focus timer. The timer keeps
// a deadline and compares it against the clock on each tick instead of
// decrementing a counter, so it stays correct across suspend/resume.
const TickInterval = 250 * time.Millisecond

// Timer is an in-memory focus session. It is not persisted; a reload loses
// it by design.
type Timer struct {
	mu       sync.Mutex
	endsAt   time.Time
	running  bool
	done     bool
	recorded bool

	// Notify fires once when the session completes (bell, desktop
	// notification). Optional.
	Notify func(msg string)

	// OnComplete fires exactly once per run when the deadline is reached,
	// guarded by a per-run latch separate from the day-level progress
	// guard. Typically wired to Guard.CompleteDayOnce.
	OnComplete func() error
}

// NewTimer creates an idle focus timer.
func NewTimer() *Timer {
	return &Timer{}
}

// Start arms the timer for the given number of minutes.
func (t *Timer) Start(minutes int, now time.Time) {
	if minutes < 1 {
		minutes = 25
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endsAt = now.Add(time.Duration(minutes) * time.Minute)
	t.running = true
	t.done = false
	t.recorded = false
}

// Stop cancels the timer without side effects; guard state is untouched.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.endsAt = time.Time{}
}

// Running reports whether a session is in progress.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Done reports whether the last session ran to completion.
func (t *Timer) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Remaining is the time left, floored at zero.
func (t *Timer) Remaining(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	left := t.endsAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Tick advances the timer against the clock. On reaching the deadline it
// stops, flags done, fires the notification, and invokes OnComplete exactly
// once for this run. Returns true when this tick completed the session.
func (t *Timer) Tick(now time.Time) bool {
	t.mu.Lock()
	if !t.running || now.Before(t.endsAt) {
		t.mu.Unlock()
		return false
	}

	t.running = false
	t.done = true
	fire := !t.recorded
	t.recorded = true
	notify := t.Notify
	onComplete := t.OnComplete
	t.mu.Unlock()

	if notify != nil {
		notify("Focus session complete.")
	}
	if fire && onComplete != nil {
		_ = onComplete()
	}
	return true
}

// Run polls the timer until it completes, is stopped, or the context ends.
func (t *Timer) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if t.Tick(now) {
				return nil
			}
			if !t.Running() {
				return nil
			}
		}
	}
}

// FormatClock renders remaining time as "24:05".
func FormatClock(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
