package direction

import (
	"fmt"
	"math"
	"time"
)

const dayLayout = "2006-01-02"

// DaysLeft counts whole days remaining until the end date, inclusive of
// today: the end date counts until its own 23:59:59. Never negative. The
// second return is false when no usable end date exists.
func DaysLeft(endDate string, now time.Time) (int, bool) {
	if endDate == "" {
		return 0, false
	}
	end, err := time.ParseInLocation(dayLayout, endDate, now.Location())
	if err != nil {
		return 0, false
	}
	endOfDay := end.Add(24*time.Hour - time.Second)

	diff := endOfDay.Sub(now)
	if diff <= 0 {
		return 0, true
	}
	return int(math.Ceil(diff.Hours() / 24)), true
}

// Percent computes progress toward the target, clamped to 0..100.
func Percent(progress, target int) int {
	if target < 1 {
		target = 1
	}
	if progress < 0 {
		progress = 0
	}
	pct := int(math.Round(100 * float64(progress) / float64(target)))
	if pct > 100 {
		return 100
	}
	return pct
}

// Remaining returns the time left until an RFC3339 instant, floored at 0.
func Remaining(iso string, now time.Time) time.Duration {
	if iso == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return 0
	}
	left := t.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// FormatCountdown renders a duration as "3h 24m 10s".
func FormatCountdown(d time.Duration) string {
	totalSec := int(d / time.Second)
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
