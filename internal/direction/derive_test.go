package direction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysLeft(t *testing.T) {
	tests := []struct {
		name    string
		endDate string
		now     time.Time
		want    int
		ok      bool
	}{
		{
			name:    "EndDateIsTodayEarly",
			endDate: "2026-08-29",
			now:     time.Date(2026, 8, 29, 0, 0, 1, 0, time.UTC),
			want:    1,
			ok:      true,
		},
		{
			name:    "EndDateIsTodayLate",
			endDate: "2026-08-29",
			now:     time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC),
			want:    1,
			ok:      true,
		},
		{
			name:    "EndDateTomorrow",
			endDate: "2026-08-30",
			now:     time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
			want:    2,
			ok:      true,
		},
		{
			name:    "ThirtyDayRun",
			endDate: "2026-09-27",
			now:     time.Date(2026, 8, 29, 0, 0, 1, 0, time.UTC),
			want:    30,
			ok:      true,
		},
		{
			name:    "EndDatePassed",
			endDate: "2026-08-28",
			now:     time.Date(2026, 8, 29, 0, 0, 1, 0, time.UTC),
			want:    0,
			ok:      true,
		},
		{
			name:    "LongPassed",
			endDate: "2020-01-01",
			now:     time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			want:    0,
			ok:      true,
		},
		{
			name:    "EmptyDate",
			endDate: "",
			now:     time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			ok:      false,
		},
		{
			name:    "MalformedDate",
			endDate: "soon",
			now:     time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DaysLeft(tt.endDate, tt.now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 30))
	assert.Equal(t, 50, Percent(15, 30))
	assert.Equal(t, 100, Percent(30, 30))
	assert.Equal(t, 100, Percent(45, 30), "clamped above the target")
	assert.Equal(t, 0, Percent(-3, 30), "negative progress reads as zero")
	assert.Equal(t, 100, Percent(5, 0), "a degenerate target acts as one")
	assert.Equal(t, 3, Percent(1, 30))
}

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Hour, Remaining("2026-08-29T11:00:00Z", now))
	assert.Equal(t, time.Duration(0), Remaining("2026-08-29T09:00:00Z", now), "past instants floor at zero")
	assert.Equal(t, time.Duration(0), Remaining("", now))
	assert.Equal(t, time.Duration(0), Remaining("not a time", now))
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "3h 24m 10s", FormatCountdown(3*time.Hour+24*time.Minute+10*time.Second))
	assert.Equal(t, "0h 0m 0s", FormatCountdown(0))
	assert.Equal(t, "23h 59m 59s", FormatCountdown(24*time.Hour-time.Second))
}
