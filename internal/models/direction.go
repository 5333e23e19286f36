package models

// DirectionStatus is the lifecycle state of a direction.
//
// A direction only moves forward (draft -> calibration -> locked); the one
// exception is an explicit unlock, which re-opens calibration with a fresh
// 24h window. It never returns to draft once calibration has started.
type DirectionStatus string

const (
	StatusDraft       DirectionStatus = "draft"
	StatusCalibration DirectionStatus = "calibration"
	StatusLocked      DirectionStatus = "locked"
)

// Direction represents a user's time-boxed goal as the backend reports it.
type Direction struct {
	Title        string          `json:"title"`
	Why          string          `json:"why,omitempty"`
	DurationDays int             `json:"duration_days"`
	Status       DirectionStatus `json:"status"`

	CreatedAt         string `json:"created_at,omitempty"`
	CalibrationEndsAt string `json:"calibration_ends_at,omitempty"`
	LockedAt          string `json:"locked_at,omitempty"`

	// Frozen when the direction locks; ISO dates (YYYY-MM-DD).
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	MetricName     string `json:"metric_name,omitempty"`
	MetricTarget   int    `json:"metric_target"`
	MetricProgress int    `json:"metric_progress"`

	TodayStep *TodayStep `json:"today_step,omitempty"`
}

// TodayStep is the single action item scoped to one calendar day. A new day
// gets a new step; Done resets implicitly because the step is replaced.
type TodayStep struct {
	Text        string `json:"text"`
	EstimateMin int    `json:"estimate_min"`
	Done        bool   `json:"done"`
	Date        string `json:"date"` // YYYY-MM-DD
}

// DirectionDraft holds the editable fields posted on save/calibrate.
type DirectionDraft struct {
	Title        string `json:"title"`
	Why          string `json:"why"`
	DurationDays int    `json:"duration_days"`
	MetricName   string `json:"metric_name"`
	MetricTarget int    `json:"metric_target"`
}

// Debrief captures what happened during one focus session.
type Debrief struct {
	Timestamp string `json:"ts"`
	Direction string `json:"direction"`
	Step      string `json:"step"`
	Minutes   int    `json:"minutes"`
	Summary   string `json:"summary"`
	Blocker   string `json:"blocker"`
	Next      string `json:"next"`
}
