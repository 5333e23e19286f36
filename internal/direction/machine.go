// Package direction drives a goal through its locked lifecycle:
// draft -> calibration (24h editable window) -> locked, with an explicit
// unlock path back to calibration. The server's timestamps are
// authoritative; this machine only polls against them.
package direction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/novahuman/compass/internal/api"
	"github.com/novahuman/compass/internal/logger"
	"github.com/novahuman/compass/internal/models"
)

// MetricName is the only metric the product ships: one counted day per day.
const MetricName = "Days completed"

// ErrInvalidTransition is returned for an operation that is not legal in
// the current status.
var ErrInvalidTransition = errors.New("invalid direction transition")

// Machine owns the direction lifecycle for one client.
type Machine struct {
	api *api.Client
	log zerolog.Logger

	mu            sync.Mutex
	dir           *models.Direction
	autoFinalized bool
}

// NewMachine creates a direction machine bound to one backend client.
func NewMachine(client *api.Client) *Machine {
	return &Machine{
		api: client,
		log: logger.WithField("component", "direction"),
	}
}

// Direction returns a copy of the current direction, or nil when none
// exists yet.
func (m *Machine) Direction() *models.Direction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dir == nil {
		return nil
	}
	cp := *m.dir
	if m.dir.TodayStep != nil {
		step := *m.dir.TodayStep
		cp.TodayStep = &step
	}
	return &cp
}

// Status returns the current lifecycle state; a missing direction reads as
// draft, which is also what the backend reports for a brand-new one.
func (m *Machine) Status() models.DirectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *Machine) statusLocked() models.DirectionStatus {
	if m.dir == nil || m.dir.Status == "" {
		return models.StatusDraft
	}
	return m.dir.Status
}

// Refresh fetches the direction from the backend. An unparseable payload is
// treated as "no direction", not as a failure.
func (m *Machine) Refresh(ctx context.Context) error {
	raw, err := m.api.Get(ctx, "/memory/direction")
	if err != nil {
		return err
	}
	m.adopt(parseDirection(raw))
	return nil
}

// SaveDraft upserts the editable fields. Legal while the direction is
// still editable (draft or calibration); idempotent.
func (m *Machine) SaveDraft(ctx context.Context, draft models.DirectionDraft) error {
	status := m.Status()
	if status == models.StatusLocked {
		return fmt.Errorf("%w: save draft while %s", ErrInvalidTransition, status)
	}
	return m.post(ctx, "/memory/direction/draft", pin(draft))
}

// StartCalibration persists the fields and begins the 24-hour countdown.
// Legal only from draft.
func (m *Machine) StartCalibration(ctx context.Context, draft models.DirectionDraft) error {
	status := m.Status()
	if status != models.StatusDraft {
		return fmt.Errorf("%w: start calibration while %s", ErrInvalidTransition, status)
	}
	return m.post(ctx, "/memory/direction/lock", pin(draft))
}

// Finalize locks the direction, freezing its start and end dates from the
// calibration window. Legal only from calibration.
func (m *Machine) Finalize(ctx context.Context) error {
	status := m.Status()
	if status != models.StatusCalibration {
		return fmt.Errorf("%w: finalize while %s", ErrInvalidTransition, status)
	}
	return m.post(ctx, "/memory/direction/finalize", nil)
}

// UnlockForEdit re-opens calibration with the existing fields pre-filled
// and a fresh 24-hour window. Legal only from locked; callers are expected
// to have confirmed intent with the user first.
func (m *Machine) UnlockForEdit(ctx context.Context) error {
	m.mu.Lock()
	if m.statusLocked() != models.StatusLocked {
		status := m.statusLocked()
		m.mu.Unlock()
		return fmt.Errorf("%w: unlock while %s", ErrInvalidTransition, status)
	}
	draft := models.DirectionDraft{
		Title:        m.dir.Title,
		Why:          m.dir.Why,
		DurationDays: m.dir.DurationDays,
	}
	m.mu.Unlock()

	return m.post(ctx, "/memory/direction/lock", pin(draft))
}

// Tick is the client-side watchdog, polled once per second while the UI is
// open. When the calibration countdown reaches zero it finalizes exactly
// once; repeated zero readings are no-ops thanks to the latch. Returns true
// when this tick performed the finalize.
func (m *Machine) Tick(ctx context.Context, now time.Time) (bool, error) {
	m.mu.Lock()
	if m.statusLocked() != models.StatusCalibration {
		m.autoFinalized = false
		m.mu.Unlock()
		return false, nil
	}
	if Remaining(m.dir.CalibrationEndsAt, now) > 0 || m.autoFinalized {
		m.mu.Unlock()
		return false, nil
	}
	m.autoFinalized = true
	m.mu.Unlock()

	m.log.Info().Msg("calibration window elapsed, finalizing")
	if err := m.Finalize(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// SetTodayStep stages today's single action item. A new calendar day gets a
// new step, which implicitly resets done.
func (m *Machine) SetTodayStep(ctx context.Context, text string, estimateMin int) (*models.TodayStep, error) {
	raw, err := m.api.Post(ctx, "/memory/direction/today_step", map[string]interface{}{
		"text":         strings.TrimSpace(text),
		"estimate_min": estimateMin,
	})
	if err != nil {
		return nil, err
	}
	step := parseTodayStep(raw)
	m.mu.Lock()
	if m.dir != nil && step != nil {
		m.dir.TodayStep = step
	}
	m.mu.Unlock()
	return step, nil
}

// MarkStepDone marks today's step done server-side and returns it.
func (m *Machine) MarkStepDone(ctx context.Context) (*models.TodayStep, error) {
	raw, err := m.api.Post(ctx, "/memory/direction/today_step/done", nil)
	if err != nil {
		return nil, err
	}
	step := parseTodayStep(raw)
	m.mu.Lock()
	if m.dir != nil && step != nil {
		m.dir.TodayStep = step
	}
	m.mu.Unlock()
	return step, nil
}

// AddProgress increments the metric counter and returns the new value.
func (m *Machine) AddProgress(ctx context.Context, delta int) (int, error) {
	raw, err := m.api.Post(ctx, "/memory/direction/progress/add", map[string]int{"delta": delta})
	if err != nil {
		return 0, err
	}

	var parsed struct {
		MetricProgress int `json:"metric_progress"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, nil
	}

	m.mu.Lock()
	if m.dir != nil {
		m.dir.MetricProgress = parsed.MetricProgress
	}
	m.mu.Unlock()
	return parsed.MetricProgress, nil
}

// DaysLeft derives the whole days remaining until the locked end date.
func (m *Machine) DaysLeft(now time.Time) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dir == nil {
		return 0, false
	}
	return DaysLeft(m.dir.EndDate, now)
}

// ProgressPercent derives completion toward the effective target. The
// target is pinned to duration_days even if the backend drifts.
func (m *Machine) ProgressPercent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dir == nil {
		return 0
	}
	return Percent(m.dir.MetricProgress, m.effectiveTargetLocked())
}

func (m *Machine) effectiveTargetLocked() int {
	if m.dir.DurationDays > 0 {
		return m.dir.DurationDays
	}
	if m.dir.MetricTarget > 0 {
		return m.dir.MetricTarget
	}
	return 1
}

// CountdownRemaining is the time left in the calibration window.
func (m *Machine) CountdownRemaining(now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dir == nil {
		return 0
	}
	return Remaining(m.dir.CalibrationEndsAt, now)
}

// Epoch identifies the current direction run for progress-guard keying.
// Changing the start date is a new epoch and invalidates old day marks.
func (m *Machine) Epoch() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dir == nil || m.dir.StartDate == "" {
		return "na"
	}
	return m.dir.StartDate
}

// post sends a state transition and adopts whatever the backend reports
// back. The open race between auto-finalize and a concurrent unlock is
// resolved last-write-wins at the backend; adopting the response means the
// client converges on whichever write landed second.
func (m *Machine) post(ctx context.Context, path string, body interface{}) error {
	raw, err := m.api.Post(ctx, path, body)
	if err != nil {
		return err
	}
	m.adopt(parseDirection(raw))
	return nil
}

func (m *Machine) adopt(dir *models.Direction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = dir
	if dir != nil && dir.DurationDays > 0 && dir.MetricTarget != dir.DurationDays {
		// Enforce target == duration client-side.
		dir.MetricTarget = dir.DurationDays
	}
	if m.statusLocked() != models.StatusCalibration {
		m.autoFinalized = false
	}
}

// pin applies the product invariants to an outgoing draft.
func pin(draft models.DirectionDraft) models.DirectionDraft {
	if draft.DurationDays < 1 {
		draft.DurationDays = 30
	}
	draft.MetricName = MetricName
	draft.MetricTarget = draft.DurationDays
	return draft
}

// parseDirection accepts both {"direction": {...}} and a bare direction
// object. Anything unparseable reads as no direction.
func parseDirection(raw json.RawMessage) *models.Direction {
	var wrapped struct {
		Direction *models.Direction `json:"direction"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Direction != nil {
		return wrapped.Direction
	}

	var dir models.Direction
	if err := json.Unmarshal(raw, &dir); err == nil && (dir.Title != "" || dir.Status != "") {
		return &dir
	}
	return nil
}

// parseTodayStep accepts both {"today_step": {...}} and a bare step.
func parseTodayStep(raw json.RawMessage) *models.TodayStep {
	var wrapped struct {
		TodayStep *models.TodayStep `json:"today_step"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.TodayStep != nil {
		return wrapped.TodayStep
	}

	var step models.TodayStep
	if err := json.Unmarshal(raw, &step); err == nil && step.Text != "" {
		return &step
	}
	return nil
}
