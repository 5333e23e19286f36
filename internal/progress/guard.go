// Package progress guards the once-per-day progress increment and runs the
// focus timer that triggers it automatically.
package progress

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/novahuman/compass/internal/direction"
	"github.com/novahuman/compass/internal/logger"
	"github.com/novahuman/compass/internal/store"
)

const dayLayout = "2006-01-02"

// Guard enforces at most one progress increment per calendar day per
// direction epoch, no matter how many times completion fires: the manual
// done button, a focus-timer completion, or a reload re-running an effect.
type Guard struct {
	machine *direction.Machine
	marks   store.Repository
	log     zerolog.Logger
	now     func() time.Time

	// StagedStepText and StagedStepMin hold a locally drafted step that
	// has not been persisted yet; completion creates it first.
	StagedStepText string
	StagedStepMin  int
}

// NewGuard creates a guard over one direction machine and durable store.
func NewGuard(machine *direction.Machine, marks store.Repository) *Guard {
	return &Guard{
		machine: machine,
		marks:   marks,
		log:     logger.WithField("component", "progress"),
		now:     time.Now,
	}
}

// CompleteDayOnce records today's completion: it makes sure a step exists,
// marks it done, and adds one unit of progress unless the (epoch, day) pair
// was already counted. The day-mark check-and-set is a single store
// operation, so a repeated trigger can never double-count.
func (g *Guard) CompleteDayOnce(ctx context.Context) error {
	dir := g.machine.Direction()

	if (dir == nil || dir.TodayStep == nil) && strings.TrimSpace(g.StagedStepText) != "" {
		min := g.StagedStepMin
		if min < 1 {
			min = 25
		}
		if _, err := g.machine.SetTodayStep(ctx, g.StagedStepText, min); err != nil {
			return err
		}
	}

	step, err := g.machine.MarkStepDone(ctx)
	if err != nil {
		return err
	}

	day := g.now().Format(dayLayout)
	if step != nil && len(step.Date) >= len(dayLayout) {
		day = step.Date[:len(dayLayout)]
	}
	epoch := g.machine.Epoch()

	newly, err := g.marks.MarkDay(ctx, epoch, day)
	if err != nil {
		return err
	}
	if !newly {
		g.log.Debug().Str("epoch", epoch).Str("day", day).Msg("progress already recorded today")
		return nil
	}

	if _, err := g.machine.AddProgress(ctx, 1); err != nil {
		return err
	}
	g.log.Info().Str("epoch", epoch).Str("day", day).Msg("progress recorded")
	return nil
}
