// Package store persists the small amount of local durable state the
// client core needs: once-per-day progress marks, the cached session
// pointer, and focus debriefs.
package store

import (
	"context"

	"github.com/novahuman/compass/internal/models"
)

// Repository is the durable local-state boundary.
type Repository interface {
	// MarkDay records that progress was counted for the given direction
	// epoch and calendar day. It returns true only the first time the
	// (epoch, day) pair is marked; the check and the mark are a single
	// atomic operation.
	MarkDay(ctx context.Context, epoch, day string) (bool, error)

	// DayMarked reports whether the pair is already marked.
	DayMarked(ctx context.Context, epoch, day string) (bool, error)

	// PruneEpochs drops marks belonging to any other direction epoch. A
	// new direction invalidates the old markers.
	PruneEpochs(ctx context.Context, keep string) error

	// SetCachedSession / CachedSession store the last active chat session
	// id so a reload can return to it.
	SetCachedSession(ctx context.Context, sid string) error
	CachedSession(ctx context.Context) (string, error)

	// SaveDebrief appends a focus debrief, keeping only the most recent
	// entries. LastDebrief returns the newest one, or nil.
	SaveDebrief(ctx context.Context, d models.Debrief) error
	LastDebrief(ctx context.Context) (*models.Debrief, error)

	Close() error
}
