package repository

import (
	"context"

	"github.com/fivestackbot/fivestack/internal/domain/activity"
	"github.com/fivestackbot/fivestack/internal/domain/roster"
)

// SessionRepository persists session snapshots. The in-memory registry stays
// authoritative at runtime; rows exist so open sessions survive a restart and
// closed ones leave a trail.
type SessionRepository interface {
	// Save upserts the snapshot and its slots.
	Save(ctx context.Context, snap roster.Snapshot) error
	// ListOpen returns every open session snapshot, for warm start.
	ListOpen(ctx context.Context) ([]roster.Snapshot, error)
}

// ActivityRepository persists the session event log.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
	List(ctx context.Context, scopeID string, opts activity.ListOptions) ([]activity.Entry, error)
}
