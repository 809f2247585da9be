package sqlite

import (
	"context"
	"fmt"

	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/fivestackbot/fivestack/internal/repository"
)

// SessionRepository implements repository.SessionRepository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the session row and rewrites its slots in one transaction.
func (r *SessionRepository) Save(ctx context.Context, snap roster.Snapshot) error {
	if snap.ID == "" || snap.ScopeID == "" {
		return repository.ErrInvalidInput
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, scope_id, owner_id, capacity, status, created_at, last_touched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			last_touched_at = excluded.last_touched_at
	`,
		snap.ID,
		snap.ScopeID,
		snap.OwnerID,
		snap.Capacity,
		snap.Status,
		snap.CreatedAt,
		snap.LastTouchedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("scope %s already has an open session row: %w", snap.ScopeID, err)
		}
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster_slots WHERE session_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("failed to clear slots: %w", err)
	}
	for i, entry := range snap.Slots {
		if entry == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO roster_slots (session_id, slot_index, member_id, display_name, availability, role)
			VALUES (?, ?, ?, ?, ?, ?)
		`, snap.ID, i, entry.MemberID, entry.DisplayName, entry.Availability, string(entry.Role))
		if err != nil {
			return fmt.Errorf("failed to save slot %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session save: %w", err)
	}
	return nil
}

// ListOpen returns every open session snapshot, for warm start.
func (r *SessionRepository) ListOpen(ctx context.Context) ([]roster.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scope_id, owner_id, capacity, status, created_at, last_touched_at
		FROM sessions
		WHERE status = 'open'
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var snaps []roster.Snapshot
	for rows.Next() {
		snap, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	for i := range snaps {
		if err := r.loadSlots(ctx, &snaps[i]); err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (roster.Snapshot, error) {
	var snap roster.Snapshot
	err := row.Scan(
		&snap.ID,
		&snap.ScopeID,
		&snap.OwnerID,
		&snap.Capacity,
		&snap.Status,
		&snap.CreatedAt,
		&snap.LastTouchedAt,
	)
	return snap, err
}

func (r *SessionRepository) loadSlots(ctx context.Context, snap *roster.Snapshot) error {
	snap.Slots = make([]*roster.RosterEntry, snap.Capacity)

	rows, err := r.db.QueryContext(ctx, `
		SELECT slot_index, member_id, display_name, availability, role
		FROM roster_slots
		WHERE session_id = ?
		ORDER BY slot_index
	`, snap.ID)
	if err != nil {
		return fmt.Errorf("failed to load slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		var entry roster.RosterEntry
		var role string
		if err := rows.Scan(&idx, &entry.MemberID, &entry.DisplayName, &entry.Availability, &role); err != nil {
			return fmt.Errorf("failed to scan slot: %w", err)
		}
		if idx < 0 || idx >= snap.Capacity {
			return fmt.Errorf("session %s has slot index %d outside capacity %d", snap.ID, idx, snap.Capacity)
		}
		entry.Role = roster.Role(role)
		snap.Slots[idx] = &entry
	}
	return rows.Err()
}
