package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fivestackbot/fivestack/internal/domain/activity"
)

// ActivityRepository implements repository.ActivityRepository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (scope_id, session_id, member_id, activity_type, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.ScopeID,
		entry.SessionID,
		entry.MemberID,
		entry.Type,
		entry.Summary,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}
	entry.CreatedAt = createdAt

	return nil
}

// List returns a scope's entries, newest first.
func (r *ActivityRepository) List(ctx context.Context, scopeID string, opts activity.ListOptions) ([]activity.Entry, error) {
	query := `
		SELECT id, scope_id, session_id, member_id, activity_type, summary, created_at
		FROM activity_log
		WHERE scope_id = ?
	`
	args := []any{scopeID}

	if opts.Type != nil {
		query += " AND activity_type = ?"
		args = append(args, *opts.Type)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var e activity.Entry
		var memberID sql.NullString
		if err := rows.Scan(&e.ID, &e.ScopeID, &e.SessionID, &memberID, &e.Type, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		if memberID.Valid {
			e.MemberID = &memberID.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
