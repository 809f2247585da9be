package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrInvalidInput indicates a malformed activity entry.
var ErrInvalidInput = errors.New("invalid activity entry")

// Repository provides persistence operations for activity entries.
type Repository interface {
	Log(ctx context.Context, entry *Entry) error
	List(ctx context.Context, scopeID string, opts ListOptions) ([]Entry, error)
}

// Service handles the session event log.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record logs an entry, stamping the current time if missing.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.ScopeID == "" || entry.SessionID == "" || entry.Type == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Recent lists a scope's latest entries.
func (s *Service) Recent(ctx context.Context, scopeID string, opts ListOptions) ([]Entry, error) {
	return s.repo.List(ctx, scopeID, opts)
}
