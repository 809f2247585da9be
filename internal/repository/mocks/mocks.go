package mocks

import (
	"context"

	"github.com/fivestackbot/fivestack/internal/domain/activity"
	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/stretchr/testify/mock"
)

// SessionRepository is a mock for repository.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Save(ctx context.Context, snap roster.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *SessionRepository) ListOpen(ctx context.Context) ([]roster.Snapshot, error) {
	args := m.Called(ctx)
	if snaps, ok := args.Get(0).([]roster.Snapshot); ok {
		return snaps, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, scopeID string, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, scopeID, opts)
	if entries, ok := args.Get(0).([]activity.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}
