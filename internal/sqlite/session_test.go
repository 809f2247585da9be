package sqlite

import (
	"context"
	"testing"

	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/fivestackbot/fivestack/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_SaveGetRoundtrip(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(db)

	sess := roster.NewSession("guild1", "owner", 5)
	_, err := sess.Claim("u1", "User One", "7PM EST", roster.RoleJungle)
	require.NoError(t, err)
	_, err = sess.Claim("u2", "User Two", "", roster.RoleNone)
	require.NoError(t, err)
	_, err = sess.Release("u1")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, sess.Snapshot()))

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	loaded := open[0]
	require.Equal(t, sess.ID(), loaded.ID)
	require.Equal(t, "owner", loaded.OwnerID)
	require.Equal(t, 5, loaded.Capacity)
	require.Len(t, loaded.Slots, 5)
	require.Nil(t, loaded.Slots[0], "released slot stays empty")
	require.NotNil(t, loaded.Slots[1])
	require.Equal(t, "u2", loaded.Slots[1].MemberID)

	// The loaded snapshot restores into a valid session.
	restored, err := roster.Restore(loaded)
	require.NoError(t, err)
	idx, err := restored.Claim("u3", "User Three", "", roster.RoleTop)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
}

func TestSessionRepository_SaveIsWriteThrough(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(db)

	sess := roster.NewSession("guild1", "owner", 5)
	require.NoError(t, repo.Save(ctx, sess.Snapshot()))

	_, err := sess.Claim("u1", "a", "", roster.RoleNone)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, sess.Snapshot()))

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, 1, open[0].FilledCount())
}

func TestSessionRepository_ClosedSessionsExcluded(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(db)

	sess := roster.NewSession("guild1", "owner", 5)
	require.NoError(t, repo.Save(ctx, sess.Snapshot()))
	require.NoError(t, sess.Close("owner"))
	require.NoError(t, repo.Save(ctx, sess.Snapshot()))

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Empty(t, open)

	// The closed row is kept for history and a new session can be saved for
	// the same scope.
	next := roster.NewSession("guild1", "owner2", 5)
	require.NoError(t, repo.Save(ctx, next.Snapshot()))

	open, err = repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, next.ID(), open[0].ID)
}

func TestSessionRepository_ListOpenAcrossScopes(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSessionRepository(db)

	for _, scope := range []string{"guild1", "guild2", "guild3"} {
		sess := roster.NewSession(scope, "owner", 5)
		_, err := sess.Claim("u-"+scope, "x", "", roster.RoleNone)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, sess.Snapshot()))
	}

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 3)
	for _, snap := range open {
		require.Equal(t, 1, snap.FilledCount())
	}
}

func TestSessionRepository_RejectsBlankSnapshot(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	require.ErrorIs(t, repo.Save(context.Background(), roster.Snapshot{}), repository.ErrInvalidInput)
}
