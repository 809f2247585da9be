package roster_test

import (
	"testing"

	"github.com/fivestackbot/fivestack/internal/domain/roster"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SingleActiveSessionPerScope(t *testing.T) {
	reg := roster.NewRegistry(5)

	sess, err := reg.Start("guild1", "owner")
	require.NoError(t, err)
	require.Equal(t, "guild1", sess.ScopeID())

	_, err = reg.Start("guild1", "someone-else")
	require.ErrorIs(t, err, roster.ErrAlreadyActive)

	// Another scope is independent.
	_, err = reg.Start("guild2", "owner")
	require.NoError(t, err)

	// After the owner closes, the scope can start again.
	require.NoError(t, sess.Close("owner"))
	next, err := reg.Start("guild1", "owner2")
	require.NoError(t, err)
	require.NotEqual(t, sess.ID(), next.ID())
}

func TestRegistry_Get(t *testing.T) {
	reg := roster.NewRegistry(5)

	_, ok := reg.Get("guild1")
	require.False(t, ok)

	sess, err := reg.Start("guild1", "owner")
	require.NoError(t, err)

	got, ok := reg.Get("guild1")
	require.True(t, ok)
	require.Same(t, sess, got)
}

func TestRegistry_ForceReset(t *testing.T) {
	reg := roster.NewRegistry(5)

	_, err := reg.ForceReset("guild1")
	require.ErrorIs(t, err, roster.ErrNoActiveSession)

	sess, err := reg.Start("guild1", "owner")
	require.NoError(t, err)
	_, err = sess.Claim("u1", "a", "", roster.RoleNone)
	require.NoError(t, err)

	// Bypasses NotOwner.
	closed, err := reg.ForceReset("guild1")
	require.NoError(t, err)
	require.True(t, closed.IsClosed())
	_, ok := reg.Get("guild1")
	require.False(t, ok)
}

func TestRegistry_CloseIsAtomicWithEviction(t *testing.T) {
	reg := roster.NewRegistry(5)

	_, err := reg.Close("guild1", "owner")
	require.ErrorIs(t, err, roster.ErrNoActiveSession)

	sess, err := reg.Start("guild1", "owner")
	require.NoError(t, err)

	// A failed close must not evict.
	_, err = reg.Close("guild1", "intruder")
	require.ErrorIs(t, err, roster.ErrNotOwner)
	got, ok := reg.Get("guild1")
	require.True(t, ok)
	require.Same(t, sess, got)

	closed, err := reg.Close("guild1", "owner")
	require.NoError(t, err)
	require.Same(t, sess, closed)
	require.True(t, closed.IsClosed())
	_, ok = reg.Get("guild1")
	require.False(t, ok)

	_, err = reg.Close("guild1", "owner")
	require.ErrorIs(t, err, roster.ErrNoActiveSession)
}

func TestRegistry_ForceResetIfSkipsReplacedSession(t *testing.T) {
	reg := roster.NewRegistry(5)

	require.False(t, reg.ForceResetIf("guild1", roster.NewSession("guild1", "owner", 5)))

	stale, err := reg.Start("guild1", "owner")
	require.NoError(t, err)
	_, err = reg.Close("guild1", "owner")
	require.NoError(t, err)

	fresh, err := reg.Start("guild1", "owner2")
	require.NoError(t, err)

	// A handle from before the close must not evict the replacement.
	require.False(t, reg.ForceResetIf("guild1", stale))
	got, ok := reg.Get("guild1")
	require.True(t, ok)
	require.Same(t, fresh, got)
	require.False(t, fresh.IsClosed())

	require.True(t, reg.ForceResetIf("guild1", fresh))
	require.True(t, fresh.IsClosed())
	_, ok = reg.Get("guild1")
	require.False(t, ok)
}

func TestRegistry_Adopt(t *testing.T) {
	reg := roster.NewRegistry(5)

	sess := roster.NewSession("guild1", "owner", 5)
	require.True(t, reg.Adopt(sess))
	require.False(t, reg.Adopt(roster.NewSession("guild1", "other", 5)), "existing mapping wins")

	closed := roster.NewSession("guild2", "owner", 5)
	closed.ForceClose()
	require.False(t, reg.Adopt(closed))

	require.ElementsMatch(t, []string{"guild1"}, reg.Scopes())
}
