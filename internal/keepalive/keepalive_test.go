package keepalive

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingExpirer struct {
	calls atomic.Int64
}

func (c *countingExpirer) ExpireIdle(_ context.Context, _ time.Duration) (int, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestSweeper_RunsOnInterval(t *testing.T) {
	expirer := &countingExpirer{}
	sweeper := NewSweeper(expirer, time.Millisecond, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return expirer.calls.Load() >= 3
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}

func TestSweeper_ZeroIdleDisables(t *testing.T) {
	expirer := &countingExpirer{}
	sweeper := NewSweeper(expirer, time.Millisecond, 0, nil)

	done := make(chan struct{})
	go func() {
		sweeper.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper should return immediately when idle timeout is zero")
	}
	require.Zero(t, expirer.calls.Load())
}
