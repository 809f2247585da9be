// Package keepalive periodically expires roster sessions that have gone
// idle, freeing their scopes for new sign-ups.
package keepalive

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Expirer closes and evicts sessions idle for longer than the cutoff.
type Expirer interface {
	ExpireIdle(ctx context.Context, idleAfter time.Duration) (int, error)
}

// Sweeper drives an Expirer on a fixed interval.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	idle     time.Duration
	logger   *slog.Logger
}

func NewSweeper(expirer Expirer, interval, idle time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sweeper{expirer: expirer, interval: interval, idle: idle, logger: logger}
}

// Run blocks until ctx is cancelled. An idle timeout of zero disables
// sweeping entirely.
func (s *Sweeper) Run(ctx context.Context) {
	if s.idle <= 0 {
		s.logger.Info("idle sweep disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := s.expirer.ExpireIdle(ctx, s.idle)
			if err != nil {
				s.logger.Warn("idle sweep failed", "error", err)
				continue
			}
			if expired > 0 {
				s.logger.Info("expired idle sessions", "count", expired)
			}
		}
	}
}
