package challenge

import (
	"context"
	"log/slog"
	"time"
)

type cleaner interface {
	CleanupExpiredChallenges(ctx context.Context) (int, error)
}

// Sweeper periodically retires expired challenges until its context ends.
type Sweeper struct {
	cleaner  cleaner
	interval time.Duration
}

func NewSweeper(c cleaner, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{cleaner: c, interval: interval}
}

// Run sweeps once immediately and then on every tick. Failures are logged.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.cleaner.CleanupExpiredChallenges(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("challenge sweep failed", "err", err)
		}
		return
	}
	if n > 0 {
		slog.Info("expired verification challenges", "count", n)
	}
}
