package session

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often idle sessions are expired.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically ends idle visitor sessions so their chat widgets
// release scheduled replies.
type Sweeper struct {
	manager  *Manager
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper for manager.
func NewSweeper(manager *Manager, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{manager: manager, interval: interval}
}

// Start launches the background loop.
func (s *Sweeper) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Session sweeper started",
		"interval", s.interval,
		"idle_ttl", s.manager.idleTTL)
}

// Stop signals the loop to exit and waits for it.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Session sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.manager.ExpireIdle(ctx); n > 0 {
				slog.Info("Expired idle visitor sessions", "count", n)
			}
		}
	}
}
