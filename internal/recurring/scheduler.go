package recurring

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler drives the daily posting run.
type Scheduler struct {
	Service  *Service
	Interval time.Duration
}

func NewScheduler(svc *Service) *Scheduler {
	return &Scheduler{Service: svc, Interval: 24 * time.Hour}
}

// Start blocks until ctx is cancelled, running one pass immediately and
// then one per interval. Run it in its own goroutine next to the HTTP
// server.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("recurring scheduler started", "interval", s.Interval)

	s.run(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("recurring scheduler stopped")
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if err := s.Service.Tick(ctx, time.Now().UTC()); err != nil {
		slog.Error("recurring scheduler pass failed", "error", err)
	}
}
