package scheduler

import (
	"context"
	"log/slog"
	"time"

	"recording_ingest/internal/domain"
)

// Poller defines the interface for poll operations.
type Poller interface {
	Poll(ctx context.Context, startPageToken string) (*domain.PollStats, error)
}

// Scheduler drives periodic poll cycles. Failures are logged and the
// ticker keeps running; each cycle is bounded by its own timeout.
type Scheduler struct {
	poller   Poller
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(poller Poller, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		poller:   poller,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runPoll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runPoll(ctx)
		}
	}
}

func (s *Scheduler) runPoll(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.poller.Poll(pollCtx, ""); err != nil {
		s.logger.Error("scheduled poll failed", "error", err)
	}
}
