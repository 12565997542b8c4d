package postbuild

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docpostbuild/internal/logfields"
)

// Scheduler re-runs a Runner on a fixed interval.
type Scheduler struct {
	runner Runner
	every  time.Duration
	logger *slog.Logger
}

func NewScheduler(runner Runner, every time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{runner: runner, every: every, logger: logger}
}

// Run starts with an immediate run and blocks until ctx is done. A run that
// is still going when the next one is due delays that next run instead of
// overlapping it.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.every <= 0 {
		return fmt.Errorf("schedule interval must be > 0, got %s", s.every)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.every),
		gocron.NewTask(func() { s.execute(ctx) }),
		gocron.WithName("post-build"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to create post-build job: %w", err)
	}

	s.logger.Info("Starting scheduler", slog.Duration("every", s.every))
	sched.Start()
	<-ctx.Done()
	s.logger.Info("Stopping scheduler")
	return sched.Shutdown()
}

func (s *Scheduler) execute(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.Run(ctx); err != nil {
		s.logger.Error("Scheduled post-build run failed", logfields.Error(err))
	}
}
