package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RunFunc performs one notification run.
type RunFunc func(ctx context.Context) error

// Scheduler wraps robfig/cron and fires a run on every tick of the spec.
type Scheduler struct {
	spec   string
	run    RunFunc
	logger *slog.Logger
}

// NewScheduler creates a scheduler for a standard cron spec or descriptor
// such as "@every 1h".
func NewScheduler(spec string, run RunFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		spec:   spec,
		run:    run,
		logger: logger,
	}
}

// Run registers the job and blocks until ctx is cancelled. It waits for an
// in-flight run to finish before returning nil (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(s.spec, func() {
		if ctx.Err() != nil {
			return
		}
		if err := s.run(ctx); err != nil {
			s.logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", s.spec, err)
	}

	s.logger.Info("starting scheduler", "schedule", s.spec)
	c.Start()

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}
