package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron expression. A run that would start while
// another is active is dropped, not queued.
type Scheduler struct {
	scheduler *gocron.Scheduler
	expr      string
	timeout   time.Duration
	job       Job
	logger    *slog.Logger
}

// New creates a Scheduler evaluating expr in the local time zone. Each run
// gets a context bounded by timeout.
func New(expr string, timeout time.Duration, job Job, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	s.SetMaxConcurrentJobs(1, gocron.RescheduleMode)
	return &Scheduler{
		scheduler: s,
		expr:      expr,
		timeout:   timeout,
		job:       job,
		logger:    logger,
	}
}

// Start registers the job and starts the scheduler in the background.
func (s *Scheduler) Start() error {
	job, err := s.scheduler.Cron(s.expr).Do(s.run)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.expr, err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "schedule", s.expr, "next_run", job.NextRun())
	return nil
}

// RunNow triggers the job immediately on a started scheduler. It is a no-op
// while a run is in progress.
func (s *Scheduler) RunNow() {
	s.scheduler.RunAll()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}
