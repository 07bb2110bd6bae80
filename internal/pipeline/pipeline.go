package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/rain-reminder/internal/domain"
	"github.com/couchcryptid/rain-reminder/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ForecastProvider fetches the hourly forecast for a location.
type ForecastProvider interface {
	Fetch(ctx context.Context, loc domain.Location) (domain.ForecastPayload, error)
}

// SummaryPublisher writes a run's summary downstream.
type SummaryPublisher interface {
	Publish(ctx context.Context, event domain.SummaryEvent) error
}

// Notifier emails a summary. It reports whether a message was sent.
type Notifier interface {
	Notify(ctx context.Context, summary domain.RainSummary, loc domain.Location, day time.Time) (bool, error)
}

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeNotified Outcome = "notified"
	OutcomeDry      Outcome = "dry"
	OutcomeNoData   Outcome = "no_data"
	OutcomeError    Outcome = "error"
)

// Result describes a finished run.
type Result struct {
	RunID    string
	Outcome  Outcome
	Location domain.Location
	Summary  domain.RainSummary
	// HoursToday counts forecast points inside the local day, rain or not.
	HoursToday int
}

// Runner performs one fetch-classify-notify pass per Run call.
type Runner struct {
	location  domain.Location
	geocoder  domain.Geocoder
	forecasts ForecastProvider
	publisher SummaryPublisher
	notifier  Notifier
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	ready     atomic.Bool
}

// Option configures optional Runner collaborators.
type Option func(*Runner)

// WithGeocoder resolves place names and display names before each fetch.
func WithGeocoder(g domain.Geocoder) Option {
	return func(r *Runner) { r.geocoder = g }
}

// WithPublisher publishes every computed summary.
func WithPublisher(p SummaryPublisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithClock overrides the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// New creates a Runner for the given location.
func New(loc domain.Location, f ForecastProvider, n Notifier, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Runner {
	r := &Runner{
		location:  loc,
		forecasts: f,
		notifier:  n,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckReadiness returns nil once a run has completed without error.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no reminder run has completed yet")
	}
	return nil
}

// Run executes one reminder pass. A forecast that cannot be fetched ends the
// run idle with OutcomeNoData and a nil error; location, publish and notify
// failures are returned.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := r.clock.Now()
	res := Result{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", res.RunID)
	logger.Info("reminder run started")

	defer func() {
		r.metrics.Runs.WithLabelValues(string(res.Outcome)).Inc()
		r.metrics.RunDuration.Observe(r.clock.Since(start).Seconds())
		r.metrics.LastRunTime.Set(float64(start.Unix()))
		if res.Outcome != OutcomeError {
			r.metrics.LastSuccess.Set(float64(start.Unix()))
			r.ready.Store(true)
		}
	}()

	loc, err := domain.ResolveLocation(ctx, r.location, r.geocoder, logger)
	if err != nil {
		return r.fail(logger, &res, "locate", err)
	}
	res.Location = loc

	payload, err := r.forecasts.Fetch(ctx, loc)
	if err != nil {
		r.metrics.RunFailures.WithLabelValues("fetch").Inc()
		logger.Error("forecast fetch failed", "error", err)
		logger.Warn("no weather data available")
		res.Outcome = OutcomeNoData
		return res, nil
	}

	now := r.clock.Now()
	today := domain.SelectToday(payload, now)
	summary := domain.Aggregate(today, payload.TimezoneOffset)
	res.HoursToday = len(today)
	res.Summary = summary
	r.recordSummary(summary)

	day := domain.ToLocal(now.Unix(), payload.TimezoneOffset)
	logger.Info("forecast classified",
		"date", day.Format(time.DateOnly),
		"timezone", payload.TimezoneName,
		"worst_tier", summary.WorstTier.String(),
		"rain_hours", summary.TotalHours,
		"hours_today", res.HoursToday,
	)

	notified, err := r.notifier.Notify(ctx, summary, loc, day)
	if err != nil {
		return r.fail(logger, &res, "notify", err)
	}

	if r.publisher != nil {
		event := domain.SummaryEvent{
			RunID:       res.RunID,
			Location:    loc,
			Date:        day.Format(time.DateOnly),
			Summary:     summary,
			Notified:    notified,
			GeneratedAt: now.UTC(),
		}
		if err := r.publisher.Publish(ctx, event); err != nil {
			return r.fail(logger, &res, "publish", err)
		}
		r.metrics.SummariesOut.Inc()
	}

	if notified {
		r.metrics.EmailsSent.WithLabelValues(summary.WorstTier.String()).Inc()
		res.Outcome = OutcomeNotified
		logger.Info("email sent", "tier", summary.WorstTier.String())
	} else {
		res.Outcome = OutcomeDry
		logger.Info("no rain expected today")
	}
	return res, nil
}

func (r *Runner) fail(logger *slog.Logger, res *Result, stage string, err error) (Result, error) {
	r.metrics.RunFailures.WithLabelValues(stage).Inc()
	res.Outcome = OutcomeError
	logger.Error("reminder run failed", "stage", stage, "error", err)
	return *res, fmt.Errorf("%s: %w", stage, err)
}

func (r *Runner) recordSummary(s domain.RainSummary) {
	r.metrics.RainHours.Set(float64(s.TotalHours))
	r.metrics.WorstTier.Set(float64(s.WorstTier))
	if s.Peak != nil {
		r.metrics.PeakRainMM.Set(s.Peak.RainVolume)
	} else {
		r.metrics.PeakRainMM.Set(0)
	}
}
