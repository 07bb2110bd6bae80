// Command reminder checks today's hourly forecast and emails a rain reminder.
//
// With SCHEDULE unset it runs once and exits non-zero on failure, which suits
// cron. With SCHEDULE set it stays up, runs on that cron expression, and
// serves /healthz, /readyz, /metrics and POST /run on HTTP_ADDR.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/rain-reminder/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/rain-reminder/internal/adapter/kafka"
	"github.com/couchcryptid/rain-reminder/internal/adapter/mapbox"
	"github.com/couchcryptid/rain-reminder/internal/adapter/openweather"
	"github.com/couchcryptid/rain-reminder/internal/config"
	"github.com/couchcryptid/rain-reminder/internal/domain"
	"github.com/couchcryptid/rain-reminder/internal/notify"
	"github.com/couchcryptid/rain-reminder/internal/observability"
	"github.com/couchcryptid/rain-reminder/internal/pipeline"
	"github.com/couchcryptid/rain-reminder/internal/scheduler"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// runTimeout bounds one scheduled run: geocode, fetch, publish and SMTP.
const runTimeout = 2 * time.Minute

func main() {
	// A missing .env is normal in containers.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	opts := []pipeline.Option{}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.Lang, cfg.MapboxTimeout, metrics, logger)
		opts = append(opts, pipeline.WithGeocoder(mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)))
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("summary publishing enabled", "topic", cfg.KafkaSummaryTopic)
	}

	notifier := notify.NewNotifier(
		notify.NewRenderer(cfg.TemplateDir),
		notify.NewSMTPSender(cfg),
		cfg.MailRecipients,
		cfg.MailSubjectPrefix,
		logger,
	)

	loc := domain.Location{Name: cfg.Place, Region: cfg.Region, Lat: cfg.Lat, Lon: cfg.Lon}
	runner := pipeline.New(loc, openweather.NewClient(cfg, metrics, logger), notifier, logger, metrics, opts...)

	var code int
	if cfg.Schedule == "" {
		code = runOnce(cfg, runner, logger)
	} else {
		code = runScheduled(cfg, runner, logger)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	os.Exit(code)
}

func runOnce(cfg *config.Config, runner *pipeline.Runner, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, runErr := runner.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := observability.Push(pushCtx, cfg.PushgatewayURL, prometheus.DefaultGatherer, res.Location.Label()); err != nil {
			logger.Error("metrics push failed", "error", err)
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}

func runScheduled(cfg *config.Config, runner *pipeline.Runner, logger *slog.Logger) int {
	sched := scheduler.New(cfg.Schedule, runTimeout, func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	}, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		return 1
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, sched, prometheus.DefaultGatherer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	sched.Stop()

	logger.Info("shutdown complete")
	return 0
}
