package observability

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/rain-reminder/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level   string
		format  string
		enabled slog.Level
		dropped slog.Level
	}{
		{"debug", "json", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", "text", slog.LevelInfo, slog.LevelDebug},
		{"warn", "json", slog.LevelWarn, slog.LevelInfo},
		{"error", "text", slog.LevelError, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})
			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.enabled))
			assert.False(t, logger.Enabled(ctx, tt.dropped))
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	m1 := NewMetricsForTesting()
	m2 := NewMetricsForTesting()

	m1.Runs.WithLabelValues("notified").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m1.Runs.WithLabelValues("notified")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.Runs.WithLabelValues("notified")))
}

func TestPush(t *testing.T) {
	var (
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)
	m.RainHours.Set(4)

	require.NoError(t, Push(context.Background(), srv.URL, reg, "home"))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/rain_reminder/instance/home", path)
	assert.NotEmpty(t, body)
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	NewMetricsWithRegistry(reg)

	err := Push(context.Background(), srv.URL, reg, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push metrics")
}
