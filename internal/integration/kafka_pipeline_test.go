//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/rain-reminder/internal/adapter/kafka"
	"github.com/couchcryptid/rain-reminder/internal/adapter/openweather"
	"github.com/couchcryptid/rain-reminder/internal/config"
	"github.com/couchcryptid/rain-reminder/internal/domain"
	"github.com/couchcryptid/rain-reminder/internal/observability"
	"github.com/couchcryptid/rain-reminder/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSummaryTopic = "test-rain-summaries"

// 2025-06-10 08:30 in UTC+8, before every hour in the fixture.
var shanghaiMorning = time.Date(2025, 6, 10, 0, 30, 0, 0, time.UTC)

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("rain-reminder-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type recordingNotifier struct {
	tiers []domain.Tier
}

func (n *recordingNotifier) Notify(_ context.Context, s domain.RainSummary, _ domain.Location, _ time.Time) (bool, error) {
	n.tiers = append(n.tiers, s.WorstTier)
	return s.WorstTier.IsRain(), nil
}

func forecastServer(t *testing.T) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile("../adapter/openweather/testdata/onecall_shanghai.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body) //nolint:errcheck // test server
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestRunnerPublishesSummary runs one reminder pass against a fake OpenWeather
// endpoint and a real broker, then reads the summary back from the topic.
func TestRunnerPublishesSummary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSummaryTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	cfg := &config.Config{
		OpenWeatherAPIKey:  "test-key",
		OpenWeatherBaseURL: forecastServer(t).URL,
		OpenWeatherTimeout: 5 * time.Second,
		Units:              "metric",
		Lang:               "zh_cn",
		KafkaBrokers:       []string{broker},
		KafkaSummaryTopic:  testSummaryTopic,
	}

	writer := kafka.NewWriter(cfg, logger)
	defer writer.Close()

	notifier := &recordingNotifier{}
	runner := pipeline.New(
		domain.Location{Name: "Shanghai", Lat: 31.2304, Lon: 121.4737},
		openweather.NewClient(cfg, metrics, logger),
		notifier,
		logger,
		metrics,
		pipeline.WithPublisher(writer),
		pipeline.WithClock(clockwork.NewFakeClockAt(shanghaiMorning)),
	)

	res, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeNotified, res.Outcome)
	assert.Equal(t, []domain.Tier{domain.TierHeavy}, notifier.tiers)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testSummaryTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer consumer.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from summary topic")

	assert.Equal(t, res.RunID, string(msg.Key))
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "heavy", headers["worst_tier"])

	var event domain.SummaryEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "2025-06-10", event.Date)
	assert.True(t, event.Notified)
	assert.Equal(t, []string{"09:00", "14:00"}, event.Summary.RainHours)
	assert.Equal(t, domain.TierHeavy, event.Summary.WorstTier)
}
