package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// pushJob is the Pushgateway job label for one-shot runs.
const pushJob = "rain_reminder"

// Push sends the gathered metrics to a Prometheus Pushgateway. One-shot runs
// exit before any scraper could see them, so they push instead.
func Push(ctx context.Context, url string, gatherer prometheus.Gatherer, instance string) error {
	pusher := push.New(url, pushJob).Gatherer(gatherer)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
