package openweather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/rain-reminder/internal/config"
	"github.com/couchcryptid/rain-reminder/internal/domain"
	"github.com/couchcryptid/rain-reminder/internal/observability"
	"github.com/sony/gobreaker"
)

// maxBodyBytes caps the response read; a 48-hour One Call body is ~20 KiB.
const maxBodyBytes = 1 << 20

// ErrCircuitOpen is returned without contacting OpenWeather while the breaker
// is open after repeated failures.
var ErrCircuitOpen = errors.New("openweather circuit breaker open")

// Client fetches hourly forecasts from the OpenWeather One Call 3.0 API.
// It implements pipeline.ForecastProvider. Requests are never retried; in
// scheduled mode the breaker stops hammering a failing API between runs.
type Client struct {
	apiKey     string
	baseURL    string
	exclude    string
	units      string
	lang       string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a One Call client from the job configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     cfg.OpenWeatherAPIKey,
		baseURL:    cfg.OpenWeatherBaseURL,
		exclude:    cfg.Exclude,
		units:      cfg.Units,
		lang:       cfg.Lang,
		httpClient: &http.Client{Timeout: cfg.OpenWeatherTimeout},
		circuit:    newBreaker(logger),
		metrics:    metrics,
		logger:     logger,
	}
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    0, // counts reset only on state change
		Timeout:     30 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Fetch requests the hourly forecast for loc and parses it into a payload.
func (c *Client) Fetch(ctx context.Context, loc domain.Location) (domain.ForecastPayload, error) {
	params := url.Values{
		"lat":     {strconv.FormatFloat(loc.Lat, 'f', -1, 64)},
		"lon":     {strconv.FormatFloat(loc.Lon, 'f', -1, 64)},
		"exclude": {c.exclude},
		"units":   {c.units},
		"lang":    {c.lang},
		"appid":   {c.apiKey},
	}
	fullURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("fetching forecast", "lat", loc.Lat, "lon", loc.Lon, "lang", c.lang)

	start := time.Now()
	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, fullURL)
	})
	c.metrics.ForecastDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.ForecastRequests.WithLabelValues("circuit_open").Inc()
			return domain.ForecastPayload{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return domain.ForecastPayload{}, err
	}

	body, ok := result.([]byte)
	if !ok {
		return domain.ForecastPayload{}, fmt.Errorf("unexpected result type from circuit breaker")
	}

	payload, err := domain.ParseForecast(body)
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return domain.ForecastPayload{}, err
	}
	c.metrics.ForecastRequests.WithLabelValues("success").Inc()
	return payload, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", redactKey(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read forecast response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

// redactKey strips the query string (and with it appid) from *url.Error
// messages so API keys never reach the logs.
func redactKey(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if u, perr := url.Parse(uerr.URL); perr == nil {
			u.RawQuery = ""
			uerr.URL = u.String()
		}
	}
	return err
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
