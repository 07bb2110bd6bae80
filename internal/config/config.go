package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
)

// Config holds all job settings, populated from environment variables.
// The env tag names the variable and is what validation errors report.
type Config struct {
	// OpenWeather One Call settings.
	OpenWeatherAPIKey  string        `env:"OPENWEATHER_API_KEY" validate:"required"`
	OpenWeatherBaseURL string        `env:"OPENWEATHER_BASE_URL" validate:"required,url"`
	OpenWeatherTimeout time.Duration `env:"OPENWEATHER_TIMEOUT"`
	Exclude            string        `env:"WEATHER_EXCLUDE"`
	Units              string        `env:"WEATHER_UNITS" validate:"oneof=standard metric imperial"`
	Lang               string        `env:"WEATHER_LANG" validate:"required"`

	// Location: coordinates, or a place name resolved through Mapbox.
	Lat    float64 `env:"WEATHER_LAT" validate:"latitude"`
	Lon    float64 `env:"WEATHER_LON" validate:"longitude"`
	Place  string  `env:"WEATHER_PLACE"`
	Region string  `env:"WEATHER_REGION"`

	// Mapbox geocoding configuration.
	MapboxToken     string        `env:"MAPBOX_TOKEN"`
	MapboxEnabled   bool          `env:"MAPBOX_ENABLED"`
	MapboxTimeout   time.Duration `env:"MAPBOX_TIMEOUT"`
	MapboxCacheSize int           `env:"MAPBOX_CACHE_SIZE"`

	// Email delivery.
	SMTPHost          string   `env:"SMTP_HOST" validate:"required,hostname_rfc1123|ip"`
	SMTPPort          int      `env:"SMTP_PORT" validate:"min=1,max=65535"`
	SMTPUsername      string   `env:"SMTP_USERNAME"`
	SMTPPassword      string   `env:"SMTP_PASSWORD"`
	MailSender        string   `env:"MAIL_SENDER" validate:"required,email"`
	MailSenderName    string   `env:"MAIL_SENDER_NAME"`
	MailRecipients    []string `env:"MAIL_RECIPIENTS" validate:"required,min=1,dive,email"`
	MailSubjectPrefix string   `env:"MAIL_SUBJECT_PREFIX"`
	TemplateDir       string   `env:"TEMPLATE_DIR"`

	// Optional summary publishing and metrics push.
	KafkaBrokers      []string `env:"KAFKA_BROKERS"`
	KafkaSummaryTopic string   `env:"KAFKA_SUMMARY_TOPIC"`
	PushgatewayURL    string   `env:"PUSHGATEWAY_URL" validate:"omitempty,url"`

	// Scheduled mode. An empty Schedule runs once and exits.
	Schedule        string        `env:"SCHEDULE"`
	HTTPAddr        string        `env:"HTTP_ADDR"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// HasCoords reports whether explicit coordinates were configured.
// WEATHER_LAT=0 with WEATHER_LON=0 reads as unset, the same as domain.Location.
func (c *Config) HasCoords() bool {
	return c.Lat != 0 || c.Lon != 0
}

// KafkaEnabled reports whether RainSummaries should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	owTimeout, err := parsePositiveDuration("OPENWEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	lat, err := parseFloatEnv("WEATHER_LAT")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloatEnv("WEATHER_LON")
	if err != nil {
		return nil, err
	}

	smtpPort, err := strconv.Atoi(sharedcfg.EnvOrDefault("SMTP_PORT", "587"))
	if err != nil {
		return nil, errors.New("invalid SMTP_PORT")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	sender := os.Getenv("MAIL_SENDER")

	cfg := &Config{
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/3.0/onecall"),
		OpenWeatherTimeout: owTimeout,
		Exclude:            sharedcfg.EnvOrDefault("WEATHER_EXCLUDE", "current,minutely,daily,alerts"),
		Units:              sharedcfg.EnvOrDefault("WEATHER_UNITS", "metric"),
		Lang:               sharedcfg.EnvOrDefault("WEATHER_LANG", "zh_cn"),

		Lat:    lat,
		Lon:    lon,
		Place:  os.Getenv("WEATHER_PLACE"),
		Region: os.Getenv("WEATHER_REGION"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parsePositiveInt("MAPBOX_CACHE_SIZE", 100),

		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          smtpPort,
		SMTPUsername:      sharedcfg.EnvOrDefault("SMTP_USERNAME", sender),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		MailSender:        sender,
		MailSenderName:    sharedcfg.EnvOrDefault("MAIL_SENDER_NAME", "UmbrellaReminder"),
		MailRecipients:    splitList(os.Getenv("MAIL_RECIPIENTS")),
		MailSubjectPrefix: sharedcfg.EnvOrDefault("MAIL_SUBJECT_PREFIX", "降雨提醒"),
		TemplateDir:       os.Getenv("TEMPLATE_DIR"),

		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "rain-summaries"),
		PushgatewayURL:    os.Getenv("PUSHGATEWAY_URL"),

		Schedule:        strings.TrimSpace(os.Getenv("SCHEDULE")),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() func(*Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})

	return func(cfg *Config) error {
		if err := v.Struct(cfg); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return fmt.Errorf("invalid config: %s failed %q", verrs[0].Field(), verrs[0].Tag())
			}
			return fmt.Errorf("invalid config: %w", err)
		}

		if !cfg.HasCoords() && cfg.Place == "" {
			return errors.New("WEATHER_LAT/WEATHER_LON or WEATHER_PLACE is required")
		}
		if !cfg.HasCoords() && !cfg.MapboxEnabled {
			return errors.New("WEATHER_PLACE needs MAPBOX_TOKEN to resolve coordinates")
		}
		if cfg.MapboxEnabled && cfg.MapboxToken == "" {
			return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
		}
		if cfg.KafkaEnabled() && cfg.KafkaSummaryTopic == "" {
			return errors.New("KAFKA_SUMMARY_TOPIC is required when KAFKA_BROKERS is set")
		}
		return nil
	}
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloatEnv(key string) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
