package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries all externally injected settings. Nothing in here is
// hard-coded anywhere else in the service.
type Config struct {
	Environment    string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string

	DatabaseDSN string

	// WebhookSigningSecret is the shared secret used to verify inbound
	// processor events.
	WebhookSigningSecret string
	// WebhookTolerance bounds how stale an event timestamp may be.
	WebhookTolerance time.Duration

	// RetryAttempts bounds internal processing retries before an event is
	// dead-lettered. The sender's own redelivery is independent of this.
	RetryAttempts int
	// RetryBackoffBase is the base interval for exponential backoff.
	RetryBackoffBase time.Duration

	DeadLetterPollInterval time.Duration
	DeadLetterBatchSize    int

	TracingEnabled          bool
	TracingExporterEndpoint string
	TracingExporterProtocol string
	TracingSamplingRatio    float64

	WebhookRateLimit  int
	WebhookRateWindow time.Duration
}

func Load() Config {
	return Config{
		Environment:    getenv("TENANTFLOW_ENV", "development"),
		ServiceName:    getenv("TENANTFLOW_SERVICE_NAME", "tenantflow-payments"),
		ServiceVersion: getenv("TENANTFLOW_SERVICE_VERSION", "dev"),
		HTTPAddr:       getenv("TENANTFLOW_HTTP_ADDR", ":8080"),

		DatabaseDSN: getenv("TENANTFLOW_DATABASE_DSN", ""),

		WebhookSigningSecret: getenv("TENANTFLOW_WEBHOOK_SECRET", ""),
		WebhookTolerance:     getduration("TENANTFLOW_WEBHOOK_TOLERANCE", 5*time.Minute),

		RetryAttempts:    getint("TENANTFLOW_RETRY_ATTEMPTS", 3),
		RetryBackoffBase: getduration("TENANTFLOW_RETRY_BACKOFF_BASE", 500*time.Millisecond),

		DeadLetterPollInterval: getduration("TENANTFLOW_DEADLETTER_POLL_INTERVAL", 30*time.Second),
		DeadLetterBatchSize:    getint("TENANTFLOW_DEADLETTER_BATCH_SIZE", 20),

		TracingEnabled:          getbool("TENANTFLOW_TRACING_ENABLED", false),
		TracingExporterEndpoint: getenv("TENANTFLOW_TRACING_ENDPOINT", ""),
		TracingExporterProtocol: getenv("TENANTFLOW_TRACING_PROTOCOL", "grpc"),
		TracingSamplingRatio:    getfloat("TENANTFLOW_TRACING_SAMPLING_RATIO", 1.0),

		WebhookRateLimit:  getint("TENANTFLOW_WEBHOOK_RATE_LIMIT", 120),
		WebhookRateWindow: getduration("TENANTFLOW_WEBHOOK_RATE_WINDOW", time.Minute),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getint(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getbool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getfloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getduration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
