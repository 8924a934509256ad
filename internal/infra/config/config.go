package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	PaymentDemo   = "demo"
	PaymentStripe = "stripe"
)

// Config aggregates backend configuration values loaded from environment variables.
type Config struct {
	Env             string
	HTTPAddr        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	StoreDriver string
	MongoURI    string
	MongoDB     string
	DatabaseURL string

	KafkaBrokers       []string
	KafkaTopicPrefix   string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool

	JWTSecret   string
	JWTAudience string

	PaymentProvider string
	StripeSecretKey string
	StripeCurrency  string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	CompletionSchedule string
	SeedDemoData       bool
	VehicleFixtures    string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":5000"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "carrental"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3PublicEndpoint:   getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:        getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:           getEnv("S3_BUCKET", "vehicle-images"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "authenticated"),
		PaymentProvider:    strings.ToLower(getEnv("PAYMENT_PROVIDER", PaymentDemo)),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		StripeCurrency:     strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail:  getEnv("SENDGRID_FROM_EMAIL", "no-reply@carrental.local"),
		SendGridFromName:   getEnv("SENDGRID_FROM_NAME", "Car Rental"),
		CompletionSchedule: getEnv("COMPLETION_SCHEDULE", "5 0 * * *"),
		VehicleFixtures:    os.Getenv("VEHICLE_FIXTURES"),
	}
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))

	shutdown, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout = shutdown

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	for _, raw := range splitList(getEnv("RETRY_BACKOFF", "1s,5s,30s")) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	useSSL, err := parseBoolEnv("S3_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.S3UseSSL = useSSL
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	seed, err := parseBoolEnv("SEED_DEMO_DATA", cfg.StoreDriver == StoreMemory)
	if err != nil {
		return Config{}, err
	}
	cfg.SeedDemoData = seed

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.StoreDriver {
	case StoreMemory:
	case StoreMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required for STORE_DRIVER=mongo")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	switch cfg.PaymentProvider {
	case PaymentDemo:
	case PaymentStripe:
		if cfg.StripeSecretKey == "" {
			return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required for PAYMENT_PROVIDER=stripe")
		}
	default:
		return Config{}, fmt.Errorf("unknown PAYMENT_PROVIDER %q", cfg.PaymentProvider)
	}
	return cfg, nil
}

// ClientConfig configures the storefront CLI.
type ClientConfig struct {
	Env          string
	APIURL       string
	Token        string
	Timeout      time.Duration
	PaymentDelay time.Duration
	JWTSecret    string
}

func LoadClient() (ClientConfig, error) {
	cfg := ClientConfig{
		Env:       getEnv("APP_ENV", "dev"),
		APIURL:    getEnv("RENTAL_API_URL", "http://localhost:5000"),
		Token:     strings.TrimSpace(os.Getenv("RENTAL_API_TOKEN")),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
	timeout, err := parseDurationEnv("RENTAL_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return ClientConfig{}, err
	}
	cfg.Timeout = timeout
	delay, err := parseDurationEnv("PAYMENT_DELAY", 1500*time.Millisecond)
	if err != nil {
		return ClientConfig{}, err
	}
	cfg.PaymentDelay = delay
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
