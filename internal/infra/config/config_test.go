package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("S3_ENDPOINT", "")
	for _, key := range []string{"HTTP_ADDR", "PAYMENT_PROVIDER", "CORS_ORIGINS", "SEED_DEMO_DATA", "SHUTDOWN_TIMEOUT", "RETRY_BACKOFF", "OUTBOX_POLL_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, PaymentDemo, cfg.PaymentProvider)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/carrental")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("S3_USE_SSL", "yes")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SEED_DEMO_DATA", "")
	t.Setenv("PAYMENT_PROVIDER", "")
	t.Setenv("RETRY_BACKOFF", "2s, 1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, []time.Duration{2 * time.Second, time.Minute}, cfg.RetryBackoff)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://minio:9000", cfg.S3PublicEndpoint)
	assert.True(t, cfg.S3UseSSL)
	assert.False(t, cfg.SeedDemoData)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing_secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "unknown_store", env: map[string]string{"STORE_DRIVER": "redis"}},
		{name: "mongo_without_uri", env: map[string]string{"STORE_DRIVER": "mongo", "MONGO_URI": ""}},
		{name: "postgres_without_url", env: map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{name: "stripe_without_key", env: map[string]string{"PAYMENT_PROVIDER": "stripe", "STRIPE_SECRET_KEY": ""}},
		{name: "unknown_payment", env: map[string]string{"PAYMENT_PROVIDER": "paypal"}},
		{name: "bad_bool", env: map[string]string{"S3_USE_SSL": "maybe"}},
		{name: "bad_duration", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{name: "bad_backoff", env: map[string]string{"RETRY_BACKOFF": "1s,later"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv("STORE_DRIVER", "")
			t.Setenv("PAYMENT_PROVIDER", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("RENTAL_API_URL", "")
	t.Setenv("RENTAL_API_TOKEN", "  tok  ")
	t.Setenv("PAYMENT_DELAY", "10ms")
	t.Setenv("RENTAL_API_TIMEOUT", "")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, 10*time.Millisecond, cfg.PaymentDelay)

	t.Setenv("RENTAL_API_TIMEOUT", "x")
	_, err = LoadClient()
	assert.Error(t, err)
}
