package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
	assert.Equal(t, "orderdesk-dev-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "orders.lifecycle", cfg.Messaging.Kafka.Topic)
	assert.Equal(t, "/metrics", cfg.Observability.PrometheusPath)
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_WRITER_DSN", "file:orderdesk.db")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("CACHE_KEY_PREFIX", " desk: ")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("OBS_LOG_LEVEL", " DEBUG ")
	t.Setenv("OBS_PROMETHEUS_PATH", "prom")
	t.Setenv("AUTH_TOKEN_TTL", "90m")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, "desk", cfg.Cache.KeyPrefix)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Messaging.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "/prom", cfg.Observability.PrometheusPath)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"database driver":    {"DB_DRIVER": "oracle"},
		"cache driver":       {"CACHE_DRIVER": "memcached"},
		"messaging driver":   {"MESSAGING_DRIVER": "nats"},
		"http port":          {"HTTP_PORT": "0"},
		"secret in prod":     {"OBS_ENVIRONMENT": "production"},
		"kafka topic empty":  {"KAFKA_TOPIC": ""},
		"zero cache ttl":     {"CACHE_DEFAULT_TTL": "0s"},
		"negative cache ttl": {"CACHE_DEFAULT_TTL": "-1m"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := New()
			assert.Error(t, err)
		})
	}
}
