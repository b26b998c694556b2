package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"API_URL", "HTTP_ADDR", "SESSION_TTL", "KAFKA_BROKERS", "COOKIE_SECURE"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, ":9091", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.HTTP.CookieSecure)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com/api/")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("API_TIMEOUT", "nonsense")

	cfg := Load()

	assert.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.HTTP.CookieSecure)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
}
