package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP    HTTPConfig
	API     APIConfig
	Session SessionConfig
	Log     LogConfig
	Kafka   KafkaConfig
	Mail    MailConfig
	Tracing TracingConfig
}

type HTTPConfig struct {
	Addr         string
	CORSOrigins  []string
	CookieSecure bool
}

type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MenuCacheTTL time.Duration
}

type SessionConfig struct {
	TTL            time.Duration
	AuthCookieDays int
}

type LogConfig struct {
	Level  string
	Format string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled is false when no broker is configured
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type MailConfig struct {
	ServerToken string
	Sender      string
}

func (m MailConfig) Enabled() bool { return m.ServerToken != "" && m.Sender != "" }

type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

// Load reads .env when present, then the process environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTP: HTTPConfig{
			Addr:         getEnv("HTTP_ADDR", ":9091"),
			CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
			CookieSecure: getBool("COOKIE_SECURE", true),
		},
		API: APIConfig{
			BaseURL:      strings.TrimSuffix(getEnv("API_URL", "http://localhost:8000/api"), "/"),
			Timeout:      getDuration("API_TIMEOUT", 10*time.Second),
			MenuCacheTTL: getDuration("MENU_CACHE_TTL", time.Minute),
		},
		Session: SessionConfig{
			TTL:            getDuration("SESSION_TTL", 2*time.Hour),
			AuthCookieDays: getInt("AUTH_COOKIE_DAYS", 7),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "storefront.checkout"),
		},
		Mail: MailConfig{
			ServerToken: getEnv("POSTMARK_SERVER_TOKEN", ""),
			Sender:      getEnv("EMAIL_SENDER", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getBool("OTEL_ENABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "storefront"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
