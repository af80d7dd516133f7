package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db"
user = "appointments"
password = "secret"
dbname = "appointments"

[booking]
timezone = "Europe/Moscow"

[rate_limit]
enabled = true
backend = "redis"
requests_per_minute = 30

[redis]
addr = "redis:6379"

[kafka]
brokers = "kafka-1:9092,kafka-2:9092"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 10, cfg.Server.ReadTimeout, "defaults are kept for missing keys")
	assert.Equal(t, "host=db port=5432 user=appointments password=secret dbname=appointments sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "Europe/Moscow", cfg.Booking.Location().String())
	assert.Equal(t, RateLimitBackendRedis, cfg.RateLimit.Backend)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
password = "from-file"
dbname = "appointments"
`)
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "postgres", cfg.Database.Host)
	assert.Equal(t, "kafka:9092", cfg.Kafka.Brokers)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no database", content: `[server]
http_port = 8080`},
		{name: "bad timezone", content: `[database]
dbname = "a"
[booking]
timezone = "Mars/Olympus"`},
		{name: "unknown limiter", content: `[database]
dbname = "a"
[rate_limit]
enabled = true
backend = "memcached"`},
		{name: "redis without addr", content: `[database]
dbname = "a"
[rate_limit]
enabled = true
backend = "redis"`},
		{name: "tracing without endpoint", content: `[database]
dbname = "a"
[tracing]
enabled = true`},
		{name: "malformed", content: `[database`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_ADDR", "")

			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestBookingConfig_LocationDefaultsToUTC(t *testing.T) {
	assert.Equal(t, "UTC", BookingConfig{}.Location().String())
}
