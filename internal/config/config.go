package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Booking   BookingConfig   `toml:"booking"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Redis     RedisConfig     `toml:"redis"`
	Kafka     KafkaConfig     `toml:"kafka"`
	Tracing   TracingConfig   `toml:"tracing"`
	Identity  IdentityConfig  `toml:"identity"`
}

// ServerConfig таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig часовой пояс, в котором бизнесы задают расписание
type BookingConfig struct {
	Timezone string `toml:"timezone"`

	location *time.Location
}

// Location часовой пояс бронирований. Доступен после Load
func (b BookingConfig) Location() *time.Location {
	if b.location == nil {
		return time.UTC
	}
	return b.location
}

type RateLimitConfig struct {
	Enabled           bool   `toml:"enabled"`
	Backend           string `toml:"backend"` // memory | redis
	RequestsPerMinute int    `toml:"requests_per_minute"`
	Burst             int    `toml:"burst"`
	FailOpen          bool   `toml:"fail_open"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// KafkaConfig пустой brokers отключает публикацию событий
type KafkaConfig struct {
	Brokers        string `toml:"brokers"`
	PollIntervalMs int    `toml:"poll_interval_ms"`
	BatchSize      int    `toml:"batch_size"`
}

// Enabled true, если указан хотя бы один брокер
func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.Brokers) != ""
}

type TracingConfig struct {
	Enabled      bool    `toml:"enabled"`
	OTLPEndpoint string  `toml:"otlp_endpoint"`
	SampleRatio  float64 `toml:"sample_ratio"`
}

// IdentityConfig сервис аккаунтов. Пустой URL отключает проверку заголовков
type IdentityConfig struct {
	URL      string `toml:"url"`
	Timeout  int    `toml:"timeout"` // секунды
	FailOpen bool   `toml:"fail_open"`
}

// Load читает TOML файл, затем применяет переменные окружения (и .env, если он есть)
func Load(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "appointment-service",
		},
		Booking: BookingConfig{Timezone: "UTC"},
		RateLimit: RateLimitConfig{
			Backend:           RateLimitBackendMemory,
			RequestsPerMinute: 60,
			Burst:             10,
			FailOpen:          true,
		},
		Kafka: KafkaConfig{
			PollIntervalMs: 2000,
			BatchSize:      50,
		},
		Tracing:  TracingConfig{SampleRatio: 1},
		Identity: IdentityConfig{Timeout: 3, FailOpen: true},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
}

func (c *Config) validate() error {
	var errs []error

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port must be between 1 and 65535, got %d", c.Server.HTTPPort))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required"))
	}

	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("booking.timezone: %w", err))
	} else {
		c.Booking.location = loc
	}

	if c.RateLimit.Enabled {
		switch c.RateLimit.Backend {
		case RateLimitBackendMemory:
		case RateLimitBackendRedis:
			if c.Redis.Addr == "" {
				errs = append(errs, errors.New("redis.addr is required for the redis rate limit backend"))
			}
		default:
			errs = append(errs, fmt.Errorf("rate_limit.backend must be %q or %q, got %q",
				RateLimitBackendMemory, RateLimitBackendRedis, c.RateLimit.Backend))
		}
		if c.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, errors.New("rate_limit.requests_per_minute must be positive"))
		}
	}

	if c.Tracing.Enabled && c.Tracing.OTLPEndpoint == "" {
		errs = append(errs, errors.New("tracing.otlp_endpoint is required when tracing is enabled"))
	}

	return errors.Join(errs...)
}
