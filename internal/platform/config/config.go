// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// StoreBackend selects the repository implementation.
type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
	StoreSQLite   StoreBackend = "sqlite"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"PROFILEGUARD_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"PROFILEGUARD_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"PROFILEGUARD_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"PROFILEGUARD_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"PROFILEGUARD_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Auth holds token validation settings.
type Auth struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"profileguard"`
	JWTAudience   string `env:"JWT_AUDIENCE" envDefault:"profileguard-api"`
	AdminToken    string `env:"ADMIN_API_TOKEN"`
}

// RedisConfig mirrors the go-redis pool options we expose.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type PostgresConfig struct {
	DSN          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int    `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	Migrate      bool   `env:"DATABASE_MIGRATE" envDefault:"true"`
}

// BreakerConfig tunes the circuit breaker in front of remote stores.
type BreakerConfig struct {
	FailureThreshold int           `env:"STORE_BREAKER_FAILURES" envDefault:"5"`
	Cooldown         time.Duration `env:"STORE_BREAKER_COOLDOWN" envDefault:"30s"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" envDefault:"data/profileguard.db"`
}

type KafkaConfig struct {
	Brokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	PromptTopic string   `env:"KAFKA_PROMPT_TOPIC" envDefault:"profileguard.prompts"`
	AuditTopic  string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"profileguard.audit"`
	CreateTopic bool     `env:"KAFKA_CREATE_TOPICS" envDefault:"false"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Config is the full server configuration.
type Config struct {
	Server   Server
	Auth     Auth
	Store    StoreBackend `env:"PROFILEGUARD_STORE" envDefault:"memory"`
	Breaker  BreakerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	SQLite   SQLiteConfig
	Kafka    KafkaConfig
	Log      LogConfig
	// Environment is "dev" or "production"; production refuses the dev signing key.
	Environment string `env:"PROFILEGUARD_ENV" envDefault:"dev"`
}

// FromEnv parses and validates the configuration.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	if c.Auth.JWTSigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required")
	}
	if c.Environment == "production" && c.Auth.JWTSigningKey == devSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	return nil
}
