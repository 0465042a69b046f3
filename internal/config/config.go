// Package config - application configuration management.
//
// Uses Viper to merge, in priority order:
// 1. Environment variables (COMMISPIPE_*)
// 2. Config file (yaml)
// 3. Defaults
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for both binaries.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Verifier  VerifierConfig  `mapstructure:"verifier"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

// AppConfig identifies the service.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	BuildTime   string `mapstructure:"build_time"`
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// ServerConfig configures the ops HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConnections  int32         `mapstructure:"max_connections"`
	MinConnections  int32         `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// QueueConfig configures the JetStream event stream.
type QueueConfig struct {
	URL     string `mapstructure:"url"`
	Stream  string `mapstructure:"stream"`
	Subject string `mapstructure:"subject"`
	Durable string `mapstructure:"durable"`
}

// WorkerConfig configures the verification worker's retry policy.
type WorkerConfig struct {
	MaxAttempts    int             `mapstructure:"max_attempts"`
	Backoff        []time.Duration `mapstructure:"backoff"`
	AttemptTimeout time.Duration   `mapstructure:"attempt_timeout"`
}

// VerifierConfig points at the external verification service. An empty URL
// switches the worker to the pass-through verifier, which is only acceptable
// in development.
type VerifierConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig configures the dedup cache. Addr may be empty to run without
// the cache; the ledger still guarantees idempotency.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	DedupTTL time.Duration `mapstructure:"dedup_ttl"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// CORSConfig configures cross-origin access.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
	Output string `mapstructure:"output"` // stdout, stderr
}

// Load reads the config from a file plus environment variables.
func Load(configPath, configName string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/commispipe")

	v.SetEnvPrefix("COMMISPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file is fine; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv reads the config from environment variables only.
func LoadFromEnv() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("COMMISPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "commispipe")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", true)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "commispipe")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("queue.url", "nats://localhost:4222")
	v.SetDefault("queue.stream", "COMMISSION_EVENTS")
	v.SetDefault("queue.subject", "commissions.payment.affecting")
	v.SetDefault("queue.durable", "verification-worker")

	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.backoff", []string{"30s", "60s", "120s"})
	v.SetDefault("worker.attempt_timeout", "120s")

	v.SetDefault("verifier.url", "")
	v.SetDefault("verifier.timeout", "30s")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dedup_ttl", "24h")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
}

func bindEnvVars(v *viper.Viper) {
	// Database usually comes from env in production.
	_ = v.BindEnv("database.host", "COMMISPIPE_DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "COMMISPIPE_DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "COMMISPIPE_DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "COMMISPIPE_DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.database", "COMMISPIPE_DATABASE_DATABASE", "DB_NAME")

	_ = v.BindEnv("queue.url", "COMMISPIPE_QUEUE_URL", "NATS_URL")
	_ = v.BindEnv("verifier.url", "COMMISPIPE_VERIFIER_URL", "VERIFIER_URL")
	_ = v.BindEnv("redis.addr", "COMMISPIPE_REDIS_ADDR", "REDIS_ADDR")

	_ = v.BindEnv("server.port", "COMMISPIPE_SERVER_PORT", "PORT")
	_ = v.BindEnv("app.environment", "COMMISPIPE_APP_ENVIRONMENT", "ENVIRONMENT", "ENV")
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Queue.URL == "" {
		return fmt.Errorf("queue url is required")
	}
	if c.Queue.Stream == "" || c.Queue.Subject == "" {
		return fmt.Errorf("queue stream and subject are required")
	}

	if c.Worker.MaxAttempts < 1 {
		return fmt.Errorf("worker max_attempts must be at least 1")
	}
	if len(c.Worker.Backoff) > c.Worker.MaxAttempts {
		return fmt.Errorf("worker backoff schedule longer than max_attempts")
	}
	if c.Worker.AttemptTimeout <= 0 {
		return fmt.Errorf("worker attempt_timeout must be positive")
	}

	return nil
}

// Development returns the development configuration.
func Development() *Config {
	return &Config{
		App: AppConfig{
			Name:        "commispipe",
			Version:     "dev",
			Environment: "development",
			Debug:       true,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Database:        "commispipe",
			SSLMode:         "disable",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
		Queue: QueueConfig{
			URL:     "nats://localhost:4222",
			Stream:  "COMMISSION_EVENTS",
			Subject: "commissions.payment.affecting",
			Durable: "verification-worker",
		},
		Worker: WorkerConfig{
			MaxAttempts:    3,
			Backoff:        []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second},
			AttemptTimeout: 120 * time.Second,
		},
		Redis: RedisConfig{
			DedupTTL: 24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "localhost:4318",
			SampleRatio: 1.0,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Test returns the test configuration.
func Test() *Config {
	cfg := Development()
	cfg.App.Environment = "test"
	cfg.Database.Database = "commispipe_test"
	cfg.Log.Level = "error"
	return cfg
}
