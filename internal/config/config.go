// Package config loads application configuration from environment variables
// (optionally seeded from a .env file) into typed structs.
//
// Variables use the ROOMESCAPE_ prefix. The first underscore after the prefix
// separates the section from the key, so ROOMESCAPE_DB_MAX_OPEN_CONNS maps to
// db.max_open_conns and ends up in Config.DB.MaxOpenConns.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload" // load .env into the process env before reading it
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "ROOMESCAPE_"

// Config holds all runtime configuration values.
type Config struct {
	App       AppConfig       `koanf:"app" validate:"required"`
	DB        DBConfig        `koanf:"db" validate:"required"`
	Auth      AuthConfig      `koanf:"auth" validate:"required"`
	Admin     AdminConfig     `koanf:"admin"`
	Redis     RedisConfig     `koanf:"redis"`
	Cache     CacheConfig     `koanf:"cache"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	RabbitMQ  RabbitMQConfig  `koanf:"rabbitmq"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// AppConfig groups HTTP server settings.
type AppConfig struct {
	Env             string        `koanf:"env"`                      // dev | test | prod
	Port            string        `koanf:"port" validate:"required"` // HTTP port to listen on
	Timezone        string        `koanf:"timezone"`                 // IANA zone used for "today" and "now"
	LogLevel        string        `koanf:"log_level"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"` // bound for each DB round trip
}

// DBConfig contains MySQL connection parameters and pool tuning.
type DBConfig struct {
	User            string        `koanf:"user" validate:"required"`
	Pass            string        `koanf:"pass"` // empty allowed
	Host            string        `koanf:"host" validate:"required"`
	Port            string        `koanf:"port" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// AuthConfig stores token and password hashing settings.
type AuthConfig struct {
	JWTSecret         string `koanf:"jwt_secret" validate:"required,min=16"`
	ExpirationMinutes int    `koanf:"expiration_minutes"`
	BcryptCost        int    `koanf:"bcrypt_cost"`
	CookieSecure      bool   `koanf:"cookie_secure"`
}

// AdminConfig describes the administrator account created at startup.
// Bootstrap is skipped when Email is empty.
type AdminConfig struct {
	Name     string `koanf:"name"`
	Email    string `koanf:"email" validate:"omitempty,email"`
	Password string `koanf:"password" validate:"required_with=Email"`
}

// RabbitMQConfig configures the reservation event queue. Publishing is
// disabled when URL is empty.
type RabbitMQConfig struct {
	URL         string `koanf:"url"`
	Queue       string `koanf:"queue"`
	EventLogDir string `koanf:"event_log_dir"` // where the worker writes reservation.log
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled       bool   `koanf:"enabled"`
	ServiceName   string `koanf:"service_name"`
	CollectorAddr string `koanf:"collector_addr" validate:"required_if=Enabled true"`
}

// Load reads configuration from the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	return LoadWithPrefix(EnvPrefix)
}

// LoadWithPrefix is Load with a caller-chosen variable prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return envKey(prefix, s)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// envKey turns ROOMESCAPE_DB_MAX_OPEN_CONNS into db.max_open_conns.
func envKey(prefix, s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, prefix))
	return strings.Replace(s, "_", ".", 1)
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "prod"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Local"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.ShutdownTimeout <= 0 {
		c.App.ShutdownTimeout = 10 * time.Second
	}
	if c.App.RequestTimeout <= 0 {
		c.App.RequestTimeout = 5 * time.Second
	}
	if c.DB.MaxOpenConns <= 0 {
		c.DB.MaxOpenConns = 25
	}
	if c.DB.MaxIdleConns <= 0 {
		c.DB.MaxIdleConns = c.DB.MaxOpenConns
	}
	if c.DB.ConnMaxLifetime <= 0 {
		c.DB.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Auth.ExpirationMinutes <= 0 {
		c.Auth.ExpirationMinutes = 60
	}
	if c.Auth.BcryptCost <= 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Admin.Name == "" {
		c.Admin.Name = "admin"
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "reservation.events"
	}
	if c.RabbitMQ.EventLogDir == "" {
		c.RabbitMQ.EventLogDir = "logs"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "roomescape"
	}
	c.Cache.applyDefaults()
	c.RateLimit.applyDefaults()
}

// Location resolves App.Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsDev reports whether the app runs in a developer environment.
func (c *Config) IsDev() bool {
	switch strings.ToLower(c.App.Env) {
	case "dev", "local", "development":
		return true
	}
	return false
}
