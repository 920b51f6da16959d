package config

import (
	"fmt"
	"time"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	StaticDir      string        `mapstructure:"static_dir"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

// Address returns the listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig selects where credentials and the persisted session live.
type StoreConfig struct {
	Driver string      `mapstructure:"driver"` // file | redis
	Path   string      `mapstructure:"path"`
	Watch  bool        `mapstructure:"watch"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// AuthConfig controls in-flight login attempts.
type AuthConfig struct {
	AttemptTTL      time.Duration `mapstructure:"attempt_ttl"`      // idle attempts are dropped after this
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // sweep period of the registry
}

type TelegramConfig struct {
	ConnectionRetries int           `mapstructure:"connection_retries"`
	DialTimeout       time.Duration `mapstructure:"dial_timeout"`
	DialogPageSize    int           `mapstructure:"dialog_page_size"`
	TestServer        bool          `mapstructure:"test_server"`
	DeviceModel       string        `mapstructure:"device_model"`
}

// AuditConfig configures the relational audit trail.
type AuditConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Driver     string `mapstructure:"driver"` // sqlite | postgres
	DSN        string `mapstructure:"dsn"`
	SigningKey string `mapstructure:"signing_key"` // HMAC key for entry signatures; empty disables signing
}

// EventsConfig configures publishing of membership events to Kafka.
type EventsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

type LogConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	TelegramLevel string `mapstructure:"telegram_level"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	Environment    string  `mapstructure:"environment"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case "file":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file driver")
		}
	case "redis":
		if c.Store.Redis.Address == "" {
			return fmt.Errorf("store.redis.address is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Auth.AttemptTTL <= 0 {
		return fmt.Errorf("auth.attempt_ttl must be positive")
	}
	if c.Audit.Enabled && c.Audit.Driver != "sqlite" && c.Audit.Driver != "postgres" {
		return fmt.Errorf("unknown audit.driver %q", c.Audit.Driver)
	}
	if c.Events.Enabled && (len(c.Events.Brokers) == 0 || c.Events.Topic == "") {
		return fmt.Errorf("events.brokers and events.topic are required when events are enabled")
	}
	return nil
}

//Personal.AI order the ending
