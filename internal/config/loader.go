package config

import (
	"strings"

	"github.com/spf13/viper"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/errors"
)

// setDefaults registers a default for every key so that env-only deployments work.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.static_dir", constants.DefaultStaticDir)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", constants.DefaultConfigFile)
	v.SetDefault("store.watch", true)
	v.SetDefault("store.redis.address", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key", constants.DefaultRedisConfigKey)

	v.SetDefault("auth.attempt_ttl", constants.DefaultAttemptTTL)
	v.SetDefault("auth.cleanup_interval", constants.DefaultAttemptCleanupInterval)

	v.SetDefault("telegram.connection_retries", constants.DefaultConnectionRetries)
	v.SetDefault("telegram.dial_timeout", constants.DefaultDialTimeout)
	v.SetDefault("telegram.dialog_page_size", constants.DefaultDialogPageSize)
	v.SetDefault("telegram.test_server", false)
	v.SetDefault("telegram.device_model", "tgroups")

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.driver", "sqlite")
	v.SetDefault("audit.dsn", "tgroups-audit.db")
	v.SetDefault("audit.signing_key", "")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.topic", "tgroups.membership")
	v.SetDefault("events.write_timeout", "10s")
	v.SetDefault("events.batch_timeout", "1s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.telegram_level", "warn")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "tgroups")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sampling_rate", 1.0)
}

// LoadConfig loads the configuration from file and environment variables.
// configFile may be empty, in which case tgroups.yaml is searched for in the usual places.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Load from config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("tgroups")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/tgroups/")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.WrapError(err, constants.ErrCodeServerError, "failed to read config file")
		}
	}

	// Load from environment variables, e.g. TGROUPS_SERVER_PORT
	v.SetEnvPrefix("TGROUPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PORT is honoured for parity with common PaaS conventions
	_ = v.BindEnv("server.port", "TGROUPS_SERVER_PORT", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapError(err, constants.ErrCodeServerError, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

//Personal.AI order the ending
