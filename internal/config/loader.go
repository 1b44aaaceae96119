package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. AGENDA_DB_PATH or
// AGENDA_NOTIFY_EMAIL_TO.
const EnvPrefix = "AGENDA"

// Load reads the configuration. An empty path means DefaultPath, which may be
// missing; an explicit path must exist. A .env file in the working directory
// is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DBPath = ExpandHome(cfg.DBPath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("window_minutes", d.WindowMinutes)
	v.SetDefault("sort", d.Sort)
	v.SetDefault("web.addr", d.Web.Addr)
	v.SetDefault("web.allowed_origins", d.Web.AllowedOrigins)
	v.SetDefault("notify.email.enabled", d.Notify.Email.Enabled)
	v.SetDefault("notify.email.from", d.Notify.Email.From)
	v.SetDefault("notify.email.to", d.Notify.Email.To)
	v.SetDefault("notify.email.region", d.Notify.Email.Region)
	v.SetDefault("notify.kafka.enabled", d.Notify.Kafka.Enabled)
	v.SetDefault("notify.kafka.brokers", d.Notify.Kafka.Brokers)
	v.SetDefault("notify.kafka.topic", d.Notify.Kafka.Topic)
}
