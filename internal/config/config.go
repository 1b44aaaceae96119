// Package config loads agenda settings from a .env file, a yaml file and
// AGENDA_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appDir = ".mkagenda"

// Config is the full agenda configuration.
type Config struct {
	// DBPath is the SQLite file. A leading ~ expands to the home directory.
	DBPath string `yaml:"db_path" mapstructure:"db_path"`

	// WindowMinutes is how far ahead reminder checks look.
	WindowMinutes int `yaml:"window_minutes" mapstructure:"window_minutes"`

	// Sort is the default list order: "manual" or "priority".
	Sort string `yaml:"sort" mapstructure:"sort"`

	Web    WebConfig    `yaml:"web" mapstructure:"web"`
	Notify NotifyConfig `yaml:"notify" mapstructure:"notify"`
}

// WebConfig configures the web host.
type WebConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// NotifyConfig selects extra reminder sinks besides the host's own.
type NotifyConfig struct {
	Email EmailConfig `yaml:"email" mapstructure:"email"`
	Kafka KafkaConfig `yaml:"kafka" mapstructure:"kafka"`
}

// EmailConfig sends reminders through AWS SES.
type EmailConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	From    string `yaml:"from" mapstructure:"from"`
	To      string `yaml:"to" mapstructure:"to"`
	Region  string `yaml:"region" mapstructure:"region"`
}

// KafkaConfig publishes reminders to a topic.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" mapstructure:"enabled"`
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" mapstructure:"topic"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DBPath:        filepath.Join("~", appDir, "agenda.db"),
		WindowMinutes: 60,
		Sort:          "manual",
		Web: WebConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Notify: NotifyConfig{
			Email: EmailConfig{Region: "us-east-2"},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "mkagenda-reminders",
			},
		},
	}
}

// Window returns WindowMinutes as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.WindowMinutes < 1 || c.WindowMinutes > 24*60 {
		return fmt.Errorf("window_minutes must be between 1 and 1440, got %d", c.WindowMinutes)
	}
	switch c.Sort {
	case "manual", "priority":
	default:
		return fmt.Errorf("sort must be manual or priority, got %q", c.Sort)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Notify.Email.Enabled && (c.Notify.Email.From == "" || c.Notify.Email.To == "") {
		return fmt.Errorf("notify.email needs from and to")
	}
	if c.Notify.Kafka.Enabled && (len(c.Notify.Kafka.Brokers) == 0 || c.Notify.Kafka.Topic == "") {
		return fmt.Errorf("notify.kafka needs brokers and topic")
	}
	return nil
}

// DefaultPath returns ~/.mkagenda/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, appDir, "config.yaml")
}

// Save writes cfg as yaml, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, b, 0o600)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
