package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.DBPath = filepath.Join(home, ".mkagenda", "agenda.db")
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Window() != time.Hour {
		t.Errorf("Window() = %v", cfg.Window())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
db_path: ~/data/agenda.db
window_minutes: 30
sort: priority
web:
  addr: ":9090"
notify:
  kafka:
    enabled: true
    topic: reminders
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AGENDA_WINDOW_MINUTES", "15")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowMinutes != 15 {
		t.Errorf("WindowMinutes = %d, want env override 15", cfg.WindowMinutes)
	}
	if cfg.Sort != "priority" || cfg.Web.Addr != ":9090" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if want := filepath.Join(home, "data", "agenda.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
	if !cfg.Notify.Kafka.Enabled || cfg.Notify.Kafka.Topic != "reminders" {
		t.Errorf("kafka = %+v", cfg.Notify.Kafka)
	}
	if diff := cmp.Diff([]string{"localhost:9092"}, cfg.Notify.Kafka.Brokers); diff != "" {
		t.Errorf("brokers should keep the default (-want +got):\n%s", diff)
	}
}

func TestLoadExplicitMissingPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"window too small", func(c *Config) { c.WindowMinutes = 0 }, "window_minutes"},
		{"window too large", func(c *Config) { c.WindowMinutes = 1441 }, "window_minutes"},
		{"bad sort", func(c *Config) { c.Sort = "alpha" }, "sort"},
		{"no db", func(c *Config) { c.DBPath = "" }, "db_path"},
		{"email without to", func(c *Config) { c.Notify.Email.Enabled = true; c.Notify.Email.From = "a@b.c" }, "notify.email"},
		{"kafka without topic", func(c *Config) { c.Notify.Kafka.Enabled = true; c.Notify.Kafka.Topic = "" }, "notify.kafka"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "agenda.db")
	cfg.Sort = "priority"
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %v, want 0600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("reload mismatch (-want +got):\n%s", diff)
	}
}
