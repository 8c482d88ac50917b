// Package config loads solartrack settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sadopc/solartrack/internal/store"
)

type S3Config struct {
	Endpoint  string `yaml:"endpoint" env:"SOLARTRACK_S3_ENDPOINT"`
	Region    string `yaml:"region" env:"SOLARTRACK_S3_REGION" env-default:"us-east-1"`
	Bucket    string `yaml:"bucket" env:"SOLARTRACK_S3_BUCKET"`
	AccessKey string `yaml:"access_key" env:"SOLARTRACK_S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SOLARTRACK_S3_SECRET_KEY"`
	Prefix    string `yaml:"prefix" env:"SOLARTRACK_S3_PREFIX"`
}

// Enabled reports whether off-device backups are configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type Config struct {
	DBPath      string   `yaml:"db_path" env:"SOLARTRACK_DB"`
	LogLevel    string   `yaml:"log_level" env:"SOLARTRACK_LOG_LEVEL" env-default:"INFO"`
	LogFormat   string   `yaml:"log_format" env:"SOLARTRACK_LOG_FORMAT" env-default:"text"`
	Locale      string   `yaml:"locale" env:"SOLARTRACK_LOCALE" env-default:"cs"`
	ExportDir   string   `yaml:"export_dir" env:"SOLARTRACK_EXPORT_DIR" env-default:"."`
	UndoSeconds int      `yaml:"undo_seconds" env:"SOLARTRACK_UNDO_SECONDS" env-default:"5"`
	S3          S3Config `yaml:"s3"`
}

// DefaultPath returns ~/.config/solartrack/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "solartrack", "config.yaml"), nil
}

// Load reads the YAML file at path with environment overrides. A missing
// file, or an empty path, means environment and defaults only.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
		return cfg, cfg.finish()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
	}
	return cfg, cfg.finish()
}

func (c *Config) finish() error {
	if c.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
		c.DBPath = p
	}
	c.Locale = strings.ToLower(strings.TrimSpace(c.Locale))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	return c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Locale != "cs" && c.Locale != "en":
		return fmt.Errorf("unsupported locale %q", c.Locale)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	case c.UndoSeconds < 0:
		return fmt.Errorf("undo_seconds must not be negative")
	}
	return nil
}

// LogPath is where the TUI writes its log, next to the database.
func (c Config) LogPath() string {
	return filepath.Join(filepath.Dir(c.DBPath), "solartrack.log")
}
