package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "cs", cfg.Locale)
	require.Equal(t, 5, cfg.UndoSeconds)
	require.Equal(t, "solartrack.db", filepath.Base(cfg.DBPath))
	require.False(t, cfg.S3.Enabled())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
db_path: /tmp/crew.db
locale: EN
undo_seconds: 10
s3:
  bucket: backups
  endpoint: http://127.0.0.1:9000
  prefix: crew-a
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/crew.db", cfg.DBPath)
	require.Equal(t, "en", cfg.Locale)
	require.Equal(t, 10, cfg.UndoSeconds)
	require.True(t, cfg.S3.Enabled())
	require.Equal(t, "us-east-1", cfg.S3.Region)
	require.Equal(t, "crew-a", cfg.S3.Prefix)
	require.Equal(t, "/tmp/solartrack.log", cfg.LogPath())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "locale: en\nlog_level: DEBUG\n")
	t.Setenv("SOLARTRACK_LOCALE", "cs")
	t.Setenv("SOLARTRACK_DB", "/data/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "cs", cfg.Locale)
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.Equal(t, "/data/x.db", cfg.DBPath)
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("SOLARTRACK_UNDO_SECONDS", "0")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 0, cfg.UndoSeconds)
	require.Equal(t, "cs", cfg.Locale)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeFile(t, "locale: de\n"))
	require.ErrorContains(t, err, "unsupported locale")

	_, err = Load(writeFile(t, "log_format: xml\n"))
	require.ErrorContains(t, err, "unsupported log format")

	_, err = Load(writeFile(t, "undo_seconds: -1\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "locale: [cs\n"))
	require.Error(t, err)
}
