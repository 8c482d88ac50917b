package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys.
const (
	SettingLocale         = "locale"
	SettingCurrentProject = "current_project"
	SettingUndoSeconds    = "undo_seconds"
)

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", opErr(fmt.Sprintf("get setting %q", key), err)
	}
	return value, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return opErr("set setting", err)
	}
	return nil
}

func (s *Store) GetAllSettings(ctx context.Context) ([]Setting, error) {
	var settings []Setting
	if err := s.db.SelectContext(ctx, &settings, `SELECT key, value FROM settings ORDER BY key`); err != nil {
		return nil, opErr("list settings", err)
	}
	return settings, nil
}
