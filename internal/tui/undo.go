package tui

import (
	"context"
	"time"

	"github.com/sadopc/solartrack/internal/store"
)

// undoModel holds the last deleted entry until its undo window closes.
type undoModel struct {
	store *store.Store

	entry    *store.WorkEntry
	deadline time.Time
	window   time.Duration
}

func newUndoModel(s *store.Store, window time.Duration) undoModel {
	return undoModel{store: s, window: window}
}

// hold keeps e restorable until now plus the window. A zero window makes
// deletes final right away.
func (u *undoModel) hold(e store.WorkEntry, now time.Time) {
	if u.window <= 0 {
		u.entry = nil
		return
	}
	u.entry = &e
	u.deadline = now.Add(u.window)
}

// tick drops the held entry once the window is over. It reports whether
// that happened on this call.
func (u *undoModel) tick(now time.Time) bool {
	if u.entry == nil || now.Before(u.deadline) {
		return false
	}
	u.entry = nil
	return true
}

func (u undoModel) pending() bool {
	return u.entry != nil
}

func (u undoModel) remaining(now time.Time) time.Duration {
	if u.entry == nil {
		return 0
	}
	return u.deadline.Sub(now)
}

// undo re-inserts the held entry with its original ID and creation time.
// Without a held entry it returns nil, nil.
func (u *undoModel) undo(ctx context.Context) (*store.WorkEntry, error) {
	if u.entry == nil {
		return nil, nil
	}
	e := *u.entry
	if err := u.store.RestoreEntry(ctx, e); err != nil {
		return nil, err
	}
	u.entry = nil
	return &e, nil
}
