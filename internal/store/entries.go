package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sadopc/solartrack/internal/ids"
)

const entryColumns = `id, project_id, employee_id, date, hours, strings, tables, note, work_type, created_at`

const insertEntrySQL = `INSERT INTO entries (` + entryColumns + `)
	VALUES (:id, :project_id, :employee_id, :date, :hours, :strings, :tables, :note, :work_type, :created_at)`

// DateLayout is the ISO calendar date used for WorkEntry.Date.
const DateLayout = "2006-01-02"

// ValidDate reports whether d is a zero-padded YYYY-MM-DD calendar date.
func ValidDate(d string) bool {
	if len(d) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// ParseHours reads a user-typed hour count. Both "7.5" and "7,5" are accepted;
// anything unparsable or negative becomes 0.
func ParseHours(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return coerceHours(v)
}

// ParseUnits reads a user-typed unit count; fractions are truncated and
// invalid or negative input becomes 0.
func ParseUnits(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(v)
}

func coerceHours(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return 0
	}
	return h
}

// normalizeEntry applies the coercion rules and validates in. Hours must be
// positive; hourly entries never carry units.
func normalizeEntry(in EntryInput) (EntryInput, error) {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Date = strings.TrimSpace(in.Date)
	in.Tables = strings.TrimSpace(in.Tables)
	in.Note = strings.TrimSpace(in.Note)
	in.Hours = coerceHours(in.Hours)
	in.Strings = max(in.Strings, 0)
	if in.WorkType == "" {
		in.WorkType = WorkHourly
	}

	switch {
	case in.ProjectID == "":
		return in, &ValidationError{Field: "projectId", Msg: "project is required"}
	case in.EmployeeID == "":
		return in, &ValidationError{Field: "employeeId", Msg: "employee is required"}
	case !ValidDate(in.Date):
		return in, &ValidationError{Field: "date", Msg: fmt.Sprintf("invalid date %q", in.Date)}
	case !in.WorkType.Valid():
		return in, &ValidationError{Field: "workType", Msg: fmt.Sprintf("unknown work type %q", in.WorkType)}
	case in.Hours <= 0:
		return in, &ValidationError{Field: "hours", Msg: "hours must be greater than zero"}
	}

	if in.WorkType == WorkHourly {
		in.Strings = 0
	}
	return in, nil
}

func (s *Store) newEntry(in EntryInput) WorkEntry {
	return WorkEntry{
		ID:         ids.New(ids.Entry),
		ProjectID:  in.ProjectID,
		EmployeeID: in.EmployeeID,
		Date:       in.Date,
		Hours:      in.Hours,
		Strings:    in.Strings,
		Tables:     in.Tables,
		Note:       in.Note,
		WorkType:   in.WorkType,
		Created:    parseTimestamp(s.timestamp()),
	}
}

func (s *Store) CreateEntry(ctx context.Context, in EntryInput) (*WorkEntry, error) {
	in, err := normalizeEntry(in)
	if err != nil {
		return nil, err
	}
	e := s.newEntry(in)
	if _, err := s.db.NamedExecContext(ctx, insertEntrySQL, newEntryRow(e)); err != nil {
		return nil, opErr("insert entry", err)
	}
	s.log.Debug("entry created", "id", e.ID, "employee", e.EmployeeID, "date", e.Date)
	return &e, nil
}

// CreateEntries saves a whole crew's day at once. Inputs whose hours coerce
// to zero are skipped; any other invalid input rejects the batch. Everything
// is written in one transaction.
func (s *Store) CreateEntries(ctx context.Context, inputs []EntryInput) ([]WorkEntry, error) {
	var entries []WorkEntry
	for i, in := range inputs {
		if coerceHours(in.Hours) <= 0 {
			continue
		}
		norm, err := normalizeEntry(in)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, s.newEntry(norm))
	}
	if len(entries) == 0 {
		return nil, &ValidationError{Field: "hours", Msg: "no row has hours greater than zero"}
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, e := range entries {
			if _, err := tx.NamedExecContext(ctx, insertEntrySQL, newEntryRow(e)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, opErr("insert entries", err)
	}
	s.log.Info("batch saved", "entries", len(entries))
	return entries, nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*WorkEntry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, opErr(fmt.Sprintf("get entry %s", id), err)
	}
	e := row.model()
	return &e, nil
}

// ListEntries returns matching entries newest date first; entries on the
// same date are ordered most recently created first.
func (s *Store) ListEntries(ctx context.Context, f EntryFilter) ([]WorkEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE 1=1`
	var args []any

	if f.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, f.ProjectID)
	}
	if f.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, f.EmployeeID)
	}
	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND date <= ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY date DESC, created_at DESC, rowid DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, opErr("list entries", err)
	}
	var entries []WorkEntry
	for _, r := range rows {
		entries = append(entries, r.model())
	}
	return entries, nil
}

// ListEntriesByProjectAndDateRange returns a project's entries between the
// optional inclusive bounds from and to.
func (s *Store) ListEntriesByProjectAndDateRange(ctx context.Context, projectID, from, to string) ([]WorkEntry, error) {
	return s.ListEntries(ctx, EntryFilter{ProjectID: projectID, From: from, To: to})
}

// UpdateEntry replaces every editable field of the entry with the same ID.
// ID and creation time are kept.
func (s *Store) UpdateEntry(ctx context.Context, e WorkEntry) (*WorkEntry, error) {
	in, err := normalizeEntry(EntryInput{
		ProjectID:  e.ProjectID,
		EmployeeID: e.EmployeeID,
		Date:       e.Date,
		Hours:      e.Hours,
		Strings:    e.Strings,
		Tables:     e.Tables,
		Note:       e.Note,
		WorkType:   e.WorkType,
	})
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET project_id = ?, employee_id = ?, date = ?, hours = ?, strings = ?,
		 tables = ?, note = ?, work_type = ? WHERE id = ?`,
		in.ProjectID, in.EmployeeID, in.Date, in.Hours, in.Strings, in.Tables, in.Note, string(in.WorkType), e.ID,
	)
	if err != nil {
		return nil, opErr("update entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, opErr("update entry", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("update entry %s: %w", e.ID, ErrNotFound)
	}
	return s.GetEntry(ctx, e.ID)
}

// DeleteEntry removes the entry permanently; unknown IDs are a no-op.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return opErr("delete entry", err)
	}
	s.log.Debug("entry deleted", "id", id)
	return nil
}

// RestoreEntry re-inserts a previously deleted entry with its original ID and
// creation time. It backs the undo of DeleteEntry.
func (s *Store) RestoreEntry(ctx context.Context, e WorkEntry) error {
	if _, err := s.db.NamedExecContext(ctx, insertEntrySQL, newEntryRow(e)); err != nil {
		return opErr("restore entry", err)
	}
	return nil
}
