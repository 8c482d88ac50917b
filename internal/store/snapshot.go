package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Snapshot reads every project, employee and entry, inactive ones included.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		projects  []projectRow
		employees []employeeRow
		entries   []entryRow
	)
	if err := s.db.SelectContext(ctx, &projects,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at, rowid`); err != nil {
		return nil, opErr("snapshot projects", err)
	}
	if err := s.db.SelectContext(ctx, &employees,
		`SELECT `+employeeColumns+` FROM employees ORDER BY created_at, rowid`); err != nil {
		return nil, opErr("snapshot employees", err)
	}
	if err := s.db.SelectContext(ctx, &entries,
		`SELECT `+entryColumns+` FROM entries ORDER BY date, created_at, rowid`); err != nil {
		return nil, opErr("snapshot entries", err)
	}

	snap := &Snapshot{}
	for _, r := range projects {
		snap.Projects = append(snap.Projects, r.model())
	}
	for _, r := range employees {
		snap.Employees = append(snap.Employees, r.model())
	}
	for _, r := range entries {
		snap.Entries = append(snap.Entries, r.model())
	}
	return snap, nil
}

// ReplaceAll discards the current content and writes snap in a single
// transaction. On error nothing is changed. Settings are kept.
func (s *Store) ReplaceAll(ctx context.Context, snap *Snapshot) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"entries", "employees", "projects"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		for _, p := range snap.Projects {
			row := projectRow{ID: p.ID, Name: p.Name, CreatedAt: formatTimestamp(p.Created), Active: p.Active}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO projects (id, name, created_at, active) VALUES (:id, :name, :created_at, :active)`, row); err != nil {
				return err
			}
		}
		for _, e := range snap.Employees {
			row := employeeRow{ID: e.ID, Name: e.Name, ProjectID: e.ProjectID, CreatedAt: formatTimestamp(e.Created), Active: e.Active}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO employees (id, name, project_id, created_at, active)
				 VALUES (:id, :name, :project_id, :created_at, :active)`, row); err != nil {
				return err
			}
		}
		for _, e := range snap.Entries {
			if _, err := tx.NamedExecContext(ctx, insertEntrySQL, newEntryRow(e)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return opErr("replace all", err)
	}
	s.log.Info("store replaced",
		"projects", len(snap.Projects), "employees", len(snap.Employees), "entries", len(snap.Entries))
	return nil
}
