package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/solartrack/internal/ids"
)

const projectColumns = `id, name, created_at, active`

func (s *Store) CreateProject(ctx context.Context, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Msg: "project name is required"}
	}
	row := projectRow{ID: ids.New(ids.Project), Name: name, CreatedAt: s.timestamp(), Active: true}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO projects (id, name, created_at, active) VALUES (:id, :name, :created_at, :active)`, row)
	if err != nil {
		return nil, opErr("insert project", err)
	}
	s.log.Debug("project created", "id", row.ID, "name", name)
	p := row.model()
	return &p, nil
}

// GetProject returns the project whether or not it is active.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, opErr(fmt.Sprintf("get project %s", id), err)
	}
	p := row.model()
	return &p, nil
}

// ListProjects returns active projects in creation order.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	return s.listProjects(ctx, false)
}

// ListAllProjects includes soft-deleted projects.
func (s *Store) ListAllProjects(ctx context.Context) ([]Project, error) {
	return s.listProjects(ctx, true)
}

func (s *Store) listProjects(ctx context.Context, includeInactive bool) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY created_at, rowid`

	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, opErr("list projects", err)
	}
	var projects []Project
	for _, r := range rows {
		projects = append(projects, r.model())
	}
	return projects, nil
}

// SoftDeleteProject marks the project inactive. Unknown or already inactive
// IDs are a no-op. Entries and employees are left in place.
func (s *Store) SoftDeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET active = 0 WHERE id = ? AND active = 1`, id)
	if err != nil {
		return opErr("soft delete project", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Info("project deleted", "id", id)
	}
	return nil
}
