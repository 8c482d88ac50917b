package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/solartrack/internal/ids"
)

const employeeColumns = `id, name, project_id, created_at, active`

// CreateEmployee adds an employee to an existing, active project. The project
// reference is not re-checked after creation.
func (s *Store) CreateEmployee(ctx context.Context, name, projectID string) (*Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Msg: "employee name is required"}
	}
	p, err := s.GetProject(ctx, projectID)
	if errors.Is(err, ErrNotFound) || (err == nil && !p.Active) {
		return nil, &ValidationError{Field: "projectId", Msg: "project does not exist"}
	}
	if err != nil {
		return nil, err
	}

	row := employeeRow{
		ID:        ids.New(ids.Employee),
		Name:      name,
		ProjectID: projectID,
		CreatedAt: s.timestamp(),
		Active:    true,
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO employees (id, name, project_id, created_at, active)
		 VALUES (:id, :name, :project_id, :created_at, :active)`, row)
	if err != nil {
		return nil, opErr("insert employee", err)
	}
	s.log.Debug("employee created", "id", row.ID, "project", projectID)
	e := row.model()
	return &e, nil
}

// GetEmployee returns the employee whether or not it is active.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	var row employeeRow
	err := s.db.GetContext(ctx, &row, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get employee %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, opErr(fmt.Sprintf("get employee %s", id), err)
	}
	e := row.model()
	return &e, nil
}

// ListEmployeesByProject returns the project's active employees in creation order.
func (s *Store) ListEmployeesByProject(ctx context.Context, projectID string) ([]Employee, error) {
	return s.listEmployees(ctx, projectID, false)
}

// ListAllEmployees includes soft-deleted employees, so historical entries can
// still be resolved to a name.
func (s *Store) ListAllEmployees(ctx context.Context, projectID string) ([]Employee, error) {
	return s.listEmployees(ctx, projectID, true)
}

func (s *Store) listEmployees(ctx context.Context, projectID string, includeInactive bool) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE project_id = ?`
	if !includeInactive {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at, rowid`

	var rows []employeeRow
	if err := s.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, opErr("list employees", err)
	}
	var employees []Employee
	for _, r := range rows {
		employees = append(employees, r.model())
	}
	return employees, nil
}

// SoftDeleteEmployee marks the employee inactive; unknown IDs are a no-op.
func (s *Store) SoftDeleteEmployee(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE employees SET active = 0 WHERE id = ? AND active = 1`, id)
	if err != nil {
		return opErr("soft delete employee", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Info("employee deleted", "id", id)
	}
	return nil
}
