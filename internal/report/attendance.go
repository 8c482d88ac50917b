package report

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/sadopc/solartrack/internal/store"
)

// Attendance is an employee by day-of-month grid of hours.
type Attendance struct {
	Month     string
	Days      int
	Rows      []AttendanceRow
	DayTotals []float64 // index 0 is day 1
	Total     float64
}

type AttendanceRow struct {
	EmployeeID string
	// Name is empty when the employee record no longer exists.
	Name  string
	Hours []float64 // index 0 is day 1
	Total float64
}

// DisplayName returns the row's name, or placeholder for an unresolved
// employee.
func (r AttendanceRow) DisplayName(placeholder string) string {
	if r.Name == "" {
		return placeholder
	}
	return r.Name
}

// Attendance builds the grid for month, which is required. Every employee
// that has hours in the month gets a row, so Total always equals the sum of
// the month's entries. Rows are sorted by their total, highest first.
func (e *Engine) Attendance(ctx context.Context, projectID, month string) (*Attendance, error) {
	days, err := DaysInMonth(month)
	if err != nil {
		return nil, err
	}
	entries, err := e.monthEntries(ctx, projectID, month)
	if err != nil {
		return nil, err
	}
	names, err := e.Names(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return BuildAttendance(month, days, entries, names), nil
}

// BuildAttendance lays entries of a single month out on a grid of days
// columns.
func BuildAttendance(month string, days int, entries []store.WorkEntry, names map[string]string) *Attendance {
	a := &Attendance{Month: month, Days: days, DayTotals: make([]float64, days)}
	rows := make(map[string]*AttendanceRow)
	var order []string

	for _, entry := range entries {
		day, err := strconv.Atoi(entry.Date[len(entry.Date)-2:])
		if err != nil || day < 1 || day > days {
			continue
		}
		row, ok := rows[entry.EmployeeID]
		if !ok {
			row = &AttendanceRow{
				EmployeeID: entry.EmployeeID,
				Name:       names[entry.EmployeeID],
				Hours:      make([]float64, days),
			}
			rows[entry.EmployeeID] = row
			order = append(order, entry.EmployeeID)
		}
		row.Hours[day-1] += entry.Hours
		row.Total += entry.Hours
		a.DayTotals[day-1] += entry.Hours
		a.Total += entry.Hours
	}

	for _, id := range order {
		if rows[id].Total > 0 {
			a.Rows = append(a.Rows, *rows[id])
		}
	}
	slices.SortStableFunc(a.Rows, func(x, y AttendanceRow) int {
		if c := cmp.Compare(y.Total, x.Total); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})
	return a
}
