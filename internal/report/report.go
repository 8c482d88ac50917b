// Package report derives statistics, attendance grids, week comparisons and
// search results from stored work entries. It never writes.
package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sadopc/solartrack/internal/store"
)

// MonthLayout is the shape of a month token such as "2024-06".
const MonthLayout = "2006-01"

// Source is the read side of the store used by the engine. *store.Store
// satisfies it.
type Source interface {
	ListEntriesByProjectAndDateRange(ctx context.Context, projectID, from, to string) ([]store.WorkEntry, error)
	ListEmployeesByProject(ctx context.Context, projectID string) ([]store.Employee, error)
	ListAllEmployees(ctx context.Context, projectID string) ([]store.Employee, error)
}

type Engine struct {
	src Source
	now func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now for week computations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MonthRange resolves a month token to its first and last calendar day. An
// empty token means all time and yields two empty bounds.
func MonthRange(month string) (from, to string, err error) {
	if month == "" {
		return "", "", nil
	}
	t, err := time.Parse(MonthLayout, month)
	if err != nil || len(month) != len(MonthLayout) {
		return "", "", &store.ValidationError{Field: "month", Msg: fmt.Sprintf("invalid month %q", month)}
	}
	last := t.AddDate(0, 1, -1)
	return t.Format(store.DateLayout), last.Format(store.DateLayout), nil
}

// DaysInMonth returns the number of days of a valid month token.
func DaysInMonth(month string) (int, error) {
	_, to, err := MonthRange(month)
	if err != nil {
		return 0, err
	}
	if to == "" {
		return 0, &store.ValidationError{Field: "month", Msg: "month is required"}
	}
	last, _ := time.Parse(store.DateLayout, to)
	return last.Day(), nil
}

// CurrentMonth returns the month token of t.
func CurrentMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

func (e *Engine) monthEntries(ctx context.Context, projectID, month string) ([]store.WorkEntry, error) {
	from, to, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	return e.src.ListEntriesByProjectAndDateRange(ctx, projectID, from, to)
}

// Names maps every employee of the project, inactive ones included, to its
// display name. Entries pointing elsewhere are absent from the map.
func (e *Engine) Names(ctx context.Context, projectID string) (map[string]string, error) {
	emps, err := e.src.ListAllEmployees(ctx, projectID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(emps))
	for _, emp := range emps {
		names[emp.ID] = emp.Name
	}
	return names, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
