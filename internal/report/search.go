package report

import (
	"context"
	"strconv"
	"strings"

	"github.com/sadopc/solartrack/internal/store"
	"golang.org/x/text/cases"
)

// DefaultMaxHours is the upper hours bound of a Query that sets none.
const DefaultMaxHours = 1e9

// Query narrows a project's entries. Every set field must match.
type Query struct {
	EmployeeID string
	From       string // inclusive YYYY-MM-DD
	To         string // inclusive YYYY-MM-DD
	WorkType   string // "hourly", "task", "all" or empty
	MinHours   float64
	MaxHours   *float64 // nil means DefaultMaxHours
	Text       string
}

// HumanDate formats an ISO date as DD.MM.YYYY. Anything else is returned
// unchanged.
func HumanDate(d string) string {
	if len(d) != len(store.DateLayout) || d[4] != '-' || d[7] != '-' {
		return d
	}
	return d[8:10] + "." + d[5:7] + "." + d[0:4]
}

// FormatHours renders hours in the shortest decimal form, e.g. 7.5 or 8.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

type matcher struct {
	q      Query
	max    float64
	needle string
	fold   cases.Caser
}

func newMatcher(q Query) *matcher {
	m := &matcher{q: q, max: DefaultMaxHours, fold: cases.Fold()}
	if q.MaxHours != nil {
		m.max = *q.MaxHours
	}
	m.needle = m.fold.String(strings.TrimSpace(q.Text))
	return m
}

func (m *matcher) match(e store.WorkEntry, name string) bool {
	q := m.q
	switch {
	case q.EmployeeID != "" && e.EmployeeID != q.EmployeeID:
		return false
	case q.From != "" && e.Date < q.From:
		return false
	case q.To != "" && e.Date > q.To:
		return false
	case q.WorkType != "" && q.WorkType != "all" && string(e.WorkType) != q.WorkType:
		return false
	case e.Hours < q.MinHours || e.Hours > m.max:
		return false
	}
	if m.needle == "" {
		return true
	}
	for _, field := range []string{
		name,
		e.Tables,
		e.Note,
		e.Date,
		HumanDate(e.Date),
		FormatHours(e.Hours),
		strconv.Itoa(e.Strings),
	} {
		if strings.Contains(m.fold.String(field), m.needle) {
			return true
		}
	}
	return false
}

// Filter returns the entries matching q, keeping their order. names resolves
// employee IDs for the free-text match.
func Filter(entries []store.WorkEntry, names map[string]string, q Query) []store.WorkEntry {
	m := newMatcher(q)
	var out []store.WorkEntry
	for _, e := range entries {
		if m.match(e, names[e.EmployeeID]) {
			out = append(out, e)
		}
	}
	return out
}

// Search filters the whole project history with q.
func (e *Engine) Search(ctx context.Context, projectID string, q Query) ([]store.WorkEntry, error) {
	entries, err := e.src.ListEntriesByProjectAndDateRange(ctx, projectID, q.From, q.To)
	if err != nil {
		return nil, err
	}
	names, err := e.Names(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return Filter(entries, names, q), nil
}
