package report

import (
	"cmp"
	"context"
	"slices"

	"github.com/sadopc/solartrack/internal/store"
)

// Stats summarizes a set of entries.
type Stats struct {
	TotalHours     float64
	TotalUnits     int
	HourlyHours    float64
	TaskHours      float64
	WorkDays       int
	AvgHoursPerDay float64
	EntryCount     int
}

// Summarize computes Stats over entries. The average is rounded to one
// decimal and is 0 for no entries.
func Summarize(entries []store.WorkEntry) Stats {
	var st Stats
	days := make(map[string]struct{})
	for _, e := range entries {
		st.TotalHours += e.Hours
		st.TotalUnits += e.Strings
		if e.WorkType == store.WorkHourly {
			st.HourlyHours += e.Hours
		} else {
			st.TaskHours += e.Hours
		}
		days[e.Date] = struct{}{}
	}
	st.EntryCount = len(entries)
	st.WorkDays = len(days)
	if st.WorkDays > 0 {
		st.AvgHoursPerDay = round1(st.TotalHours / float64(st.WorkDays))
	}
	return st
}

// Stats aggregates the project's entries for month, or all time when month
// is empty.
func (e *Engine) Stats(ctx context.Context, projectID, month string) (Stats, error) {
	entries, err := e.monthEntries(ctx, projectID, month)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(entries), nil
}

type EmployeeStat struct {
	EmployeeID     string
	Name           string
	Hours          float64
	Units          int
	Days           int
	HourlyHours    float64
	TaskHours      float64
	AvgHoursPerDay float64
	TopHours       bool
	TopUnits       bool
}

// EmployeeStats aggregates hours per active employee. Employees without
// hours are left out; the rest are sorted by hours, highest first. TopHours
// marks everyone at the maximum hours and TopUnits everyone at the maximum
// units, the latter only when somebody finished any units.
func (e *Engine) EmployeeStats(ctx context.Context, projectID, month string) ([]EmployeeStat, error) {
	emps, err := e.src.ListEmployeesByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	entries, err := e.monthEntries(ctx, projectID, month)
	if err != nil {
		return nil, err
	}

	byEmp := make(map[string][]store.WorkEntry)
	for _, entry := range entries {
		byEmp[entry.EmployeeID] = append(byEmp[entry.EmployeeID], entry)
	}

	var out []EmployeeStat
	for _, emp := range emps {
		st := Summarize(byEmp[emp.ID])
		if st.TotalHours <= 0 {
			continue
		}
		out = append(out, EmployeeStat{
			EmployeeID:     emp.ID,
			Name:           emp.Name,
			Hours:          st.TotalHours,
			Units:          st.TotalUnits,
			Days:           st.WorkDays,
			HourlyHours:    st.HourlyHours,
			TaskHours:      st.TaskHours,
			AvgHoursPerDay: st.AvgHoursPerDay,
		})
	}
	slices.SortStableFunc(out, func(a, b EmployeeStat) int {
		return cmp.Compare(b.Hours, a.Hours)
	})

	var maxHours float64
	var maxUnits int
	for _, s := range out {
		maxHours = max(maxHours, s.Hours)
		maxUnits = max(maxUnits, s.Units)
	}
	for i := range out {
		out[i].TopHours = out[i].Hours == maxHours
		out[i].TopUnits = maxUnits > 0 && out[i].Units == maxUnits
	}
	return out, nil
}

// DayTotal is the sum of one date's entries.
type DayTotal struct {
	Date        string
	Hours       float64
	HourlyHours float64
	TaskHours   float64
	Units       int
	Entries     int
}

// Daily returns per-date totals in ascending date order.
func (e *Engine) Daily(ctx context.Context, projectID, month string) ([]DayTotal, error) {
	entries, err := e.monthEntries(ctx, projectID, month)
	if err != nil {
		return nil, err
	}
	return DailyTotals(entries), nil
}

func DailyTotals(entries []store.WorkEntry) []DayTotal {
	idx := make(map[string]int)
	var out []DayTotal
	for _, entry := range entries {
		i, ok := idx[entry.Date]
		if !ok {
			i = len(out)
			idx[entry.Date] = i
			out = append(out, DayTotal{Date: entry.Date})
		}
		d := &out[i]
		d.Hours += entry.Hours
		d.Units += entry.Strings
		d.Entries++
		if entry.WorkType == store.WorkHourly {
			d.HourlyHours += entry.Hours
		} else {
			d.TaskHours += entry.Hours
		}
	}
	slices.SortFunc(out, func(a, b DayTotal) int { return cmp.Compare(a.Date, b.Date) })
	return out
}

// DayGroup holds one date's entries as listed, with their totals.
type DayGroup struct {
	Date    string
	Entries []store.WorkEntry
	Hours   float64
	Units   int
}

// GroupByDay splits entries by date, newest date first. The order of
// entries within a day is kept.
func GroupByDay(entries []store.WorkEntry) []DayGroup {
	idx := make(map[string]int)
	var out []DayGroup
	for _, entry := range entries {
		i, ok := idx[entry.Date]
		if !ok {
			i = len(out)
			idx[entry.Date] = i
			out = append(out, DayGroup{Date: entry.Date})
		}
		g := &out[i]
		g.Entries = append(g.Entries, entry)
		g.Hours += entry.Hours
		g.Units += entry.Strings
	}
	slices.SortStableFunc(out, func(a, b DayGroup) int { return cmp.Compare(b.Date, a.Date) })
	return out
}
