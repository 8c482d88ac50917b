package backup

import (
	"fmt"
	"math"
	"time"

	"github.com/sadopc/solartrack/internal/store"
)

// Version of the snapshot document written by Create.
const Version = 1

type document struct {
	Version    int            `json:"version"`
	ExportedAt string         `json:"exportedAt"`
	Projects   *[]projectDoc  `json:"projects"`
	Employees  *[]employeeDoc `json:"employees"`
	Entries    *[]entryDoc    `json:"entries"`
}

type projectDoc struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Created string `json:"created"`
	Active  *bool  `json:"active,omitempty"`
}

type employeeDoc struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Created   string `json:"created"`
	Active    *bool  `json:"active,omitempty"`
}

type entryDoc struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"projectId"`
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	Strings    int     `json:"strings"`
	Tables     string  `json:"tables"`
	Note       string  `json:"note"`
	WorkType   string  `json:"workType"`
	Created    string  `json:"created"`
}

func newDocument(snap *store.Snapshot, now time.Time) *document {
	projects := make([]projectDoc, 0, len(snap.Projects))
	for _, p := range snap.Projects {
		projects = append(projects, projectDoc{
			ID:      p.ID,
			Name:    p.Name,
			Created: formatTime(p.Created),
			Active:  &p.Active,
		})
	}
	employees := make([]employeeDoc, 0, len(snap.Employees))
	for _, e := range snap.Employees {
		employees = append(employees, employeeDoc{
			ID:        e.ID,
			Name:      e.Name,
			ProjectID: e.ProjectID,
			Created:   formatTime(e.Created),
			Active:    &e.Active,
		})
	}
	entries := make([]entryDoc, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		entries = append(entries, entryDoc{
			ID:         e.ID,
			ProjectID:  e.ProjectID,
			EmployeeID: e.EmployeeID,
			Date:       e.Date,
			Hours:      e.Hours,
			Strings:    e.Strings,
			Tables:     e.Tables,
			Note:       e.Note,
			WorkType:   string(e.WorkType),
			Created:    formatTime(e.Created),
		})
	}
	return &document{
		Version:    Version,
		ExportedAt: formatTime(now),
		Projects:   &projects,
		Employees:  &employees,
		Entries:    &entries,
	}
}

// snapshot validates the whole document and converts it. Nothing is
// returned unless every record is usable.
func (d *document) snapshot() (*store.Snapshot, error) {
	switch {
	case d.Projects == nil:
		return nil, formatErr("missing projects collection")
	case d.Employees == nil:
		return nil, formatErr("missing employees collection")
	case d.Entries == nil:
		return nil, formatErr("missing entries collection")
	case d.Version > Version:
		return nil, formatErr(fmt.Sprintf("unsupported version %d", d.Version))
	}

	snap := &store.Snapshot{}
	seen := make(map[string]struct{})
	unique := func(kind, id string) error {
		if id == "" {
			return formatErr(kind + " without id")
		}
		key := kind + "/" + id
		if _, ok := seen[key]; ok {
			return formatErr(fmt.Sprintf("duplicate %s id %q", kind, id))
		}
		seen[key] = struct{}{}
		return nil
	}

	for _, p := range *d.Projects {
		if err := unique("project", p.ID); err != nil {
			return nil, err
		}
		if p.Name == "" {
			return nil, formatErr(fmt.Sprintf("project %q has no name", p.ID))
		}
		created, err := parseTime(p.Created)
		if err != nil {
			return nil, formatErr(fmt.Sprintf("project %q: %v", p.ID, err))
		}
		snap.Projects = append(snap.Projects, store.Project{
			ID: p.ID, Name: p.Name, Created: created, Active: active(p.Active),
		})
	}

	for _, e := range *d.Employees {
		if err := unique("employee", e.ID); err != nil {
			return nil, err
		}
		if e.Name == "" {
			return nil, formatErr(fmt.Sprintf("employee %q has no name", e.ID))
		}
		created, err := parseTime(e.Created)
		if err != nil {
			return nil, formatErr(fmt.Sprintf("employee %q: %v", e.ID, err))
		}
		snap.Employees = append(snap.Employees, store.Employee{
			ID: e.ID, Name: e.Name, ProjectID: e.ProjectID, Created: created, Active: active(e.Active),
		})
	}

	for _, e := range *d.Entries {
		if err := unique("entry", e.ID); err != nil {
			return nil, err
		}
		if !store.ValidDate(e.Date) {
			return nil, formatErr(fmt.Sprintf("entry %q: invalid date %q", e.ID, e.Date))
		}
		if math.IsNaN(e.Hours) || math.IsInf(e.Hours, 0) || e.Hours <= 0 {
			return nil, formatErr(fmt.Sprintf("entry %q: hours must be greater than zero", e.ID))
		}
		if e.Strings < 0 {
			return nil, formatErr(fmt.Sprintf("entry %q: negative strings", e.ID))
		}
		wt := store.WorkType(e.WorkType)
		if wt == "" {
			wt = store.WorkHourly
		}
		if !wt.Valid() {
			return nil, formatErr(fmt.Sprintf("entry %q: unknown work type %q", e.ID, e.WorkType))
		}
		created, err := parseTime(e.Created)
		if err != nil {
			return nil, formatErr(fmt.Sprintf("entry %q: %v", e.ID, err))
		}
		units := e.Strings
		if wt == store.WorkHourly {
			units = 0
		}
		snap.Entries = append(snap.Entries, store.WorkEntry{
			ID:         e.ID,
			ProjectID:  e.ProjectID,
			EmployeeID: e.EmployeeID,
			Date:       e.Date,
			Hours:      e.Hours,
			Strings:    units,
			Tables:     e.Tables,
			Note:       e.Note,
			WorkType:   wt,
			Created:    created,
		})
	}
	return snap, nil
}

// Records written before the active flag existed are active.
func active(v *bool) bool {
	return v == nil || *v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created time %q", v)
	}
	return t.UTC(), nil
}
