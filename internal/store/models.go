package store

import "time"

// WorkType distinguishes time-based work from piece work.
type WorkType string

const (
	WorkHourly WorkType = "hourly"
	WorkTask   WorkType = "task"
)

func (w WorkType) Valid() bool {
	return w == WorkHourly || w == WorkTask
}

type Project struct {
	ID      string
	Name    string
	Created time.Time
	Active  bool
}

type Employee struct {
	ID        string
	Name      string
	ProjectID string
	Created   time.Time
	Active    bool
}

// WorkEntry is one employee's work on one project on one date.
// ProjectID and EmployeeID may point at soft-deleted or missing records.
type WorkEntry struct {
	ID         string
	ProjectID  string
	EmployeeID string
	Date       string // YYYY-MM-DD
	Hours      float64
	Strings    int // finished task units, only meaningful for WorkTask
	Tables     string
	Note       string
	WorkType   WorkType
	Created    time.Time
}

// EntryInput carries the user-editable fields of a WorkEntry.
type EntryInput struct {
	ProjectID  string
	EmployeeID string
	Date       string
	Hours      float64
	Strings    int
	Tables     string
	Note       string
	WorkType   WorkType
}

type Setting struct {
	Key   string
	Value string
}

// EntryFilter is used to filter entries in queries. Empty fields are ignored;
// From and To are inclusive ISO dates.
type EntryFilter struct {
	ProjectID  string
	EmployeeID string
	From       string
	To         string
	Limit      int
}

// Snapshot is the full content of the store, inactive records included.
type Snapshot struct {
	Projects  []Project
	Employees []Employee
	Entries   []WorkEntry
}

type projectRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	Active    bool   `db:"active"`
}

func (r projectRow) model() Project {
	return Project{ID: r.ID, Name: r.Name, Created: parseTimestamp(r.CreatedAt), Active: r.Active}
}

type employeeRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	ProjectID string `db:"project_id"`
	CreatedAt string `db:"created_at"`
	Active    bool   `db:"active"`
}

func (r employeeRow) model() Employee {
	return Employee{
		ID:        r.ID,
		Name:      r.Name,
		ProjectID: r.ProjectID,
		Created:   parseTimestamp(r.CreatedAt),
		Active:    r.Active,
	}
}

type entryRow struct {
	ID         string  `db:"id"`
	ProjectID  string  `db:"project_id"`
	EmployeeID string  `db:"employee_id"`
	Date       string  `db:"date"`
	Hours      float64 `db:"hours"`
	Strings    int     `db:"strings"`
	Tables     string  `db:"tables"`
	Note       string  `db:"note"`
	WorkType   string  `db:"work_type"`
	CreatedAt  string  `db:"created_at"`
}

func (r entryRow) model() WorkEntry {
	return WorkEntry{
		ID:         r.ID,
		ProjectID:  r.ProjectID,
		EmployeeID: r.EmployeeID,
		Date:       r.Date,
		Hours:      r.Hours,
		Strings:    r.Strings,
		Tables:     r.Tables,
		Note:       r.Note,
		WorkType:   WorkType(r.WorkType),
		Created:    parseTimestamp(r.CreatedAt),
	}
}

func newEntryRow(e WorkEntry) entryRow {
	return entryRow{
		ID:         e.ID,
		ProjectID:  e.ProjectID,
		EmployeeID: e.EmployeeID,
		Date:       e.Date,
		Hours:      e.Hours,
		Strings:    e.Strings,
		Tables:     e.Tables,
		Note:       e.Note,
		WorkType:   string(e.WorkType),
		CreatedAt:  formatTimestamp(e.Created),
	}
}
