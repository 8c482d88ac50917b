package export

import (
	"strings"

	"github.com/sadopc/solartrack/internal/store"
)

// Labels holds the localized texts written into exported files.
type Labels struct {
	Locale    string
	CSVHeader []string
	Hourly    string
	Task      string
	Unknown   string

	Employee string
	Total    string

	ReportTitle  string
	AllTime      string
	TotalHours   string
	TotalUnits   string
	HourlyHours  string
	TaskHours    string
	WorkDays     string
	AvgPerDay    string
	EntryCount   string
	EmployeeRank string
	Days         string
	Hours        string
	Units        string
	Attendance   string
}

var czech = Labels{
	Locale:       "cs",
	CSVHeader:    []string{"Projekt", "Datum", "Jméno", "Hodiny", "Stringy", "Typ práce", "Stoly", "Poznámka"},
	Hourly:       "Hodinovka",
	Task:         "Úkol/Stringy",
	Unknown:      "Neznámý",
	Employee:     "Zaměstnanec",
	Total:        "Celkem",
	ReportTitle:  "Měsíční výkaz",
	AllTime:      "Celé období",
	TotalHours:   "Hodiny celkem",
	TotalUnits:   "Stringy celkem",
	HourlyHours:  "Hodinovka",
	TaskHours:    "Úkol",
	WorkDays:     "Pracovní dny",
	AvgPerDay:    "Průměr h/den",
	EntryCount:   "Záznamů",
	EmployeeRank: "Zaměstnanci",
	Days:         "Dny",
	Hours:        "Hodiny",
	Units:        "Stringy",
	Attendance:   "Docházka",
}

var english = Labels{
	Locale:       "en",
	CSVHeader:    []string{"Project", "Date", "Name", "Hours", "Strings", "Work type", "Tables", "Note"},
	Hourly:       "Hourly",
	Task:         "Task/Strings",
	Unknown:      "Unknown",
	Employee:     "Employee",
	Total:        "Total",
	ReportTitle:  "Monthly report",
	AllTime:      "All time",
	TotalHours:   "Total hours",
	TotalUnits:   "Total strings",
	HourlyHours:  "Hourly",
	TaskHours:    "Task",
	WorkDays:     "Work days",
	AvgPerDay:    "Avg h/day",
	EntryCount:   "Entries",
	EmployeeRank: "Employees",
	Days:         "Days",
	Hours:        "Hours",
	Units:        "Strings",
	Attendance:   "Attendance",
}

// LabelsFor returns the labels of locale. Czech is the default.
func LabelsFor(locale string) Labels {
	if strings.EqualFold(strings.TrimSpace(locale), "en") {
		return english
	}
	return czech
}

// WorkType returns the label of wt.
func (l Labels) WorkType(wt store.WorkType) string {
	if wt == store.WorkHourly {
		return l.Hourly
	}
	return l.Task
}

// Name resolves an employee ID, falling back to the unknown placeholder.
func (l Labels) Name(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return l.Unknown
}
