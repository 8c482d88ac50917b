package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/solartrack/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Project    string      `json:"project"`
	Count      int         `json:"count"`
	Hours      float64     `json:"total_hours"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	EmployeeID string  `json:"employee_id"`
	Employee   string  `json:"employee"`
	Hours      float64 `json:"hours"`
	Strings    int     `json:"strings"`
	WorkType   string  `json:"work_type"`
	Tables     string  `json:"tables,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// WriteJSON writes entries joined with employee names as indented JSON.
func WriteJSON(w io.Writer, entries []store.WorkEntry, projectName string, names map[string]string, l Labels, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Project:    projectName,
		Count:      len(entries),
		Entries:    []jsonEntry{},
	}

	for _, e := range entries {
		export.Hours += e.Hours
		export.Entries = append(export.Entries, jsonEntry{
			ID:         e.ID,
			Date:       e.Date,
			EmployeeID: e.EmployeeID,
			Employee:   l.Name(names, e.EmployeeID),
			Hours:      e.Hours,
			Strings:    e.Strings,
			WorkType:   string(e.WorkType),
			Tables:     e.Tables,
			Note:       e.Note,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// JSONFilename mirrors Filename for JSON exports.
func JSONFilename(projectName, month, employeeName string) string {
	return baseName(projectName, month, employeeName) + ".json"
}
