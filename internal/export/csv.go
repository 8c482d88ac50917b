package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sadopc/solartrack/internal/store"
)

const (
	bom       = "\ufeff"
	delimiter = ";"
)

// FilePrefix starts every exported file name.
const FilePrefix = "SolarTrack_"

// WriteCSV writes entries as semicolon separated UTF-8 with a byte order
// mark. Tables and note are always quoted; the other columns never are.
func WriteCSV(w io.Writer, entries []store.WorkEntry, projectName string, names map[string]string, l Labels) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(bom)
	bw.WriteString(strings.Join(l.CSVHeader, delimiter))
	bw.WriteString("\n")

	for _, e := range entries {
		row := []string{
			projectName,
			e.Date,
			l.Name(names, e.EmployeeID),
			strconv.FormatFloat(e.Hours, 'f', -1, 64),
			strconv.Itoa(e.Strings),
			l.WorkType(e.WorkType),
			quote(e.Tables),
			quote(e.Note),
		}
		bw.WriteString(strings.Join(row, delimiter))
		bw.WriteString("\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var (
	unsafeChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Filename builds the download name of a CSV export, e.g.
// SolarTrack_Brno_2024-06_Jan-Novak.csv. An empty month means the whole
// history and an empty employee means everyone.
func Filename(projectName, month, employeeName string) string {
	return baseName(projectName, month, employeeName) + ".csv"
}

func baseName(projectName, month, employeeName string) string {
	name := strings.TrimSpace(unsafeChars.ReplaceAllString(projectName, "_"))
	if name == "" {
		name = "export"
	}
	suffix := "_komplet"
	if month != "" {
		suffix = "_" + month
	}
	if emp := strings.TrimSpace(employeeName); emp != "" {
		suffix += "_" + whitespace.ReplaceAllString(unsafeChars.ReplaceAllString(emp, "_"), "-")
	}
	return FilePrefix + name + suffix
}
