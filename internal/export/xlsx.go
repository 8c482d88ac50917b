package export

import (
	"fmt"
	"io"

	"github.com/sadopc/solartrack/internal/report"
	"github.com/xuri/excelize/v2"
)

// WriteAttendanceXLSX writes the attendance grid as a single-sheet workbook:
// one row per employee, one column per day, totals in the last row and
// column. Days without hours are left blank.
func WriteAttendanceXLSX(w io.Writer, projectName string, a *report.Attendance, l Labels) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := a.Month
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := []any{l.Employee}
	for d := 1; d <= a.Days; d++ {
		header = append(header, d)
	}
	header = append(header, l.Total)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, r := range a.Rows {
		values := []any{r.DisplayName(l.Unknown)}
		for _, h := range r.Hours {
			values = append(values, cell(h))
		}
		values = append(values, r.Total)
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []any{l.Total}
	for _, h := range a.DayTotals {
		totals = append(totals, cell(h))
	}
	totals = append(totals, a.Total)
	if err := setRow(f, sheet, row, totals); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetRowStyle(sheet, row, row, bold); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(a.Days + 1)
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 5); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: projectName + " " + a.Month}); err != nil {
		return fmt.Errorf("set properties: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func cell(h float64) any {
	if h == 0 {
		return nil
	}
	return h
}

// XLSXFilename names an attendance workbook.
func XLSXFilename(projectName, month string) string {
	return baseName(projectName, month, "") + ".xlsx"
}
