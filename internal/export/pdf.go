package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/sadopc/solartrack/internal/report"
)

// MonthReport is everything printed on the monthly PDF.
type MonthReport struct {
	ProjectName string
	Month       string
	Stats       report.Stats
	Employees   []report.EmployeeStat
	Attendance  *report.Attendance
}

var stripe = &color.Color{Red: 240, Green: 240, Blue: 240}

// WriteReportPDF renders r as an A4 report: headline figures, the employee
// ranking and, when present, per-employee attendance totals.
func WriteReportPDF(w io.Writer, r MonthReport, l Labels) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	period := r.Month
	if period == "" {
		period = l.AllTime
	}

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(l.ReportTitle, props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(r.ProjectName+" - "+period, props.Text{
					Top:   2,
					Align: consts.Center,
					Size:  12,
				})
			})
		})
	})

	st := r.Stats
	summary := [][]string{
		{l.TotalHours, hours(st.TotalHours)},
		{l.HourlyHours, hours(st.HourlyHours)},
		{l.TaskHours, hours(st.TaskHours)},
		{l.TotalUnits, strconv.Itoa(st.TotalUnits)},
		{l.WorkDays, strconv.Itoa(st.WorkDays)},
		{l.AvgPerDay, hours(st.AvgHoursPerDay)},
		{l.EntryCount, strconv.Itoa(st.EntryCount)},
	}
	m.Row(6, func() {})
	for _, kv := range summary {
		m.Row(7, func() {
			m.Col(8, func() {
				m.Text(kv[0], props.Text{Size: 10})
			})
			m.Col(4, func() {
				m.Text(kv[1], props.Text{Size: 10, Style: consts.Bold, Align: consts.Right})
			})
		})
	}

	if len(r.Employees) > 0 {
		section(m, l.EmployeeRank)
		var rows [][]string
		for _, e := range r.Employees {
			name := e.Name
			if e.TopHours {
				name += " *"
			}
			rows = append(rows, []string{
				name,
				hours(e.Hours),
				strconv.Itoa(e.Units),
				strconv.Itoa(e.Days),
				hours(e.AvgHoursPerDay),
			})
		}
		m.TableList(
			[]string{l.Employee, l.Hours, l.Units, l.Days, l.AvgPerDay},
			rows,
			props.TableList{
				HeaderProp:           props.TableListContent{Size: 10, GridSizes: []uint{4, 2, 2, 2, 2}},
				ContentProp:          props.TableListContent{Size: 10, GridSizes: []uint{4, 2, 2, 2, 2}},
				Align:                consts.Center,
				AlternatedBackground: stripe,
				HeaderContentSpace:   1,
			},
		)
	}

	if a := r.Attendance; a != nil && len(a.Rows) > 0 {
		section(m, l.Attendance)
		var rows [][]string
		for _, row := range a.Rows {
			var days int
			for _, h := range row.Hours {
				if h > 0 {
					days++
				}
			}
			rows = append(rows, []string{row.DisplayName(l.Unknown), strconv.Itoa(days), hours(row.Total)})
		}
		m.TableList([]string{l.Employee, l.Days, l.Hours}, rows, props.TableList{
			HeaderProp:           props.TableListContent{Size: 10, GridSizes: []uint{6, 3, 3}},
			ContentProp:          props.TableListContent{Size: 10, GridSizes: []uint{6, 3, 3}},
			Align:                consts.Center,
			AlternatedBackground: stripe,
			HeaderContentSpace:   1,
		})
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("%s: %s h", l.Total, hours(st.TotalHours)), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func section(m pdf.Maroto, title string) {
	m.Row(12, func() {
		m.Col(12, func() {
			m.Text(title, props.Text{
				Top:   5,
				Style: consts.Bold,
				Size:  13,
			})
		})
	})
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64)
}

// PDFFilename names a monthly report.
func PDFFilename(projectName, month string) string {
	return baseName(projectName, month, "") + ".pdf"
}
