package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sadopc/solartrack/internal/export"
	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
	"github.com/spf13/cobra"
)

type exportFlags struct {
	month    string
	employee string
	out      string
}

func (f *exportFlags) register(cmd *cobra.Command, withEmployee bool) {
	cmd.Flags().StringVarP(&f.month, "month", "m", "", "month YYYY-MM (default all time)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file (default: generated name in the export directory)")
	if withEmployee {
		cmd.Flags().StringVarP(&f.employee, "employee", "e", "", "only this employee")
	}
}

func (a *app) outputPath(flag, name string) string {
	if flag != "" {
		return flag
	}
	return filepath.Join(a.cfg.ExportDir, name)
}

// exportSet is what the entry based exports share.
type exportSet struct {
	project  *store.Project
	entries  []store.WorkEntry
	names    map[string]string
	employee string
}

func (a *app) collect(ctx context.Context, f exportFlags) (*exportSet, error) {
	p, err := a.project(ctx)
	if err != nil {
		return nil, err
	}
	from, to, err := report.MonthRange(f.month)
	if err != nil {
		return nil, err
	}
	filter := store.EntryFilter{ProjectID: p.ID, From: from, To: to}
	set := &exportSet{project: p}
	if f.employee != "" {
		emp, err := a.employee(ctx, p.ID, f.employee)
		if err != nil {
			return nil, err
		}
		filter.EmployeeID = emp.ID
		set.employee = emp.Name
	}
	if set.entries, err = a.store.ListEntries(ctx, filter); err != nil {
		return nil, err
	}
	if set.names, err = a.engine.Names(ctx, p.ID); err != nil {
		return nil, err
	}
	return set, nil
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries, attendance and reports",
	}

	var csvFlags exportFlags
	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Export entries as semicolon separated CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.collect(cmd.Context(), csvFlags)
			if err != nil {
				return err
			}
			path := a.outputPath(csvFlags.out, export.Filename(set.project.Name, csvFlags.month, set.employee))
			err = writeFile(path, func(f *os.File) error {
				return export.WriteCSV(f, set.entries, set.project.Name, set.names, a.labels)
			})
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%d entries exported to %s", len(set.entries), path)
			return nil
		},
	}
	csvFlags.register(csvCmd, true)

	var jsonFlags exportFlags
	jsonCmd := &cobra.Command{
		Use:   "json",
		Short: "Export entries as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.collect(cmd.Context(), jsonFlags)
			if err != nil {
				return err
			}
			path := a.outputPath(jsonFlags.out, export.JSONFilename(set.project.Name, jsonFlags.month, set.employee))
			err = writeFile(path, func(f *os.File) error {
				return export.WriteJSON(f, set.entries, set.project.Name, set.names, a.labels, a.now())
			})
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%d entries exported to %s", len(set.entries), path)
			return nil
		},
	}
	jsonFlags.register(jsonCmd, true)

	var xlsxFlags exportFlags
	xlsxCmd := &cobra.Command{
		Use:   "xlsx",
		Short: "Export the attendance grid of a month as an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			month := xlsxFlags.month
			if month == "" {
				month = report.CurrentMonth(a.now())
			}
			att, err := a.engine.Attendance(ctx, p.ID, month)
			if err != nil {
				return err
			}
			path := a.outputPath(xlsxFlags.out, export.XLSXFilename(p.Name, month))
			err = writeFile(path, func(f *os.File) error {
				return export.WriteAttendanceXLSX(f, p.Name, att, a.labels)
			})
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Attendance exported to %s", path)
			return nil
		},
	}
	xlsxFlags.register(xlsxCmd, false)

	var pdfFlags exportFlags
	pdfCmd := &cobra.Command{
		Use:   "pdf",
		Short: "Export a monthly report as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			r, err := a.monthReport(ctx, p, pdfFlags.month)
			if err != nil {
				return err
			}
			path := a.outputPath(pdfFlags.out, export.PDFFilename(p.Name, pdfFlags.month))
			err = writeFile(path, func(f *os.File) error {
				return export.WriteReportPDF(f, r, a.labels)
			})
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Report exported to %s", path)
			return nil
		},
	}
	pdfFlags.register(pdfCmd, false)

	cmd.AddCommand(csvCmd, jsonCmd, xlsxCmd, pdfCmd)
	return cmd
}

// monthReport gathers the figures of the PDF report. Attendance is only
// available for a single month.
func (a *app) monthReport(ctx context.Context, p *store.Project, month string) (export.MonthReport, error) {
	r := export.MonthReport{ProjectName: p.Name, Month: month}
	var err error
	if r.Stats, err = a.engine.Stats(ctx, p.ID, month); err != nil {
		return r, err
	}
	if r.Employees, err = a.engine.EmployeeStats(ctx, p.ID, month); err != nil {
		return r, err
	}
	if month != "" {
		if r.Attendance, err = a.engine.Attendance(ctx, p.ID, month); err != nil {
			return r, err
		}
	}
	return r, nil
}
