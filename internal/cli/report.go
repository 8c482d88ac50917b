package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sadopc/solartrack/internal/export"
	"github.com/sadopc/solartrack/internal/report"
	"github.com/spf13/cobra"
)

func monthFlag(cmd *cobra.Command, month *string, def string) {
	cmd.Flags().StringVarP(month, "month", "m", def, "month YYYY-MM, empty for all time")
}

func newStatsCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			st, err := a.engine.Stats(ctx, p.ID, month)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			period := month
			if period == "" {
				period = a.labels.AllTime
			}
			boldColor.Fprintf(out, "%s - %s\n", p.Name, period)
			tw := newTable(out)
			fmt.Fprintf(tw, "%s\t%s\n", a.labels.TotalHours, hoursText(st.TotalHours))
			fmt.Fprintf(tw, "%s\t%s\n", a.labels.HourlyHours, hoursText(st.HourlyHours))
			fmt.Fprintf(tw, "%s\t%s\n", a.labels.TaskHours, hoursText(st.TaskHours))
			fmt.Fprintf(tw, "%s\t%d\n", a.labels.TotalUnits, st.TotalUnits)
			fmt.Fprintf(tw, "%s\t%d\n", a.labels.WorkDays, st.WorkDays)
			fmt.Fprintf(tw, "%s\t%s\n", a.labels.AvgPerDay, hoursText(st.AvgHoursPerDay))
			fmt.Fprintf(tw, "%s\t%d\n", a.labels.EntryCount, st.EntryCount)
			return tw.Flush()
		},
	}
	monthFlag(cmd, &month, report.CurrentMonth(a.now()))
	return cmd
}

func newEmployeesCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Rank employees by hours for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			stats, err := a.engine.EmployeeStats(ctx, p.ID, month)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(stats) == 0 {
				dimColor.Fprintln(out, "No hours recorded.")
				return nil
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "NAME\tHOURS\tSTRINGS\tDAYS\tAVG/DAY\t")
			for _, s := range stats {
				badge := ""
				if s.TopHours {
					badge += " [top hours]"
				}
				if s.TopUnits {
					badge += " [top strings]"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
					s.Name, hoursText(s.Hours), s.Units, s.Days, hoursText(s.AvgHoursPerDay), badge)
			}
			return tw.Flush()
		},
	}
	monthFlag(cmd, &month, report.CurrentMonth(a.now()))
	return cmd
}

func newAttendanceCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Print the attendance grid of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			att, err := a.engine.Attendance(ctx, p.ID, month)
			if err != nil {
				return err
			}
			printAttendance(cmd, att, a.labels)
			return nil
		},
	}
	monthFlag(cmd, &month, report.CurrentMonth(a.now()))
	return cmd
}

func printAttendance(cmd *cobra.Command, att *report.Attendance, l export.Labels) {
	out := cmd.OutOrStdout()
	if len(att.Rows) == 0 {
		dimColor.Fprintln(out, "No hours recorded.")
		return
	}
	tw := newTable(out)
	fmt.Fprint(tw, l.Employee)
	for d := 1; d <= att.Days; d++ {
		fmt.Fprintf(tw, "\t%d", d)
	}
	fmt.Fprintf(tw, "\t%s\n", l.Total)

	line := func(name string, hours []float64, total float64) {
		fmt.Fprint(tw, name)
		for _, h := range hours {
			if h == 0 {
				fmt.Fprint(tw, "\t.")
			} else {
				fmt.Fprintf(tw, "\t%s", report.FormatHours(h))
			}
		}
		fmt.Fprintf(tw, "\t%s\n", report.FormatHours(total))
	}
	for _, r := range att.Rows {
		line(r.DisplayName(l.Unknown), r.Hours, r.Total)
	}
	line(l.Total, att.DayTotals, att.Total)
	tw.Flush()
}

func newWeekCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Compare this week with last week",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			wc, err := report.New(a.store, report.WithClock(a.now)).WeekComparison(ctx, p.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tw := newTable(out)
			fmt.Fprintln(tw, "WEEK\tHOURS\tSTRINGS\tDAYS\tENTRIES")
			for _, w := range []report.WeekTotals{wc.Current, wc.Previous} {
				fmt.Fprintf(tw, "%s - %s\t%s\t%d\t%d\t%d\n",
					report.HumanDate(w.From), report.HumanDate(w.To), hoursText(w.Hours), w.Units, w.Days, w.Entries)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			c := okColor
			if wc.HoursDelta < 0 {
				c = errColor
			}
			c.Fprintf(out, "Change: %sh, %+d strings\n", signed(wc.HoursDelta), wc.UnitsDelta)
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		q        report.Query
		employee string
		csvOut   string
		maxHours float64
	)
	cmd := &cobra.Command{
		Use:   "search [TEXT]",
		Short: "Find entries by text and filters",
		Long: `Text is matched case-insensitively against the employee name, tables,
note, date (YYYY-MM-DD or DD.MM.YYYY), hours and strings.`,
		Example: `  solartrack search 3e42
  solartrack search --type task --min 8 --from 2024-06-01`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				q.Text = args[0]
			}
			if cmd.Flags().Changed("max") {
				q.MaxHours = &maxHours
			}
			if employee != "" {
				emp, err := a.employee(ctx, p.ID, employee)
				if err != nil {
					return err
				}
				q.EmployeeID = emp.ID
			}
			session := report.NewSession(a.engine, p.ID, "")
			if _, err := session.Search(ctx, q); err != nil {
				return err
			}
			names, err := a.engine.Names(ctx, p.ID)
			if err != nil {
				return err
			}
			results := session.LastResults()
			printEntries(cmd, results, names, a.labels.Unknown)
			fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", len(results))

			if csvOut == "" {
				return nil
			}
			return writeFile(csvOut, func(f *os.File) error {
				return export.WriteCSV(f, results, p.Name, names, a.labels)
			})
		},
	}
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "employee name or ID")
	cmd.Flags().StringVar(&q.From, "from", "", "first date YYYY-MM-DD")
	cmd.Flags().StringVar(&q.To, "to", "", "last date YYYY-MM-DD")
	cmd.Flags().StringVarP(&q.WorkType, "type", "t", "all", "hourly, task or all")
	cmd.Flags().Float64Var(&q.MinHours, "min", 0, "minimum hours")
	cmd.Flags().Float64Var(&maxHours, "max", 0, "maximum hours (default: no limit)")
	cmd.Flags().StringVar(&csvOut, "csv", "", "also write the matches to this CSV file")
	return cmd
}

// writeFile creates path, with its directory, and hands it to fn.
func writeFile(path string, fn func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

