package cli

import (
	"fmt"
	"strings"

	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
	"github.com/spf13/cobra"
)

type entryFlags struct {
	employee string
	date     string
	hours    string
	units    string
	workType string
	tables   string
	note     string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.employee, "employee", "e", "", "employee name or ID")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.hours, "hours", "H", "", "hours worked, e.g. 7.5 or 7,5")
	cmd.Flags().StringVarP(&f.units, "strings", "s", "", "finished strings (task work only)")
	cmd.Flags().StringVarP(&f.workType, "type", "t", "", "work type: hourly or task")
	cmd.Flags().StringVar(&f.tables, "tables", "", "tables worked on, e.g. \"3E42, 3E43\"")
	cmd.Flags().StringVar(&f.note, "note", "", "free text note")
}

func newEntryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Record and manage work entries",
	}
	cmd.AddCommand(
		newEntryAddCmd(a),
		newEntryBatchCmd(a),
		newEntryListCmd(a),
		newEntryEditCmd(a),
		newEntryRmCmd(a),
	)
	return cmd
}

func newEntryAddCmd(a *app) *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one employee's work on a day",
		Example: `  solartrack entry add -e "Jan Novák" -H 8
  solartrack entry add -e Jan -d 2024-06-01 -H 6 -t task -s 14 --tables "3E42, 3E43"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			if f.employee == "" {
				return &store.ValidationError{Field: "employee", Msg: "--employee is required"}
			}
			emp, err := a.employee(ctx, p.ID, f.employee)
			if err != nil {
				return err
			}
			date := f.date
			if date == "" {
				date = a.now().Format(store.DateLayout)
			}
			e, err := a.store.CreateEntry(ctx, store.EntryInput{
				ProjectID:  p.ID,
				EmployeeID: emp.ID,
				Date:       date,
				Hours:      store.ParseHours(f.hours),
				Strings:    store.ParseUnits(f.units),
				Tables:     f.tables,
				Note:       f.note,
				WorkType:   store.WorkType(f.workType),
			})
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s: %s on %s (%s)", emp.Name, hoursText(e.Hours), report.HumanDate(e.Date), e.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEntryBatchCmd(a *app) *cobra.Command {
	var (
		date     string
		hours    string
		workType string
		tables   string
		sets     []string
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Record a whole crew's day at once",
		Long: `Records one entry per active employee of the project. --hours applies to
everyone; --set NAME=HOURS[:STRINGS] overrides single employees. Employees
ending up with no hours are skipped.`,
		Example: `  solartrack entry batch -H 8
  solartrack entry batch -t task -H 9 --set "Jan Novák=9:16" --set Eva=0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			emps, err := a.store.ListEmployeesByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			if date == "" {
				date = a.now().Format(store.DateLayout)
			}

			rows := make(map[string]*store.EntryInput, len(emps))
			var order []string
			for _, e := range emps {
				rows[e.ID] = &store.EntryInput{
					ProjectID:  p.ID,
					EmployeeID: e.ID,
					Date:       date,
					Hours:      store.ParseHours(hours),
					Tables:     tables,
					WorkType:   store.WorkType(workType),
				}
				order = append(order, e.ID)
			}
			for _, s := range sets {
				name, value, ok := strings.Cut(s, "=")
				if !ok {
					return &store.ValidationError{Field: "set", Msg: fmt.Sprintf("expected NAME=HOURS, got %q", s)}
				}
				emp, err := a.employee(ctx, p.ID, name)
				if err != nil {
					return err
				}
				row, ok := rows[emp.ID]
				if !ok {
					return fmt.Errorf("employee %q: %w", name, store.ErrNotFound)
				}
				h, u, _ := strings.Cut(value, ":")
				row.Hours = store.ParseHours(h)
				row.Strings = store.ParseUnits(u)
			}

			var inputs []store.EntryInput
			for _, id := range order {
				inputs = append(inputs, *rows[id])
			}
			created, err := a.store.CreateEntries(ctx, inputs)
			if err != nil {
				return err
			}
			var total float64
			for _, e := range created {
				total += e.Hours
			}
			success(cmd.OutOrStdout(), "%d entries saved for %s, %s in total", len(created), report.HumanDate(date), hoursText(total))
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&hours, "hours", "H", "", "hours for every employee")
	cmd.Flags().StringVarP(&workType, "type", "t", "", "work type: hourly or task")
	cmd.Flags().StringVar(&tables, "tables", "", "tables worked on")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "per employee NAME=HOURS[:STRINGS]")
	return cmd
}

func newEntryListCmd(a *app) *cobra.Command {
	var (
		month    string
		employee string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries grouped by day, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.project(ctx)
			if err != nil {
				return err
			}
			from, to, err := report.MonthRange(month)
			if err != nil {
				return err
			}
			filter := store.EntryFilter{ProjectID: p.ID, From: from, To: to, Limit: limit}
			if employee != "" {
				emp, err := a.employee(ctx, p.ID, employee)
				if err != nil {
					return err
				}
				filter.EmployeeID = emp.ID
			}
			entries, err := a.store.ListEntries(ctx, filter)
			if err != nil {
				return err
			}
			names, err := a.engine.Names(ctx, p.ID)
			if err != nil {
				return err
			}
			printEntries(cmd, entries, names, a.labels.Unknown)
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month YYYY-MM (default all time)")
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "only this employee")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most N entries")
	return cmd
}

func printEntries(cmd *cobra.Command, entries []store.WorkEntry, names map[string]string, unknown string) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		dimColor.Fprintln(out, "No entries.")
		return
	}
	for _, g := range report.GroupByDay(entries) {
		boldColor.Fprintf(out, "%s  %s", report.HumanDate(g.Date), hoursText(g.Hours))
		if g.Units > 0 {
			fmt.Fprintf(out, "  %d strings", g.Units)
		}
		fmt.Fprintln(out)
		tw := newTable(out)
		for _, e := range g.Entries {
			name, ok := names[e.EmployeeID]
			if !ok {
				name = unknown
			}
			detail := string(e.WorkType)
			if e.WorkType == store.WorkTask {
				detail = fmt.Sprintf("task %ds", e.Strings)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n", e.ID, name, hoursText(e.Hours), detail, e.Tables, e.Note)
		}
		tw.Flush()
	}
}

func newEntryEditCmd(a *app) *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := a.store.GetEntry(ctx, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("employee") {
				emp, err := a.employee(ctx, e.ProjectID, f.employee)
				if err != nil {
					return err
				}
				e.EmployeeID = emp.ID
			}
			if flags.Changed("date") {
				e.Date = f.date
			}
			if flags.Changed("hours") {
				e.Hours = store.ParseHours(f.hours)
			}
			if flags.Changed("strings") {
				e.Strings = store.ParseUnits(f.units)
			}
			if flags.Changed("type") {
				e.WorkType = store.WorkType(f.workType)
			}
			if flags.Changed("tables") {
				e.Tables = f.tables
			}
			if flags.Changed("note") {
				e.Note = f.note
			}
			updated, err := a.store.UpdateEntry(ctx, *e)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Entry %s updated: %s on %s", updated.ID, hoursText(updated.Hours), report.HumanDate(updated.Date))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEntryRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID...",
		Short: "Delete entries permanently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := a.store.DeleteEntry(cmd.Context(), id); err != nil {
					return err
				}
			}
			success(cmd.OutOrStdout(), "%d entries deleted", len(args))
			return nil
		},
	}
}
