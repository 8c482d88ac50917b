package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
)

// batchModel records one day for the whole crew of the current project.
type batchModel struct {
	env    *env
	width  int
	height int

	employees []store.Employee
	rows      []*batchRow // one per employee, survives value copies
	fields    *batchFields

	last []store.WorkEntry // saved by the last batch

	formActive bool
	form       *huh.Form
}

type batchFields struct {
	date     string
	workType string
	tables   string
}

type batchRow struct {
	employee store.Employee
	value    string // HOURS or HOURS:STRINGS
}

func newBatchModel(e *env) batchModel {
	return batchModel{env: e, fields: &batchFields{}}
}

func (b *batchModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

type batchDataMsg struct {
	projectID string
	employees []store.Employee
	err       error
}

func (b batchModel) refresh() tea.Cmd {
	e := b.env
	pid := e.session.ProjectID
	return func() tea.Msg {
		if pid == "" {
			return batchDataMsg{}
		}
		emps, err := e.store.ListEmployeesByProject(e.ctx, pid)
		return batchDataMsg{projectID: pid, employees: emps, err: err}
	}
}

func (b batchModel) update(msg tea.Msg) (batchModel, tea.Cmd) {
	if msg, ok := msg.(batchDataMsg); ok {
		if msg.projectID != b.env.session.ProjectID {
			return b, nil
		}
		if msg.err != nil {
			return b, errStatus("Load employees", msg.err)
		}
		b.employees = msg.employees
		return b, nil
	}

	if b.formActive && b.form != nil {
		return b.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.New), key.Matches(msg, keys.Enter):
			return b.showForm()
		}
	}
	return b, nil
}

func (b batchModel) showForm() (batchModel, tea.Cmd) {
	if len(b.employees) == 0 {
		return b, status("No employees yet. Add them in Projects.")
	}

	*b.fields = batchFields{
		date:     b.env.now().Format(store.DateLayout),
		workType: string(store.WorkHourly),
	}
	b.rows = b.rows[:0:0]
	for _, emp := range b.employees {
		b.rows = append(b.rows, &batchRow{employee: emp})
	}

	l := b.env.labels
	crew := make([]huh.Field, 0, len(b.rows))
	for _, r := range b.rows {
		crew = append(crew, huh.NewInput().Title(r.employee.Name).Placeholder("8 or 9:16").Value(&r.value))
	}

	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&b.fields.date).Validate(validateDate),
			huh.NewSelect[string]().Title("Work type").
				Options(
					huh.NewOption(l.Hourly, string(store.WorkHourly)),
					huh.NewOption(l.Task, string(store.WorkTask)),
				).Value(&b.fields.workType),
			huh.NewInput().Title("Tables").Value(&b.fields.tables),
		).Title("Day"),
		huh.NewGroup(crew...).Title("Hours").Description("HOURS or HOURS:STRINGS, empty to skip"),
	).WithShowHelp(true).WithShowErrors(true)

	b.formActive = true
	return b, b.form.Init()
}

func (b batchModel) updateForm(msg tea.Msg) (batchModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			b.formActive = false
			b.form = nil
			return b, nil
		}
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}

	if b.form.State == huh.StateCompleted {
		b.formActive = false
		b.form = nil
		return b.save()
	}
	return b, cmd
}

// inputs turns the form into entry inputs, one per crew member.
func (b batchModel) inputs() []store.EntryInput {
	var out []store.EntryInput
	for _, r := range b.rows {
		h, u, _ := strings.Cut(r.value, ":")
		out = append(out, store.EntryInput{
			ProjectID:  b.env.session.ProjectID,
			EmployeeID: r.employee.ID,
			Date:       strings.TrimSpace(b.fields.date),
			Hours:      store.ParseHours(h),
			Strings:    store.ParseUnits(u),
			Tables:     b.fields.tables,
			WorkType:   store.WorkType(b.fields.workType),
		})
	}
	return out
}

func (b batchModel) save() (batchModel, tea.Cmd) {
	created, err := b.env.store.CreateEntries(b.env.ctx, b.inputs())
	if err != nil {
		return b, errStatus("Save day", err)
	}
	b.last = created
	var total float64
	for _, e := range created {
		total += e.Hours
	}
	return b, status(fmt.Sprintf("%d entries saved, %s in total", len(created), formatHours(total)))
}

func (b batchModel) view() string {
	w := b.width - 4

	if b.formActive && b.form != nil {
		title := titleStyle.Render("Crew Day")
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", b.form.View()))
	}

	rows := []string{titleStyle.Render("Crew Day"), ""}
	switch {
	case b.env.session.ProjectID == "":
		rows = append(rows, mutedStyle.Render("No project yet. Press 2 to create one in Projects."))
	case len(b.employees) == 0:
		rows = append(rows, mutedStyle.Render("No employees in this project."))
	default:
		rows = append(rows, fmt.Sprintf("%s  %d employees", highlightStyle.Render(b.env.projectName()), len(b.employees)))
		rows = append(rows, mutedStyle.Render("Enter hours for everyone who worked on one day."))
	}

	if len(b.last) > 0 {
		rows = append(rows, "", titleStyle.Render("Last saved"))
		names := make(map[string]string, len(b.employees))
		for _, e := range b.employees {
			names[e.ID] = e.Name
		}
		for _, e := range b.last {
			line := fmt.Sprintf("  %s  %-20s %7s", report.HumanDate(e.Date), truncate(b.env.labels.Name(names, e.EmployeeID), 20), formatHours(e.Hours))
			if e.WorkType == store.WorkTask {
				line += fmt.Sprintf("  %d strings", e.Strings)
			}
			rows = append(rows, successStyle.Render(line))
		}
	}

	rows = append(rows, "", mutedStyle.Render("n/enter: new day  esc: cancel"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
