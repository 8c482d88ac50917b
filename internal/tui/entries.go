package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
)

type entriesModel struct {
	env    *env
	undo   undoModel
	width  int
	height int

	week      report.WeekComparison
	groups    []report.DayGroup
	entries   []store.WorkEntry // groups flattened in display order
	names     map[string]string
	employees []store.Employee
	cursor    int

	filter    int // index into employees, -1 for everyone
	searching bool
	search    textinput.Model
	query     string

	formActive bool
	form       *huh.Form
	editing    *store.WorkEntry // nil while adding
	fields     *entryFields     // survives value copies

	// loads counts issued loads; only the result of the latest one is shown.
	loads *int
}

type entryFields struct {
	employee string
	date     string
	hours    string
	units    string
	workType string
	tables   string
	note     string
}

func newEntriesModel(e *env) entriesModel {
	ti := textinput.New()
	ti.Placeholder = "name, table, note, date or hours"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return entriesModel{
		env:    e,
		undo:   newUndoModel(e.store, e.undo),
		filter: -1,
		search: ti,
		fields: &entryFields{},
		loads:  new(int),
	}
}

func (m entriesModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *entriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.search.Width = max(10, w-20)
}

type entriesDataMsg struct {
	load      int
	week      report.WeekComparison
	entries   []store.WorkEntry
	names     map[string]string
	employees []store.Employee
	err       error
}

func (m entriesModel) currentQuery() report.Query {
	from, to, _ := report.MonthRange(m.env.session.Month)
	q := report.Query{From: from, To: to, Text: m.query}
	if m.filter >= 0 && m.filter < len(m.employees) {
		q.EmployeeID = m.employees[m.filter].ID
	}
	return q
}

// loadData must be called from Update. The command only touches the store
// and engine; the session takes the results when the message comes back.
func (m entriesModel) loadData() tea.Cmd {
	e := m.env
	q := m.currentQuery()
	pid := e.session.ProjectID
	*m.loads++
	load := *m.loads
	return func() tea.Msg {
		msg := entriesDataMsg{load: load}
		if pid == "" {
			return msg
		}
		if msg.week, msg.err = e.engine.WeekComparison(e.ctx, pid); msg.err != nil {
			return msg
		}
		if msg.entries, msg.err = e.engine.Search(e.ctx, pid, q); msg.err != nil {
			return msg
		}
		if msg.names, msg.err = e.engine.Names(e.ctx, pid); msg.err != nil {
			return msg
		}
		msg.employees, msg.err = e.store.ListEmployeesByProject(e.ctx, pid)
		return msg
	}
}

func (m entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.undo.tick(time.Time(msg)) {
			return m, status("Delete is final")
		}
		return m, nil

	case entriesDataMsg:
		if msg.load != *m.loads {
			return m, nil
		}
		if msg.err != nil {
			return m, errStatus("Load entries", msg.err)
		}
		m.env.session.Remember(msg.entries)
		m.week = msg.week
		m.groups = report.GroupByDay(msg.entries)
		var flat []store.WorkEntry
		for _, g := range m.groups {
			flat = append(flat, g.Entries...)
		}
		m.entries = flat
		m.names = msg.names
		m.employees = msg.employees
		if m.filter >= len(m.employees) {
			m.filter = -1
		}
		if m.cursor >= len(m.entries) {
			m.cursor = max(0, len(m.entries)-1)
		}
		return m, nil
	}

	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m entriesModel) updateKeys(msg tea.KeyMsg) (entriesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
		delta := 1
		if key.Matches(msg, keys.Left) {
			delta = -1
		}
		s := m.env.session
		if s.Month == "" {
			s.Month = report.CurrentMonth(m.env.now())
		} else {
			s.Month = shiftMonth(s.Month, delta)
		}
		m.cursor = 0
		return m, m.loadData()
	case key.Matches(msg, keys.Mode):
		s := m.env.session
		if s.Month == "" {
			s.Month = report.CurrentMonth(m.env.now())
		} else {
			s.Month = ""
		}
		m.cursor = 0
		return m, m.loadData()
	case key.Matches(msg, keys.Filter):
		if len(m.employees) == 0 {
			return m, nil
		}
		m.filter++
		if m.filter >= len(m.employees) {
			m.filter = -1
		}
		m.cursor = 0
		return m, m.loadData()
	case key.Matches(msg, keys.Search):
		m.searching = true
		m.search.SetValue(m.query)
		return m, m.search.Focus()
	case key.Matches(msg, keys.New):
		return m.showForm(nil)
	case key.Matches(msg, keys.Enter):
		if len(m.entries) > 0 {
			e := m.entries[m.cursor]
			return m.showForm(&e)
		}
	case key.Matches(msg, keys.Delete):
		return m.deleteSelected()
	case key.Matches(msg, keys.Undo):
		return m.undoDelete()
	}
	return m, nil
}

func (m entriesModel) updateSearch(msg tea.Msg) (entriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.search.Blur()
			m.query = strings.TrimSpace(m.search.Value())
			m.cursor = 0
			return m, m.loadData()
		case "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m entriesModel) deleteSelected() (entriesModel, tea.Cmd) {
	if len(m.entries) == 0 {
		return m, nil
	}
	e := m.entries[m.cursor]
	if err := m.env.store.DeleteEntry(m.env.ctx, e.ID); err != nil {
		return m, errStatus("Delete entry", err)
	}
	m.undo.window = m.env.undo
	m.undo.hold(e, m.env.now())
	text := "Entry deleted"
	if m.undo.pending() {
		text += fmt.Sprintf(", press u within %s to undo", formatCountdown(m.undo.window))
	}
	return m, tea.Batch(m.loadData(), status(text))
}

func (m entriesModel) undoDelete() (entriesModel, tea.Cmd) {
	e, err := m.undo.undo(m.env.ctx)
	if err != nil {
		return m, errStatus("Undo", err)
	}
	if e == nil {
		return m, status("Nothing to undo")
	}
	return m, tea.Batch(m.loadData(), status("Entry restored"))
}

func validateDate(s string) error {
	if !store.ValidDate(strings.TrimSpace(s)) {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateHours(s string) error {
	if store.ParseHours(s) <= 0 {
		return errors.New("hours must be greater than zero")
	}
	return nil
}

// showForm opens the entry form, empty for a new entry or filled from e.
func (m entriesModel) showForm(e *store.WorkEntry) (entriesModel, tea.Cmd) {
	if m.env.session.ProjectID == "" {
		return m, status("No project yet. Press 2 to create one.")
	}
	if e == nil && len(m.employees) == 0 {
		return m, status("No employees yet. Add them in Projects.")
	}

	f := m.fields
	*f = entryFields{
		date:     m.env.now().Format(store.DateLayout),
		workType: string(store.WorkHourly),
	}
	m.editing = nil
	if e != nil {
		*f = entryFields{
			employee: e.EmployeeID,
			date:     e.Date,
			hours:    report.FormatHours(e.Hours),
			units:    strconv.Itoa(e.Strings),
			workType: string(e.WorkType),
			tables:   e.Tables,
			note:     e.Note,
		}
		cp := *e
		m.editing = &cp
	} else if m.filter >= 0 {
		f.employee = m.employees[m.filter].ID
	} else {
		f.employee = m.employees[0].ID
	}

	var opts []huh.Option[string]
	known := false
	for _, emp := range m.employees {
		opts = append(opts, huh.NewOption(emp.Name, emp.ID))
		known = known || emp.ID == f.employee
	}
	if !known {
		opts = append(opts, huh.NewOption(m.env.labels.Name(m.names, f.employee), f.employee))
	}

	l := m.env.labels
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Employee").Options(opts...).Value(&f.employee),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&f.date).Validate(validateDate),
			huh.NewInput().Title("Hours").Placeholder("7,5").Value(&f.hours).Validate(validateHours),
			huh.NewSelect[string]().Title("Work type").
				Options(
					huh.NewOption(l.Hourly, string(store.WorkHourly)),
					huh.NewOption(l.Task, string(store.WorkTask)),
				).Value(&f.workType),
			huh.NewInput().Title("Strings").Description("task work only").Value(&f.units),
			huh.NewInput().Title("Tables").Placeholder("3E42, 3E43").Value(&f.tables),
			huh.NewInput().Title("Note").Value(&f.note),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m entriesModel) updateForm(msg tea.Msg) (entriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			m.editing = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m.saveForm()
	}
	return m, cmd
}

// saveForm creates or updates the entry from the form fields.
func (m entriesModel) saveForm() (entriesModel, tea.Cmd) {
	f := m.fields
	in := store.EntryInput{
		ProjectID:  m.env.session.ProjectID,
		EmployeeID: f.employee,
		Date:       strings.TrimSpace(f.date),
		Hours:      store.ParseHours(f.hours),
		Strings:    store.ParseUnits(f.units),
		Tables:     f.tables,
		Note:       f.note,
		WorkType:   store.WorkType(f.workType),
	}

	if m.editing == nil {
		if _, err := m.env.store.CreateEntry(m.env.ctx, in); err != nil {
			return m, errStatus("Save entry", err)
		}
		return m, tea.Batch(m.loadData(), status("Entry saved"))
	}

	e := *m.editing
	m.editing = nil
	e.EmployeeID = in.EmployeeID
	e.Date = in.Date
	e.Hours = in.Hours
	e.Strings = in.Strings
	e.Tables = in.Tables
	e.Note = in.Note
	e.WorkType = in.WorkType
	if _, err := m.env.store.UpdateEntry(m.env.ctx, e); err != nil {
		return m, errStatus("Update entry", err)
	}
	return m, tea.Batch(m.loadData(), status("Entry updated"))
}

func (m entriesModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Entry")
		if m.editing != nil {
			title = titleStyle.Render("Edit Entry")
		}
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	if m.env.session.ProjectID == "" {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Entries"),
			"",
			mutedStyle.Render("No project yet. Press 2 to create one in Projects."),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderWeekPanel(w),
		m.renderListPanel(w),
	)
}

func (m entriesModel) renderWeekPanel(w int) string {
	row := func(label string, t report.WeekTotals) string {
		return fmt.Sprintf("%-10s %s - %s  %s  %d strings  %d days",
			label, report.HumanDate(t.From), report.HumanDate(t.To),
			bigNumberStyle.Render(formatHours(t.Hours)), t.Units, t.Days)
	}
	delta := successStyle.Render(formatSigned(m.week.HoursDelta))
	if m.week.HoursDelta < 0 {
		delta = errorStyle.Render(formatSigned(m.week.HoursDelta))
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.env.projectName()),
		row("This week", m.week.Current),
		row("Last week", m.week.Previous),
		mutedStyle.Render("Change    ")+delta+mutedStyle.Render(fmt.Sprintf("  %+d strings", m.week.UnitsDelta)),
	)
	return panelStyle.Width(w).Render(content)
}

func (m entriesModel) renderListPanel(w int) string {
	var rows []string

	who := "everyone"
	if m.filter >= 0 && m.filter < len(m.employees) {
		who = m.employees[m.filter].Name
	}
	head := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render("Entries"),
		highlightStyle.Render(monthLabel(m.env.session.Month, m.env.labels)),
		mutedStyle.Render(who))
	if m.query != "" {
		head += mutedStyle.Render("  matching ") + highlightStyle.Render(m.query)
	}
	rows = append(rows, head)
	if m.searching {
		rows = append(rows, m.search.View())
	}
	if m.undo.pending() {
		left := formatCountdown(m.undo.remaining(m.env.now()))
		rows = append(rows, warningStyle.Render("Entry deleted. Press u to undo ("+left+")"))
	}
	rows = append(rows, "")

	if len(m.entries) == 0 {
		rows = append(rows, mutedStyle.Render("No entries. Press n to add one."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	var lines []string
	cursorLine := 0
	i := 0
	for _, g := range m.groups {
		day := fmt.Sprintf("%s  %s", report.HumanDate(g.Date), formatHours(g.Hours))
		if g.Units > 0 {
			day += fmt.Sprintf("  %d strings", g.Units)
		}
		lines = append(lines, highlightStyle.Render(day))
		for _, e := range g.Entries {
			cursor := "  "
			style := normalItemStyle
			if i == m.cursor {
				cursor = "> "
				style = selectedItemStyle
				cursorLine = len(lines)
			}
			kind := m.env.labels.WorkType(e.WorkType)
			if e.WorkType == store.WorkTask {
				kind += fmt.Sprintf(" %d", e.Strings)
			}
			line := fmt.Sprintf("%s%-20s %7s  %-12s %s",
				cursor, truncate(m.env.labels.Name(m.names, e.EmployeeID), 20), formatHours(e.Hours), kind,
				truncate(strings.TrimSpace(e.Tables+" "+e.Note), max(10, w-52)))
			lines = append(lines, style.Render(line))
			i++
		}
	}

	visible := max(5, m.height-16)
	start := 0
	if cursorLine >= visible {
		start = cursorLine - visible + 1
	}
	end := min(len(lines), start+visible)
	rows = append(rows, lines[start:end]...)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("n: new  enter: edit  d: delete  u: undo  /: search  f: employee  ←/→: month  m: all time"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
