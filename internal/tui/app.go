package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/solartrack/internal/backup"
	"github.com/sadopc/solartrack/internal/config"
	"github.com/sadopc/solartrack/internal/export"
	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
)

// Deps is what the terminal UI needs from the rest of the program.
type Deps struct {
	Store  *store.Store
	Engine *report.Engine
	Backup *backup.Orchestrator
	Config config.Config
	Log    *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	env    *env
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	entries    entriesModel
	projects   projectsModel
	reports    reportsModel
	attendance attendanceModel
	batch      batchModel
	settings   settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(ctx context.Context, d Deps) App {
	log := d.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &env{
		ctx:    ctx,
		store:  d.Store,
		engine: d.Engine,
		backup: d.Backup,
		cfg:    d.Config,
		log:    log,
		now:    time.Now,
	}
	e.session = report.NewSession(d.Engine, "", report.CurrentMonth(e.now()))
	e.loadSettings()

	h := help.New()
	h.ShowAll = false

	return App{
		env:        e,
		activeView: viewEntries,
		entries:    newEntriesModel(e),
		projects:   newProjectsModel(e),
		reports:    newReportsModel(e),
		attendance: newAttendanceModel(e),
		batch:      newBatchModel(e),
		settings:   newSettingsModel(e),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.entries.Init(),
		a.batch.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.entries.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.attendance.setSize(a.width, contentHeight)
		a.batch.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewEntries)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewProjects)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewReports)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewAttendance)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewBatch)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		var cmd tea.Cmd
		a.entries, cmd = a.entries.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			a.env.log.Warn("tui", "status", msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.env.log.Info("exported", "path", msg.path)
		return a, nil

	case projectChangedMsg:
		a.entries.filter = -1
		a.entries.query = ""
		return a, tea.Batch(a.entries.loadData(), a.batch.refresh(), a.refreshCurrentView())

	// Data messages go to their view even when it is not visible.
	case entriesDataMsg:
		var cmd tea.Cmd
		a.entries, cmd = a.entries.update(msg)
		return a, cmd
	case projectsDataMsg, employeesDataMsg:
		var cmd tea.Cmd
		a.projects, cmd = a.projects.update(msg)
		return a, cmd
	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd
	case attendanceDataMsg:
		var cmd tea.Cmd
		a.attendance, cmd = a.attendance.update(msg)
		return a, cmd
	case batchDataMsg:
		var cmd tea.Cmd
		a.batch, cmd = a.batch.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewEntries:
		a.entries, cmd = a.entries.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewAttendance:
		a.attendance, cmd = a.attendance.update(msg)
	case viewBatch:
		a.batch, cmd = a.batch.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewEntries:
		return a.entries.formActive || a.entries.searching
	case viewProjects:
		return a.projects.formActive
	case viewBatch:
		return a.batch.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewEntries:
		return a.entries.loadData()
	case viewProjects:
		return a.projects.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewAttendance:
		return a.attendance.refresh()
	case viewBatch:
		return a.batch.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewEntries:
		content = a.entries.view()
	case viewProjects:
		content = a.projects.view()
	case viewReports:
		content = a.reports.view()
	case viewAttendance:
		content = a.attendance.view()
	case viewBatch:
		content = a.batch.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("solartrack")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	undoInfo := ""
	if a.entries.undo.pending() {
		undoInfo = warningStyle.Render(" ↶ " + formatCountdown(a.entries.undo.remaining(a.env.now())))
	}

	left := footerStyle.Render(helpView)
	right := undoInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

type exportKind int

const (
	exportCSV exportKind = iota
	exportXLSX
	exportPDF
	exportBackup
)

var exportNames = []string{
	"CSV - entries shown in Entries",
	"XLSX - attendance sheet",
	"PDF - monthly report",
	"JSON - full backup",
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export"))
	rows = append(rows, mutedStyle.Render("to "+a.env.cfg.ExportDir))
	rows = append(rows, "")
	for i, f := range exportNames {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportNames)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportKind(a.exportCursor))
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(kind exportKind) tea.Cmd {
	employee := ""
	if f := a.entries.filter; f >= 0 && f < len(a.entries.employees) {
		employee = a.entries.employees[f].Name
	}
	e := a.env
	job := e.exportJob(kind, employee)
	return func() tea.Msg {
		path, err := writeExport(e, job)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

var errNoProject = errors.New("no project selected")

// exportJob is everything an export needs from the session, taken on the
// Update goroutine so the export command never reads shared state.
type exportJob struct {
	kind      exportKind
	projectID string
	month     string
	employee  string
	entries   []store.WorkEntry // the Entries view's last result
	labels    export.Labels
	now       time.Time
}

func (e *env) exportJob(kind exportKind, employee string) exportJob {
	return exportJob{
		kind:      kind,
		projectID: e.session.ProjectID,
		month:     e.session.Month,
		employee:  employee,
		entries:   e.session.LastResults(),
		labels:    e.labels,
		now:       e.now(),
	}
}

// writeExport writes one export into the configured export directory and
// returns its path.
func writeExport(e *env, job exportJob) (string, error) {
	ctx := e.ctx
	if job.kind == exportBackup {
		return createFile(e.cfg.ExportDir, backup.Filename(job.now, false), func(w io.Writer) error {
			_, err := e.backup.Create(ctx, w, backup.CreateOptions{})
			return err
		})
	}

	if job.projectID == "" {
		return "", errNoProject
	}
	p, err := e.store.GetProject(ctx, job.projectID)
	if err != nil {
		return "", err
	}
	project, pid, month, l := p.Name, job.projectID, job.month, job.labels

	switch job.kind {
	case exportCSV:
		names, err := e.engine.Names(ctx, pid)
		if err != nil {
			return "", err
		}
		return createFile(e.cfg.ExportDir, export.Filename(project, month, job.employee), func(w io.Writer) error {
			return export.WriteCSV(w, job.entries, project, names, l)
		})

	case exportXLSX:
		if month == "" {
			month = report.CurrentMonth(job.now)
		}
		att, err := e.engine.Attendance(ctx, pid, month)
		if err != nil {
			return "", err
		}
		return createFile(e.cfg.ExportDir, export.XLSXFilename(project, month), func(w io.Writer) error {
			return export.WriteAttendanceXLSX(w, project, att, l)
		})

	case exportPDF:
		r := export.MonthReport{ProjectName: project, Month: month}
		if r.Stats, err = e.engine.Stats(ctx, pid, month); err != nil {
			return "", err
		}
		if r.Employees, err = e.engine.EmployeeStats(ctx, pid, month); err != nil {
			return "", err
		}
		if month != "" {
			if r.Attendance, err = e.engine.Attendance(ctx, pid, month); err != nil {
				return "", err
			}
		}
		return createFile(e.cfg.ExportDir, export.PDFFilename(project, month), func(w io.Writer) error {
			return export.WriteReportPDF(w, r, l)
		})
	}
	return "", fmt.Errorf("unknown export %d", job.kind)
}

func createFile(dir, name string, fn func(w io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}
