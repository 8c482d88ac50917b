package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/solartrack/internal/backup"
	"github.com/sadopc/solartrack/internal/config"
	"github.com/sadopc/solartrack/internal/export"
	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewEntries viewState = iota
	viewProjects
	viewReports
	viewAttendance
	viewBatch
	viewSettings
)

var viewNames = []string{"Entries", "Projects", "Reports", "Attendance", "Batch", "Settings"}

// env is shared by every view. The session is a pointer so that all views
// see the same current project and month.
type env struct {
	ctx     context.Context
	store   *store.Store
	engine  *report.Engine
	backup  *backup.Orchestrator
	cfg     config.Config
	log     *slog.Logger
	labels  export.Labels
	undo    time.Duration
	session *report.Session
	now     func() time.Time
}

// loadSettings applies the stored settings over the configuration and picks
// the current project. An unknown or deleted current project falls back to
// the first active one.
func (e *env) loadSettings() {
	locale := e.cfg.Locale
	if v, err := e.store.GetSetting(e.ctx, store.SettingLocale); err == nil && v != "" {
		locale = v
	}
	e.labels = export.LabelsFor(locale)

	e.undo = time.Duration(e.cfg.UndoSeconds) * time.Second
	if v, err := e.store.GetSetting(e.ctx, store.SettingUndoSeconds); err == nil {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			e.undo = time.Duration(n) * time.Second
		}
	}

	current, _ := e.store.GetSetting(e.ctx, store.SettingCurrentProject)
	if p, err := e.store.GetProject(e.ctx, current); err == nil && p.Active {
		e.session.SetProject(p.ID)
		return
	}
	projects, err := e.store.ListProjects(e.ctx)
	if err != nil {
		e.log.Error("list projects", "err", err)
		return
	}
	if len(projects) > 0 {
		e.session.SetProject(projects[0].ID)
	} else {
		e.session.SetProject("")
	}
}

func (e *env) projectName() string {
	if e.session.ProjectID == "" {
		return ""
	}
	p, err := e.store.GetProject(e.ctx, e.session.ProjectID)
	if err != nil {
		return ""
	}
	return p.Name
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// projectChangedMsg tells the app that the current project or settings
// changed and the visible view must reload.
type projectChangedMsg struct{}

func errStatus(op string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", op, err), isError: true}
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// --- Helpers ---

func formatHours(h float64) string {
	return report.FormatHours(h) + "h"
}

func formatSigned(h float64) string {
	if h > 0 {
		return "+" + formatHours(h)
	}
	return formatHours(h)
}

// formatCountdown renders the seconds left of an undo window.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%ds", int(d.Round(time.Second).Seconds()))
}

// shiftMonth moves a YYYY-MM month by delta months. An empty or malformed
// month is returned unchanged.
func shiftMonth(month string, delta int) string {
	t, err := time.Parse(report.MonthLayout, month)
	if err != nil {
		return month
	}
	return t.AddDate(0, delta, 0).Format(report.MonthLayout)
}

func monthLabel(month string, l export.Labels) string {
	if month == "" {
		return l.AllTime
	}
	return month
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
