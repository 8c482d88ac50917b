package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/solartrack/internal/report"
)

// attendanceModel shows the employee by day grid of one month. It follows
// the session month and falls back to the current month when the session
// looks at all time.
type attendanceModel struct {
	env    *env
	width  int
	height int

	att *report.Attendance
}

func newAttendanceModel(e *env) attendanceModel {
	return attendanceModel{env: e}
}

func (a *attendanceModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type attendanceDataMsg struct {
	projectID string
	month     string
	att       *report.Attendance
	err       error
}

func (a attendanceModel) month() string {
	if m := a.env.session.Month; m != "" {
		return m
	}
	return report.CurrentMonth(a.env.now())
}

func (a attendanceModel) refresh() tea.Cmd {
	e := a.env
	pid, month := e.session.ProjectID, a.month()
	return func() tea.Msg {
		msg := attendanceDataMsg{projectID: pid, month: month}
		if pid == "" {
			return msg
		}
		msg.att, msg.err = e.engine.Attendance(e.ctx, pid, month)
		return msg
	}
}

func (a attendanceModel) update(msg tea.Msg) (attendanceModel, tea.Cmd) {
	switch msg := msg.(type) {
	case attendanceDataMsg:
		if msg.projectID != a.env.session.ProjectID || msg.month != a.month() {
			return a, nil
		}
		if msg.err != nil {
			return a, errStatus("Load attendance", msg.err)
		}
		a.att = msg.att
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			a.env.session.Month = shiftMonth(a.month(), -1)
			return a, a.refresh()
		case key.Matches(msg, keys.Right):
			a.env.session.Month = shiftMonth(a.month(), 1)
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a attendanceModel) view() string {
	w := a.width - 4
	l := a.env.labels
	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(l.Attendance), "  ",
		highlightStyle.Render(a.env.projectName()), "  ",
		mutedStyle.Render(a.month()),
	)

	if a.att == nil || len(a.att.Rows) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No hours recorded this month."), "",
			mutedStyle.Render("←/→: month")))
	}

	nameWidth := 16
	cell := func(h float64) string {
		if h == 0 {
			return mutedStyle.Render(fmt.Sprintf("%4s", "·"))
		}
		return fmt.Sprintf("%4s", report.FormatHours(h))
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", nameWidth, l.Employee)))
	for d := 1; d <= a.att.Days; d++ {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%4d", d)))
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%8s", l.Total)))
	b.WriteString("\n")

	for _, row := range a.att.Rows {
		b.WriteString(fmt.Sprintf("%-*s", nameWidth, truncate(row.DisplayName(l.Unknown), nameWidth-1)))
		for _, h := range row.Hours {
			b.WriteString(cell(h))
		}
		b.WriteString(bigNumberStyle.Render(fmt.Sprintf("%8s", report.FormatHours(row.Total))))
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("%-*s", nameWidth, l.Total)))
	for _, h := range a.att.DayTotals {
		b.WriteString(cell(h))
	}
	b.WriteString(bigNumberStyle.Render(fmt.Sprintf("%8s", report.FormatHours(a.att.Total))))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", b.String(), "", mutedStyle.Render("←/→: month  e: export")))
}
