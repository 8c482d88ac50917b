package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/solartrack/internal/report"
)

type reportsModel struct {
	env    *env
	width  int
	height int

	stats     report.Stats
	employees []report.EmployeeStat
	daily     []report.DayTotal

	chart barchart.Model
}

func newReportsModel(e *env) reportsModel {
	return reportsModel{
		env:   e,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	projectID string
	month     string
	stats     report.Stats
	employees []report.EmployeeStat
	daily     []report.DayTotal
	err       error
}

func (r reportsModel) refresh() tea.Cmd {
	e := r.env
	pid, month := e.session.ProjectID, e.session.Month
	return func() tea.Msg {
		msg := reportsDataMsg{projectID: pid, month: month}
		if pid == "" {
			return msg
		}
		if msg.stats, msg.err = e.engine.Stats(e.ctx, pid, month); msg.err != nil {
			return msg
		}
		if msg.employees, msg.err = e.engine.EmployeeStats(e.ctx, pid, month); msg.err != nil {
			return msg
		}
		msg.daily, msg.err = e.engine.Daily(e.ctx, pid, month)
		return msg
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if s := r.env.session; msg.projectID != s.ProjectID || msg.month != s.Month {
			return r, nil
		}
		if msg.err != nil {
			return r, errStatus("Load report", msg.err)
		}
		r.stats = msg.stats
		r.employees = msg.employees
		r.daily = msg.daily
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		s := r.env.session
		switch {
		case key.Matches(msg, keys.Left):
			if s.Month == "" {
				s.Month = report.CurrentMonth(r.env.now())
			}
			s.Month = shiftMonth(s.Month, -1)
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if s.Month == "" {
				s.Month = report.CurrentMonth(r.env.now())
			}
			s.Month = shiftMonth(s.Month, 1)
			return r, r.refresh()
		case key.Matches(msg, keys.Mode):
			if s.Month == "" {
				s.Month = report.CurrentMonth(r.env.now())
			} else {
				s.Month = ""
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

// buildChart draws one bar per worked day, split into hourly and task hours.
// All time views show the most recent days that fit.
func (r *reportsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 10
	if r.height > 36 {
		chartHeight = 14
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	days := r.daily
	if limit := chartWidth / 4; len(days) > limit {
		days = days[len(days)-limit:]
	}

	var bars []barchart.BarData
	for _, d := range days {
		label := d.Date
		if len(label) == len("2006-01-02") {
			label = label[8:]
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: r.env.labels.Hourly, Value: d.HourlyHours, Style: hourlyBarStyle},
				{Name: r.env.labels.Task, Value: d.TaskHours, Style: taskBarStyle},
			},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{Label: "", Values: []barchart.BarValue{{Value: 0, Style: mutedStyle}}}}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4
	l := r.env.labels

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ",
		highlightStyle.Render(r.env.projectName()), "  ",
		mutedStyle.Render(monthLabel(r.env.session.Month, l)),
	)

	if r.env.session.ProjectID == "" {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("No project yet. Press 2 to create one in Projects.")))
	}

	st := r.stats
	summary := strings.Join([]string{
		fmt.Sprintf("%s %s", mutedStyle.Render(l.TotalHours), bigNumberStyle.Render(formatHours(st.TotalHours))),
		fmt.Sprintf("%s %s", mutedStyle.Render(l.HourlyHours), formatHours(st.HourlyHours)),
		fmt.Sprintf("%s %s", mutedStyle.Render(l.TaskHours), formatHours(st.TaskHours)),
		fmt.Sprintf("%s %d", mutedStyle.Render(l.TotalUnits), st.TotalUnits),
		fmt.Sprintf("%s %d", mutedStyle.Render(l.WorkDays), st.WorkDays),
		fmt.Sprintf("%s %s", mutedStyle.Render(l.AvgPerDay), formatHours(st.AvgHoursPerDay)),
	}, "   ")

	legend := "  " + hourlyBarStyle.Render("■ "+l.Hourly) + "  " + taskBarStyle.Render("■ "+l.Task)
	nav := mutedStyle.Render("  ←/→: month  m: month/all time")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", summary, "", r.chart.View(), legend, "", r.renderRanking(w), "", nav,
		),
	)
}

func (r reportsModel) renderRanking(w int) string {
	l := r.env.labels
	if len(r.employees) == 0 {
		return mutedStyle.Render("  No hours recorded for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-22s %9s %8s %6s %9s", "#", l.Employee, l.Hours, l.Units, l.Days, l.AvgPerDay)))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 62))))
	for i, s := range r.employees {
		badge := ""
		if s.TopHours {
			badge += warningStyle.Render(" ★")
		}
		if s.TopUnits {
			badge += successStyle.Render(" ◆")
		}
		rows = append(rows, fmt.Sprintf("  %-3d %-22s %9s %8d %6d %9s%s",
			i+1, truncate(s.Name, 22), formatHours(s.Hours), s.Units, s.Days, formatHours(s.AvgHoursPerDay), badge))
	}
	return strings.Join(rows, "\n")
}
