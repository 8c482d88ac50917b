package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/solartrack/internal/store"
)

type settingsModel struct {
	env    *env
	width  int
	height int

	settings   []store.Setting
	projects   []store.Project
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	locale      *string
	undoSeconds *string
	current     *string
}

func newSettingsModel(e *env) settingsModel {
	loc, undo, cur := "", "", ""
	return settingsModel{
		env:         e,
		locale:      &loc,
		undoSeconds: &undo,
		current:     &cur,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	projects []store.Project
	err      error
}

func (s settingsModel) refresh() tea.Cmd {
	e := s.env
	return func() tea.Msg {
		settings, err := e.store.GetAllSettings(e.ctx)
		if err != nil {
			return settingsDataMsg{err: err}
		}
		projects, err := e.store.ListProjects(e.ctx)
		return settingsDataMsg{settings: settings, projects: projects, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, errStatus("Load settings", msg.err)
		}
		s.settings = msg.settings
		s.projects = msg.projects
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func validateUndoSeconds(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of seconds, 0 disables undo")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.locale = s.env.labels.Locale
	*s.undoSeconds = strconv.Itoa(int(s.env.undo.Seconds()))
	*s.current = s.env.session.ProjectID

	projectOpts := []huh.Option[string]{huh.NewOption("(first project)", "")}
	for _, p := range s.projects {
		projectOpts = append(projectOpts, huh.NewOption(p.Name, p.ID))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Language of exports").
				Options(
					huh.NewOption("Čeština", "cs"),
					huh.NewOption("English", "en"),
				).Value(s.locale),
			huh.NewInput().Title("Undo window (seconds)").Value(s.undoSeconds).Validate(validateUndoSeconds),
			huh.NewSelect[string]().Title("Current project").Options(projectOpts...).Value(s.current),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, errStatus("Save settings", err)
		}
		return s, tea.Batch(
			s.refresh(),
			status("Settings saved"),
			func() tea.Msg { return projectChangedMsg{} },
		)
	}

	return s, cmd
}

// saveSettings stores the form values and reapplies them to the shared env.
func (s settingsModel) saveSettings() error {
	ctx := s.env.ctx
	values := []store.Setting{
		{Key: store.SettingLocale, Value: *s.locale},
		{Key: store.SettingUndoSeconds, Value: strings.TrimSpace(*s.undoSeconds)},
		{Key: store.SettingCurrentProject, Value: *s.current},
	}
	for _, v := range values {
		if err := s.env.store.SetSetting(ctx, v.Key, v.Value); err != nil {
			return err
		}
	}
	s.env.loadSettings()
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(s.formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, titleStyle.Render("Configuration"))
	cfg := s.env.cfg
	for _, kv := range [][2]string{
		{"database", cfg.DBPath},
		{"export directory", cfg.ExportDir},
		{"log file", cfg.LogPath()},
		{"s3 bucket", cfg.S3.Bucket},
	} {
		if kv[1] == "" {
			kv[1] = "-"
		}
		rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(kv[0]), mutedStyle.Render(kv[1])))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s settingsModel) formatSettingValue(k, v string) string {
	switch k {
	case store.SettingUndoSeconds:
		if n, err := strconv.Atoi(v); err == nil {
			if n == 0 {
				return "off"
			}
			return fmt.Sprintf("%d s", n)
		}
	case store.SettingCurrentProject:
		if v == "" {
			return "-"
		}
		for _, p := range s.projects {
			if p.ID == v {
				return p.Name
			}
		}
	case store.SettingLocale:
		switch v {
		case "cs":
			return "čeština"
		case "en":
			return "English"
		}
	}
	return v
}
