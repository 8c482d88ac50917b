package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/solartrack/internal/store"
)

type projectsModel struct {
	env    *env
	width  int
	height int

	projects       []store.Project
	employees      []store.Employee
	cursor         int
	empCursor      int
	viewingCrew    bool // true = viewing employees of the selected project
	showDeletedEmp bool

	formActive bool
	form       *huh.Form
	formType   string // "project" or "employee"

	// Form field pointers (survive value copies)
	formName *string
}

func newProjectsModel(e *env) projectsModel {
	name := ""
	return projectsModel{env: e, formName: &name}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	projects []store.Project
	err      error
}

type employeesDataMsg struct {
	employees []store.Employee
	err       error
}

func (p projectsModel) refresh() tea.Cmd {
	e := p.env
	return func() tea.Msg {
		projects, err := e.store.ListProjects(e.ctx)
		return projectsDataMsg{projects: projects, err: err}
	}
}

func (p projectsModel) refreshCrew() tea.Cmd {
	if p.cursor >= len(p.projects) {
		return nil
	}
	e := p.env
	pid := p.projects[p.cursor].ID
	all := p.showDeletedEmp
	return func() tea.Msg {
		var emps []store.Employee
		var err error
		if all {
			emps, err = e.store.ListAllEmployees(e.ctx, pid)
		} else {
			emps, err = e.store.ListEmployeesByProject(e.ctx, pid)
		}
		return employeesDataMsg{employees: emps, err: err}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		if msg.err != nil {
			return p, errStatus("Load projects", msg.err)
		}
		p.projects = msg.projects
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		if p.viewingCrew && len(p.projects) == 0 {
			p.viewingCrew = false
		}
		return p, nil

	case employeesDataMsg:
		if msg.err != nil {
			return p, errStatus("Load employees", msg.err)
		}
		p.employees = msg.employees
		if p.empCursor >= len(p.employees) {
			p.empCursor = max(0, len(p.employees)-1)
		}
		return p, nil

	case tea.KeyMsg:
		if p.viewingCrew {
			return p.updateCrewView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.projects) > 0 {
			p.viewingCrew = true
			p.empCursor = 0
			return p, p.refreshCrew()
		}
	case key.Matches(msg, keys.New):
		return p.showNameForm("project")
	case key.Matches(msg, keys.Current):
		if len(p.projects) > 0 {
			return p.makeCurrent(p.projects[p.cursor])
		}
	case key.Matches(msg, keys.Delete):
		if len(p.projects) > 0 {
			return p.deleteProject(p.projects[p.cursor])
		}
	}
	return p, nil
}

func (p projectsModel) updateCrewView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingCrew = false
		return p, nil
	case key.Matches(msg, keys.Up):
		if p.empCursor > 0 {
			p.empCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.empCursor < len(p.employees)-1 {
			p.empCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showNameForm("employee")
	case key.Matches(msg, keys.Mode):
		p.showDeletedEmp = !p.showDeletedEmp
		return p, p.refreshCrew()
	case key.Matches(msg, keys.Delete):
		if len(p.employees) > 0 {
			emp := p.employees[p.empCursor]
			if err := p.env.store.SoftDeleteEmployee(p.env.ctx, emp.ID); err != nil {
				return p, errStatus("Delete employee", err)
			}
			return p, tea.Batch(p.refreshCrew(), status(emp.Name+" deleted"))
		}
	}
	return p, nil
}

func (p projectsModel) makeCurrent(proj store.Project) (projectsModel, tea.Cmd) {
	if err := p.env.store.SetSetting(p.env.ctx, store.SettingCurrentProject, proj.ID); err != nil {
		return p, errStatus("Select project", err)
	}
	p.env.session.SetProject(proj.ID)
	return p, tea.Batch(
		status("Current project: "+proj.Name),
		func() tea.Msg { return projectChangedMsg{} },
	)
}

// deleteProject soft deletes proj. When it was the current project the
// session moves on to the next active one.
func (p projectsModel) deleteProject(proj store.Project) (projectsModel, tea.Cmd) {
	ctx := p.env.ctx
	if err := p.env.store.SoftDeleteProject(ctx, proj.ID); err != nil {
		return p, errStatus("Delete project", err)
	}
	cmds := []tea.Cmd{p.refresh(), status("Project " + proj.Name + " deleted")}
	if p.env.session.ProjectID == proj.ID {
		if err := p.env.store.SetSetting(ctx, store.SettingCurrentProject, ""); err != nil {
			return p, errStatus("Delete project", err)
		}
		p.env.loadSettings()
		cmds = append(cmds, func() tea.Msg { return projectChangedMsg{} })
	}
	return p, tea.Batch(cmds...)
}

func (p projectsModel) showNameForm(kind string) (projectsModel, tea.Cmd) {
	*p.formName = ""
	p.formType = kind

	title := "Project Name"
	if kind == "employee" {
		title = "Employee Name"
	}
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(p.formName).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		return p.saveForm()
	}
	return p, cmd
}

func (p projectsModel) saveForm() (projectsModel, tea.Cmd) {
	ctx := p.env.ctx
	switch p.formType {
	case "project":
		proj, err := p.env.store.CreateProject(ctx, *p.formName)
		if err != nil {
			return p, errStatus("Create project", err)
		}
		if p.env.session.ProjectID == "" {
			next, cmd := p.makeCurrent(*proj)
			return next, tea.Batch(next.refresh(), cmd)
		}
		return p, tea.Batch(p.refresh(), status("Project "+proj.Name+" created"))
	case "employee":
		if p.cursor >= len(p.projects) {
			return p, nil
		}
		emp, err := p.env.store.CreateEmployee(ctx, *p.formName, p.projects[p.cursor].ID)
		if err != nil {
			return p, errStatus("Add employee", err)
		}
		return p, tea.Batch(p.refreshCrew(), status(emp.Name+" added"))
	}
	return p, nil
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		if p.formType == "employee" {
			title = titleStyle.Render("New Employee")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return activePanelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingCrew && p.cursor < len(p.projects) {
		return p.renderCrewView()
	}
	return p.renderProjectList()
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-32s %-12s", "", "Name", "Created")))

	for i, proj := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := " "
		if proj.ID == p.env.session.ProjectID {
			mark = successStyle.Render("●")
		}
		row := style.Render(fmt.Sprintf("%s%s %-32s %-12s", cursor, mark, truncate(proj.Name, 32), proj.Created.Local().Format("02.01.2006")))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  c: make current  d: delete  enter: employees"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderCrewView() string {
	w := p.width - 4
	proj := p.projects[p.cursor]
	title := titleStyle.Render(proj.Name + " / Employees")

	if len(p.employees) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No employees. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, emp := range p.employees {
		cursor := "  "
		style := normalItemStyle
		if i == p.empCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := style.Render(cursor + emp.Name)
		if !emp.Active {
			line += mutedStyle.Render(" (deleted)")
		}
		rows = append(rows, line)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new employee  d: delete  m: show deleted  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
