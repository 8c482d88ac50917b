package tui

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sadopc/solartrack/internal/backup"
	"github.com/sadopc/solartrack/internal/config"
	"github.com/sadopc/solartrack/internal/report"
	"github.com/sadopc/solartrack/internal/store"
)

var testNow = time.Date(2024, 6, 5, 17, 0, 0, 0, time.Local)

func newTestEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	s, err := store.NewMemory(ctx)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	engine := report.New(s, report.WithClock(func() time.Time { return testNow }))
	e := &env{
		ctx:    ctx,
		store:  s,
		engine: engine,
		backup: backup.New(s),
		cfg:    config.Config{Locale: "cs", UndoSeconds: 5, ExportDir: t.TempDir()},
		log:    slog.New(slog.DiscardHandler),
		now:    func() time.Time { return testNow },
	}
	e.session = report.NewSession(engine, "", "2024-06")
	e.loadSettings()
	return e
}

type crew struct {
	project store.Project
	jan     store.Employee
	eva     store.Employee
}

// seedCrew creates a current project with two employees.
func seedCrew(t *testing.T, e *env) crew {
	t.Helper()
	p, err := e.store.CreateProject(e.ctx, "Solar Park Brno")
	if err != nil {
		t.Fatal(err)
	}
	jan, err := e.store.CreateEmployee(e.ctx, "Jan Novák", p.ID)
	if err != nil {
		t.Fatal(err)
	}
	eva, err := e.store.CreateEmployee(e.ctx, "Eva", p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.store.SetSetting(e.ctx, store.SettingCurrentProject, p.ID); err != nil {
		t.Fatal(err)
	}
	e.loadSettings()
	return crew{project: *p, jan: *jan, eva: *eva}
}

func addEntry(t *testing.T, e *env, c crew, emp store.Employee, date string, hours float64, in store.EntryInput) store.WorkEntry {
	t.Helper()
	in.ProjectID = c.project.ID
	in.EmployeeID = emp.ID
	in.Date = date
	in.Hours = hours
	entry, err := e.store.CreateEntry(e.ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	return *entry
}

// collect runs cmd and every command it batches. Commands that block, such
// as ticks, must not be passed in.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findStatus(msgs []tea.Msg) (statusMsg, bool) {
	for _, m := range msgs {
		if s, ok := m.(statusMsg); ok {
			return s, true
		}
	}
	return statusMsg{}, false
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// loadEntries runs the entries view's load and applies the result.
func loadEntries(t *testing.T, m entriesModel) entriesModel {
	t.Helper()
	for _, msg := range collect(m.loadData()) {
		m, _ = m.update(msg)
	}
	return m
}

// ============================================================
// Undo model
// ============================================================

func TestUndoHoldAndExpire(t *testing.T) {
	e := newTestEnv(t)
	u := newUndoModel(e.store, 5*time.Second)
	if u.pending() {
		t.Fatal("new undo model should hold nothing")
	}

	u.hold(store.WorkEntry{ID: "entry_1"}, testNow)
	if !u.pending() {
		t.Fatal("entry should be held")
	}
	if got := u.remaining(testNow.Add(2 * time.Second)); got != 3*time.Second {
		t.Fatalf("remaining = %v, want 3s", got)
	}

	if u.tick(testNow.Add(4 * time.Second)) {
		t.Fatal("window should still be open")
	}
	if !u.tick(testNow.Add(5 * time.Second)) {
		t.Fatal("window should close at the deadline")
	}
	if u.pending() {
		t.Fatal("entry should be dropped after the window")
	}
	if u.tick(testNow.Add(6 * time.Second)) {
		t.Fatal("tick without a held entry should report nothing")
	}
}

func TestUndoZeroWindow(t *testing.T) {
	e := newTestEnv(t)
	u := newUndoModel(e.store, 0)
	u.hold(store.WorkEntry{ID: "entry_1"}, testNow)
	if u.pending() {
		t.Fatal("zero window should make deletes final")
	}
}

func TestUndoRestoresEntry(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	entry := addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{Note: "roof"})

	if err := e.store.DeleteEntry(e.ctx, entry.ID); err != nil {
		t.Fatal(err)
	}
	u := newUndoModel(e.store, 5*time.Second)
	u.hold(entry, testNow)

	restored, err := u.undo(e.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if restored == nil || restored.ID != entry.ID {
		t.Fatalf("restored = %+v", restored)
	}
	got, err := e.store.GetEntry(e.ctx, entry.ID)
	if err != nil {
		t.Fatalf("entry should be back: %v", err)
	}
	if !got.Created.Equal(entry.Created) || got.Note != "roof" {
		t.Fatalf("restored entry differs: %+v", got)
	}

	again, err := u.undo(e.ctx)
	if err != nil || again != nil {
		t.Fatalf("second undo = %v, %v; want nil, nil", again, err)
	}
}

// ============================================================
// Entries view
// ============================================================

func TestEntriesLoad(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.jan, "2024-06-01", 4, store.EntryInput{})
	addEntry(t, e, c, c.eva, "2024-06-03", 8, store.EntryInput{})
	addEntry(t, e, c, c.eva, "2024-05-29", 5, store.EntryInput{})

	m := loadEntries(t, newEntriesModel(e))
	if len(m.entries) != 2 {
		t.Fatalf("expected the 2 June entries, got %d", len(m.entries))
	}
	if len(m.groups) != 2 || m.groups[0].Date != "2024-06-03" {
		t.Fatalf("groups should be newest first: %+v", m.groups)
	}
	if len(m.employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(m.employees))
	}
	if m.week.Current.Hours != 8 || m.week.Previous.Hours != 9 {
		t.Fatalf("week = %+v", m.week)
	}

	m.setSize(120, 40)
	out := m.view()
	for _, want := range []string{"Solar Park Brno", "03.06.2024", "Jan Novák"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEntriesNoProject(t *testing.T) {
	e := newTestEnv(t)
	m := loadEntries(t, newEntriesModel(e))
	m.setSize(100, 30)
	if !strings.Contains(m.view(), "No project yet") {
		t.Fatal("view should ask for a project")
	}
	_, cmd := m.showForm(nil)
	s, ok := findStatus(collect(cmd))
	if !ok || !strings.Contains(s.text, "No project") {
		t.Fatalf("status = %+v", s)
	}
}

func TestEntriesDeleteAndUndo(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	entry := addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{})

	m := loadEntries(t, newEntriesModel(e))
	m, cmd := m.update(keyPress("d"))
	msgs := collect(cmd)
	s, ok := findStatus(msgs)
	if !ok || !strings.Contains(s.text, "press u within 5s") {
		t.Fatalf("status = %+v", s)
	}
	for _, msg := range msgs {
		m, _ = m.update(msg)
	}
	if len(m.entries) != 0 {
		t.Fatalf("entry should be gone, have %d", len(m.entries))
	}
	if !m.undo.pending() {
		t.Fatal("deleted entry should be held for undo")
	}

	m, cmd = m.update(keyPress("u"))
	for _, msg := range collect(cmd) {
		m, _ = m.update(msg)
	}
	if len(m.entries) != 1 || m.entries[0].ID != entry.ID {
		t.Fatalf("entry should be restored, have %+v", m.entries)
	}
}

func TestEntriesDeleteBecomesFinal(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{})

	m := loadEntries(t, newEntriesModel(e))
	m, _ = m.update(keyPress("d"))
	m, cmd := m.update(tickMsg(testNow.Add(6 * time.Second)))
	s, ok := findStatus(collect(cmd))
	if !ok || s.text != "Delete is final" {
		t.Fatalf("status = %+v", s)
	}

	_, cmd = m.update(keyPress("u"))
	s, _ = findStatus(collect(cmd))
	if s.text != "Nothing to undo" {
		t.Fatalf("status = %q", s.text)
	}
}

func TestEntriesEmployeeFilter(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.jan, "2024-06-01", 4, store.EntryInput{})
	addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{})

	m := loadEntries(t, newEntriesModel(e))
	m, cmd := m.update(keyPress("f"))
	for _, msg := range collect(cmd) {
		m, _ = m.update(msg)
	}
	if m.filter != 0 || len(m.entries) != 1 || m.entries[0].EmployeeID != c.jan.ID {
		t.Fatalf("filter %d shows %+v", m.filter, m.entries)
	}

	m, _ = m.update(keyPress("f"))
	m, cmd = m.update(keyPress("f"))
	for _, msg := range collect(cmd) {
		m, _ = m.update(msg)
	}
	if m.filter != -1 || len(m.entries) != 2 {
		t.Fatalf("filter should wrap to everyone, got %d with %d entries", m.filter, len(m.entries))
	}
}

func TestEntriesSearchCachesResults(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{Tables: "3E42, 3E43"})
	addEntry(t, e, c, c.eva, "2024-06-02", 5, store.EntryInput{Tables: "3F10"})

	m := newEntriesModel(e)
	m.query = "3e42"
	m = loadEntries(t, m)
	if len(m.entries) != 1 {
		t.Fatalf("expected 1 match, got %d", len(m.entries))
	}
	if got := e.session.LastResults(); len(got) != 1 || got[0].Tables != "3E42, 3E43" {
		t.Fatalf("session should remember the search: %+v", got)
	}
}

func TestEntriesSearchInput(t *testing.T) {
	e := newTestEnv(t)
	seedCrew(t, e)
	m := newEntriesModel(e)

	m, _ = m.update(keyPress("/"))
	if !m.searching {
		t.Fatal("/ should open the search input")
	}
	m.search.SetValue(" eva ")
	m, cmd := m.update(keyPress("enter"))
	if m.searching || m.query != "eva" {
		t.Fatalf("searching=%v query=%q", m.searching, m.query)
	}
	if cmd == nil {
		t.Fatal("submitting a search should reload")
	}
}

func TestEntriesDropsStaleLoads(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{Tables: "june"})
	addEntry(t, e, c, c.eva, "2024-05-20", 6, store.EntryInput{Tables: "may"})

	m := newEntriesModel(e)
	june := m.loadData()
	m, may := m.update(keyPress("left"))

	// The May load finishes first, then the older June load arrives.
	for _, msg := range collect(may) {
		m, _ = m.update(msg)
	}
	for _, msg := range collect(june) {
		m, _ = m.update(msg)
	}

	if len(m.entries) != 1 || m.entries[0].Tables != "may" {
		t.Fatalf("view should keep the May result, got %+v", m.entries)
	}
	if got := e.session.LastResults(); len(got) != 1 || got[0].Tables != "may" {
		t.Fatalf("export cache should hold the May result, got %+v", got)
	}
}

func TestEntriesLoadsLeaveSessionAlone(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{})

	m := loadEntries(t, newEntriesModel(e))
	var wg sync.WaitGroup
	results := make(chan tea.Msg, 16)
	for range 8 {
		cmd := m.loadData()
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- cmd()
		}()
		m, _ = m.update(keyPress("right"))
		_ = e.session.LastResults()
	}
	wg.Wait()
	close(results)

	before := e.session.LastResults()
	for msg := range results {
		m, _ = m.update(msg)
	}
	if len(e.session.LastResults()) != len(before) {
		t.Fatal("outdated loads must not replace the remembered result")
	}
}

func TestEntriesMonthNavigation(t *testing.T) {
	e := newTestEnv(t)
	seedCrew(t, e)
	m := newEntriesModel(e)

	m, _ = m.update(keyPress("left"))
	if e.session.Month != "2024-05" {
		t.Fatalf("month = %q", e.session.Month)
	}
	m, _ = m.update(keyPress("m"))
	if e.session.Month != "" {
		t.Fatalf("m should switch to all time, got %q", e.session.Month)
	}
	m.update(keyPress("m"))
	if e.session.Month != "2024-06" {
		t.Fatalf("m should come back to the current month, got %q", e.session.Month)
	}
}

func TestEntriesSaveForm(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	m := loadEntries(t, newEntriesModel(e))

	*m.fields = entryFields{
		employee: c.jan.ID,
		date:     "2024-06-04",
		hours:    "7,5",
		units:    "12",
		workType: "task",
		tables:   "3E42",
	}
	m, cmd := m.saveForm()
	s, _ := findStatus(collect(cmd))
	if s.isError {
		t.Fatalf("save failed: %s", s.text)
	}
	m = loadEntries(t, m)
	if len(m.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.entries))
	}
	got := m.entries[0]
	if got.Hours != 7.5 || got.Strings != 12 || got.WorkType != store.WorkTask {
		t.Fatalf("entry = %+v", got)
	}

	m.editing = &got
	m.fields.hours = "6"
	m.fields.workType = "hourly"
	m, _ = m.saveForm()
	updated, err := e.store.GetEntry(e.ctx, got.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Hours != 6 || updated.Strings != 0 {
		t.Fatalf("hourly edit should drop strings: %+v", updated)
	}
	if m.editing != nil {
		t.Fatal("editing should be cleared after save")
	}
}

func TestEntriesSaveFormRejectsZeroHours(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	m := newEntriesModel(e)
	*m.fields = entryFields{employee: c.jan.ID, date: "2024-06-04", hours: "0", workType: "hourly"}

	_, cmd := m.saveForm()
	s, _ := findStatus(collect(cmd))
	if !s.isError {
		t.Fatal("zero hours should be rejected")
	}
}

func TestFormValidators(t *testing.T) {
	if validateDate("2024-02-30") == nil {
		t.Error("2024-02-30 should be rejected")
	}
	if validateDate(" 2024-02-29 ") != nil {
		t.Error("leap day should be accepted")
	}
	if validateHours("0") == nil || validateHours("abc") == nil {
		t.Error("zero and garbage hours should be rejected")
	}
	if validateHours("7,5") != nil {
		t.Error("comma decimals should be accepted")
	}
	if validateUndoSeconds("-1") == nil || validateUndoSeconds("x") == nil {
		t.Error("negative and non-numeric undo windows should be rejected")
	}
	if validateUndoSeconds("0") != nil {
		t.Error("0 should disable undo")
	}
}

// ============================================================
// Batch view
// ============================================================

func TestBatchSave(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	b := newBatchModel(e)
	for _, msg := range collect(b.refresh()) {
		b, _ = b.update(msg)
	}
	if len(b.employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(b.employees))
	}

	b, _ = b.showForm()
	if !b.formActive || len(b.rows) != 2 {
		t.Fatalf("form should list the crew: active=%v rows=%d", b.formActive, len(b.rows))
	}
	b.fields.date = "2024-06-04"
	b.fields.workType = "task"
	b.rows[0].value = "9:16"
	b.rows[1].value = ""

	b.form.State = huh.StateCompleted
	b, cmd := b.updateForm(nil)
	if b.formActive || b.form != nil {
		t.Fatal("completed form should close")
	}
	s, _ := findStatus(collect(cmd))
	if s.text != "1 entries saved, 9h in total" {
		t.Fatalf("status = %q", s.text)
	}
	if len(b.last) != 1 || b.last[0].EmployeeID != c.jan.ID || b.last[0].Strings != 16 {
		t.Fatalf("last = %+v", b.last)
	}

	b.setSize(100, 30)
	if !strings.Contains(b.view(), "Last saved") {
		t.Fatal("view should list the saved batch")
	}
}

func TestBatchNothingToSave(t *testing.T) {
	e := newTestEnv(t)
	seedCrew(t, e)
	b := newBatchModel(e)
	for _, msg := range collect(b.refresh()) {
		b, _ = b.update(msg)
	}
	b, _ = b.showForm()

	_, cmd := b.save()
	s, _ := findStatus(collect(cmd))
	if !s.isError || !strings.Contains(s.text, "no row has hours") {
		t.Fatalf("status = %+v", s)
	}
}

func TestBatchWithoutEmployees(t *testing.T) {
	e := newTestEnv(t)
	b := newBatchModel(e)
	b, cmd := b.showForm()
	if b.formActive {
		t.Fatal("form needs employees")
	}
	s, _ := findStatus(collect(cmd))
	if !strings.Contains(s.text, "No employees") {
		t.Fatalf("status = %q", s.text)
	}
}

// ============================================================
// Projects view
// ============================================================

func TestProjectsCreateFirstBecomesCurrent(t *testing.T) {
	e := newTestEnv(t)
	p := newProjectsModel(e)

	p.formType = "project"
	*p.formName = "Hodonín"
	p, cmd := p.saveForm()
	var changed bool
	for _, msg := range collect(cmd) {
		if _, ok := msg.(projectChangedMsg); ok {
			changed = true
		}
		p, _ = p.update(msg)
	}
	if !changed {
		t.Fatal("first project should become current")
	}
	if len(p.projects) != 1 || e.session.ProjectID != p.projects[0].ID {
		t.Fatalf("session %q, projects %+v", e.session.ProjectID, p.projects)
	}
	cur, _ := e.store.GetSetting(e.ctx, store.SettingCurrentProject)
	if cur != p.projects[0].ID {
		t.Fatalf("current_project setting = %q", cur)
	}
}

func TestProjectsEmployees(t *testing.T) {
	e := newTestEnv(t)
	seedCrew(t, e)
	p := newProjectsModel(e)
	for _, msg := range collect(p.refresh()) {
		p, _ = p.update(msg)
	}

	p, cmd := p.update(keyPress("enter"))
	for _, msg := range collect(cmd) {
		p, _ = p.update(msg)
	}
	if !p.viewingCrew || len(p.employees) != 2 {
		t.Fatalf("crew view: %v, %d employees", p.viewingCrew, len(p.employees))
	}

	p.formType = "employee"
	*p.formName = "Petr"
	p, cmd = p.saveForm()
	for _, msg := range collect(cmd) {
		p, _ = p.update(msg)
	}
	if len(p.employees) != 3 {
		t.Fatalf("expected 3 employees, got %d", len(p.employees))
	}

	p, cmd = p.update(keyPress("d"))
	for _, msg := range collect(cmd) {
		p, _ = p.update(msg)
	}
	if len(p.employees) != 2 {
		t.Fatalf("deleted employee should be hidden, got %d", len(p.employees))
	}

	p, cmd = p.update(keyPress("m"))
	for _, msg := range collect(cmd) {
		p, _ = p.update(msg)
	}
	if len(p.employees) != 3 {
		t.Fatalf("m should show deleted employees, got %d", len(p.employees))
	}
	p.setSize(100, 30)
	if !strings.Contains(p.view(), "(deleted)") {
		t.Fatal("deleted employee should be marked")
	}

	p, _ = p.update(keyPress("esc"))
	if p.viewingCrew {
		t.Fatal("esc should go back to projects")
	}
}

func TestProjectsDeleteCurrent(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	other, err := e.store.CreateProject(e.ctx, "Hodonín")
	if err != nil {
		t.Fatal(err)
	}

	p := newProjectsModel(e)
	for _, msg := range collect(p.refresh()) {
		p, _ = p.update(msg)
	}
	p, cmd := p.update(keyPress("d"))
	for _, msg := range collect(cmd) {
		p, _ = p.update(msg)
	}

	if e.session.ProjectID != other.ID {
		t.Fatalf("session should move to %s, is %s", other.ID, e.session.ProjectID)
	}
	if len(p.projects) != 1 {
		t.Fatalf("expected 1 active project, got %d", len(p.projects))
	}
	got, err := e.store.GetProject(e.ctx, c.project.ID)
	if err != nil || got.Active {
		t.Fatalf("project should be soft deleted: %+v, %v", got, err)
	}
}

func TestProjectsMakeCurrent(t *testing.T) {
	e := newTestEnv(t)
	seedCrew(t, e)
	other, _ := e.store.CreateProject(e.ctx, "Hodonín")

	p := newProjectsModel(e)
	for _, msg := range collect(p.refresh()) {
		p, _ = p.update(msg)
	}
	p, _ = p.update(keyPress("down"))
	p.update(keyPress("c"))
	if e.session.ProjectID != other.ID {
		t.Fatalf("session = %s, want %s", e.session.ProjectID, other.ID)
	}
}

// ============================================================
// Reports and attendance
// ============================================================

func TestReportsLoad(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.jan, "2024-06-01", 4, store.EntryInput{WorkType: store.WorkTask, Strings: 6})
	addEntry(t, e, c, c.jan, "2024-06-02", 3, store.EntryInput{})
	addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{})

	r := newReportsModel(e)
	r.setSize(120, 40)
	for _, msg := range collect(r.refresh()) {
		r, _ = r.update(msg)
	}
	if r.stats.TotalHours != 12 || r.stats.WorkDays != 2 || r.stats.AvgHoursPerDay != 6 {
		t.Fatalf("stats = %+v", r.stats)
	}
	if len(r.employees) != 2 || r.employees[0].Name != "Jan Novák" || !r.employees[0].TopHours {
		t.Fatalf("ranking = %+v", r.employees)
	}
	if len(r.daily) != 2 {
		t.Fatalf("daily = %+v", r.daily)
	}

	out := r.view()
	for _, want := range []string{"Solar Park Brno", "2024-06", "12h", "Jan Novák"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestReportsMonthKeys(t *testing.T) {
	e := newTestEnv(t)
	seedCrew(t, e)
	r := newReportsModel(e)

	r, _ = r.update(keyPress("right"))
	if e.session.Month != "2024-07" {
		t.Fatalf("month = %q", e.session.Month)
	}
	r, _ = r.update(keyPress("m"))
	if e.session.Month != "" {
		t.Fatalf("m should switch to all time, got %q", e.session.Month)
	}
	r.update(keyPress("left"))
	if e.session.Month != "2024-05" {
		t.Fatalf("left from all time should start at the current month, got %q", e.session.Month)
	}
}

func TestAttendanceView(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.jan, "2024-06-01", 4, store.EntryInput{})
	addEntry(t, e, c, c.eva, "2024-06-30", 8, store.EntryInput{})

	a := newAttendanceModel(e)
	a.setSize(200, 40)
	for _, msg := range collect(a.refresh()) {
		a, _ = a.update(msg)
	}
	if a.att == nil || a.att.Days != 30 || a.att.Total != 12 {
		t.Fatalf("attendance = %+v", a.att)
	}
	out := a.view()
	for _, want := range []string{"Celkem", "Jan Novák", "Eva", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAttendanceAllTimeFallsBackToCurrentMonth(t *testing.T) {
	e := newTestEnv(t)
	seedCrew(t, e)
	e.session.Month = ""
	a := newAttendanceModel(e)
	if a.month() != "2024-06" {
		t.Fatalf("month = %q", a.month())
	}
	a.update(keyPress("left"))
	if e.session.Month != "2024-05" {
		t.Fatalf("session month = %q", e.session.Month)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsSave(t *testing.T) {
	e := newTestEnv(t)
	seedCrew(t, e)
	other, _ := e.store.CreateProject(e.ctx, "Hodonín")

	s := newSettingsModel(e)
	*s.locale = "en"
	*s.undoSeconds = " 10 "
	*s.current = other.ID
	if err := s.saveSettings(); err != nil {
		t.Fatal(err)
	}

	if e.labels.Locale != "en" {
		t.Errorf("locale = %q", e.labels.Locale)
	}
	if e.undo != 10*time.Second {
		t.Errorf("undo = %v", e.undo)
	}
	if e.session.ProjectID != other.ID {
		t.Errorf("project = %q", e.session.ProjectID)
	}

	for _, msg := range collect(s.refresh()) {
		s, _ = s.update(msg)
	}
	s.setSize(100, 40)
	out := s.view()
	for _, want := range []string{"English", "10 s", "Hodonín"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLoadSettingsFallsBackToFirstProject(t *testing.T) {
	e := newTestEnv(t)
	first, _ := e.store.CreateProject(e.ctx, "First")
	e.store.SetSetting(e.ctx, store.SettingCurrentProject, "proj_missing")
	e.loadSettings()
	if e.session.ProjectID != first.ID {
		t.Fatalf("project = %q, want %q", e.session.ProjectID, first.ID)
	}
}

// ============================================================
// Export
// ============================================================

func TestWriteExports(t *testing.T) {
	e := newTestEnv(t)
	c := seedCrew(t, e)
	addEntry(t, e, c, c.eva, "2024-06-01", 5, store.EntryInput{Tables: "3E42"})
	loadEntries(t, newEntriesModel(e))

	tests := []struct {
		kind exportKind
		name string
	}{
		{exportCSV, "SolarTrack_Solar Park Brno_2024-06_Eva.csv"},
		{exportXLSX, "SolarTrack_Solar Park Brno_2024-06.xlsx"},
		{exportPDF, "SolarTrack_Solar Park Brno_2024-06.pdf"},
		{exportBackup, "SolarTrack_backup_2024-06-05.json"},
	}
	for _, tt := range tests {
		path, err := writeExport(e, e.exportJob(tt.kind, "Eva"))
		if err != nil {
			t.Fatalf("export %d: %v", tt.kind, err)
		}
		if filepath.Base(path) != tt.name {
			t.Errorf("export %d wrote %s, want %s", tt.kind, filepath.Base(path), tt.name)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("export %d: empty or missing file: %v", tt.kind, err)
		}
	}

	data, _ := os.ReadFile(filepath.Join(e.cfg.ExportDir, tests[0].name))
	if !strings.Contains(string(data), `"3E42"`) {
		t.Fatalf("CSV should hold the shown entries:\n%s", data)
	}
}

func TestWriteExportNeedsProject(t *testing.T) {
	e := newTestEnv(t)
	if _, err := writeExport(e, e.exportJob(exportCSV, "")); err != errNoProject {
		t.Fatalf("err = %v, want errNoProject", err)
	}
	if _, err := writeExport(e, e.exportJob(exportBackup, "")); err != nil {
		t.Fatalf("backup needs no project: %v", err)
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	e := newTestEnv(t)
	a := NewApp(e.ctx, Deps{Store: e.store, Engine: e.engine, Backup: e.backup, Config: e.cfg})
	a.env.now = e.now
	return a
}

func TestNewApp(t *testing.T) {
	a := newTestApp(t)
	if a.activeView != viewEntries {
		t.Fatalf("expected entries view, got %d", a.activeView)
	}
	if a.isFormActive() {
		t.Fatal("no form should be active")
	}
	if a.env.labels.Locale != "cs" || a.env.undo != 5*time.Second {
		t.Fatalf("settings not applied: %q %v", a.env.labels.Locale, a.env.undo)
	}
}

func TestAppLoadingState(t *testing.T) {
	a := newTestApp(t)
	if a.View() != "Loading..." {
		t.Fatal("view before the first resize should say Loading...")
	}
}

func TestAppTabs(t *testing.T) {
	a := newTestApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	a = m.(App)

	header := a.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Errorf("header missing tab %q", name)
		}
	}

	for i, k := range []string{"1", "2", "3", "4", "5", "6"} {
		m, _ = a.Update(keyPress(k))
		a = m.(App)
		if a.activeView != viewState(i) {
			t.Fatalf("key %s: view %d", k, a.activeView)
		}
		if a.View() == "" {
			t.Fatalf("key %s: empty view", k)
		}
	}

	m, _ = a.Update(keyPress("tab"))
	if m.(App).activeView != viewEntries {
		t.Fatal("tab should wrap to the first view")
	}
}

func TestAppStatusMessage(t *testing.T) {
	a := newTestApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(statusMsg{text: "Entry saved"})
	a = m.(App)
	if !strings.Contains(a.renderFooter(), "Entry saved") {
		t.Fatal("footer should show the status")
	}
}

func TestAppRoutesDataToHiddenViews(t *testing.T) {
	a := newTestApp(t)
	m, _ := a.Update(projectsDataMsg{projects: []store.Project{{ID: "proj_1", Name: "X", Active: true}}})
	a = m.(App)
	if a.activeView != viewEntries || len(a.projects.projects) != 1 {
		t.Fatal("projects data should reach the hidden projects view")
	}
}

func TestAppExportPicker(t *testing.T) {
	a := newTestApp(t)
	m, _ := a.Update(keyPress("e"))
	a = m.(App)
	if !a.exportPicking {
		t.Fatal("e should open the export picker")
	}
	for range exportNames {
		m, _ = a.Update(keyPress("down"))
		a = m.(App)
	}
	if a.exportCursor != len(exportNames)-1 {
		t.Fatalf("cursor = %d", a.exportCursor)
	}

	m, cmd := a.Update(keyPress("enter"))
	a = m.(App)
	if a.exportPicking {
		t.Fatal("enter should close the picker")
	}
	msg := cmd()
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatal(err)
	}
}

func TestAppSearchCapturesKeys(t *testing.T) {
	a := newTestApp(t)
	m, _ := a.Update(keyPress("/"))
	a = m.(App)
	if !a.isFormActive() {
		t.Fatal("search input should capture keys")
	}
	m, _ = a.Update(keyPress("q"))
	if m.(App).entries.search.Value() != "q" {
		t.Fatal("q should be typed into the search, not quit")
	}
}

// ============================================================
// Helpers and keys
// ============================================================

func TestShiftMonth(t *testing.T) {
	tests := []struct {
		month string
		delta int
		want  string
	}{
		{"2024-06", 1, "2024-07"},
		{"2024-01", -1, "2023-12"},
		{"2024-12", 1, "2025-01"},
		{"", 1, ""},
		{"bad", 1, "bad"},
	}
	for _, tt := range tests {
		if got := shiftMonth(tt.month, tt.delta); got != tt.want {
			t.Errorf("shiftMonth(%q, %d) = %q, want %q", tt.month, tt.delta, got, tt.want)
		}
	}
}

func TestFormatting(t *testing.T) {
	if got := formatHours(7.5); got != "7.5h" {
		t.Errorf("formatHours = %q", got)
	}
	if got := formatSigned(3); got != "+3h" {
		t.Errorf("formatSigned(3) = %q", got)
	}
	if got := formatSigned(-1.5); got != "-1.5h" {
		t.Errorf("formatSigned(-1.5) = %q", got)
	}
	if got := formatCountdown(4600 * time.Millisecond); got != "5s" {
		t.Errorf("formatCountdown = %q", got)
	}
	if got := formatCountdown(-time.Second); got != "0s" {
		t.Errorf("negative countdown = %q", got)
	}
	if got := truncate("Jan Novák", 5); got != "Jan …" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("Eva", 5); got != "Eva" {
		t.Errorf("truncate short = %q", got)
	}
}

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
	full := keys.FullHelp()
	if len(full) != 4 {
		t.Fatalf("expected 4 help columns, got %d", len(full))
	}
}
