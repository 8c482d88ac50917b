package report

import (
	"context"
	"slices"
	"sync"

	"github.com/sadopc/solartrack/internal/store"
)

// Session carries the project and month a user is looking at, and remembers
// the last search so it can be exported. ProjectID and Month belong to the
// goroutine that drives the session; the remembered results may be read and
// written from any goroutine.
type Session struct {
	engine    *Engine
	ProjectID string
	Month     string

	mu   sync.Mutex
	last []store.WorkEntry
}

func NewSession(engine *Engine, projectID, month string) *Session {
	return &Session{engine: engine, ProjectID: projectID, Month: month}
}

// SetProject switches the session to another project and forgets the last
// search.
func (s *Session) SetProject(projectID string) {
	if s.ProjectID != projectID {
		s.Remember(nil)
	}
	s.ProjectID = projectID
}

func (s *Session) Stats(ctx context.Context) (Stats, error) {
	return s.engine.Stats(ctx, s.ProjectID, s.Month)
}

func (s *Session) EmployeeStats(ctx context.Context) ([]EmployeeStat, error) {
	return s.engine.EmployeeStats(ctx, s.ProjectID, s.Month)
}

func (s *Session) Attendance(ctx context.Context) (*Attendance, error) {
	return s.engine.Attendance(ctx, s.ProjectID, s.Month)
}

func (s *Session) Daily(ctx context.Context) ([]DayTotal, error) {
	return s.engine.Daily(ctx, s.ProjectID, s.Month)
}

func (s *Session) WeekComparison(ctx context.Context) (WeekComparison, error) {
	return s.engine.WeekComparison(ctx, s.ProjectID)
}

func (s *Session) Search(ctx context.Context, q Query) ([]store.WorkEntry, error) {
	res, err := s.engine.Search(ctx, s.ProjectID, q)
	if err != nil {
		return nil, err
	}
	s.Remember(res)
	return slices.Clone(res), nil
}

// Remember replaces the remembered search result with a copy of res.
func (s *Session) Remember(res []store.WorkEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = slices.Clone(res)
}

// LastResults returns a copy of the most recent search result.
func (s *Session) LastResults() []store.WorkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.last)
}
