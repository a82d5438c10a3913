package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/ta-hiring-api/internal/models"
	"github.com/noah-isme/ta-hiring-api/internal/repository"
)

var errRemoteDown = errors.New("connection refused")

type fakeStore struct {
	mu      sync.Mutex
	apps    []*models.Application
	seq     int
	updates int
	stale   bool
	failOn  string
}

func (s *fakeStore) seed(username, courseCode string, quarter int, grade float64, status models.ApplicationStatus) *models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	app := &models.Application{
		ID:         fmt.Sprintf("app-%d", s.seq),
		Username:   username,
		CourseCode: courseCode,
		Quarter:    quarter,
		Grade:      grade,
		Status:     status,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, s.seq, 0, time.UTC),
	}
	s.apps = append(s.apps, app)
	return app
}

func (s *fakeStore) statusOf(id string) models.ApplicationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.apps {
		if app.ID == id {
			return app.Status
		}
	}
	return ""
}

func (s *fakeStore) Create(ctx context.Context, app *models.Application) error {
	if s.failOn == "create" {
		return errors.New("db down")
	}
	s.mu.Lock()
	for _, existing := range s.apps {
		if existing.Username == app.Username && existing.CourseCode == app.CourseCode && existing.Status.Live() {
			s.mu.Unlock()
			return repository.ErrDuplicateApplication
		}
	}
	s.mu.Unlock()
	created := s.seed(app.Username, app.CourseCode, app.Quarter, app.Grade, app.Status)
	app.ID = created.ID
	app.CreatedAt = created.CreatedAt
	return nil
}

func (s *fakeStore) FindByUserAndCourse(ctx context.Context, username, courseCode string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Application
	for _, app := range s.apps {
		if app.Username != username || app.CourseCode != courseCode {
			continue
		}
		if found == nil || (app.Status.Live() && !found.Status.Live()) || app.Status.Live() == found.Status.Live() {
			found = app
		}
	}
	if found == nil {
		return nil, sql.ErrNoRows
	}
	copied := *found
	return &copied, nil
}

func (s *fakeStore) CountLiveByUserAndQuarter(ctx context.Context, username string, quarter int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, app := range s.apps {
		if app.Username == username && app.Quarter == quarter && app.Status.Live() {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) ListByCourse(ctx context.Context, courseCode string, status models.ApplicationStatus) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Application{}
	for _, app := range s.apps {
		if app.CourseCode == courseCode && app.Status == status {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale {
		return false, nil
	}
	for _, app := range s.apps {
		if app.ID == id && app.Status == from {
			app.Status = to
			s.updates++
			return true, nil
		}
	}
	return false, nil
}

type fakeCourses struct {
	mu          sync.Mutex
	quarter     int
	grades      map[string]float64
	open        bool
	quarterErr  error
	gradeErr    error
	openErr     error
	gradeCalls  int
	openChecked int
}

func (c *fakeCourses) CourseQuarter(ctx context.Context, courseCode string) (int, error) {
	if c.quarterErr != nil {
		return 0, c.quarterErr
	}
	return c.quarter, nil
}

func (c *fakeCourses) Grade(ctx context.Context, courseCode, username string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gradeCalls++
	if c.gradeErr != nil {
		return 0, c.gradeErr
	}
	return c.grades[username], nil
}

func (c *fakeCourses) IsOpenForRecruitment(ctx context.Context, courseCode string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openChecked++
	if c.openErr != nil {
		return false, c.openErr
	}
	return c.open, nil
}

type fakeStaffing struct {
	mu         sync.Mutex
	saved      bool
	createErr  error
	taRecords  []string
	ratings    map[string][]int
	experience map[string]int
	broken     map[string]bool
	factCalls  int
}

func (s *fakeStaffing) CreateTARecord(ctx context.Context, username, courseCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return false, s.createErr
	}
	if s.saved {
		s.taRecords = append(s.taRecords, username+"@"+courseCode)
	}
	return s.saved, nil
}

func (s *fakeStaffing) Ratings(ctx context.Context, username string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factCalls++
	if s.broken[username] {
		return nil, errRemoteDown
	}
	return s.ratings[username], nil
}

func (s *fakeStaffing) ExperienceCount(ctx context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factCalls++
	if s.broken[username] {
		return 0, errRemoteDown
	}
	return s.experience[username], nil
}

type fakeNotifier struct {
	mu         sync.Mutex
	directives []models.SelectionDirective
	err        error
}

func (n *fakeNotifier) NotifyStatus(ctx context.Context, directive models.SelectionDirective) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.directives = append(n.directives, directive)
	return nil
}

func (n *fakeNotifier) sent() []models.SelectionDirective {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.SelectionDirective(nil), n.directives...)
}

type fakeRedeliverer struct {
	queued []models.SelectionDirective
}

func (r *fakeRedeliverer) Redeliver(directive models.SelectionDirective) error {
	r.queued = append(r.queued, directive)
	return nil
}

type fixture struct {
	store    *fakeStore
	courses  *fakeCourses
	staffing *fakeStaffing
	notifier *fakeNotifier
	metrics  *MetricsService
	svc      *ApplicationService
}

func newFixture() *fixture {
	f := &fixture{
		store:    &fakeStore{},
		courses:  &fakeCourses{quarter: 2, grades: map[string]float64{}, open: true},
		staffing: &fakeStaffing{saved: true, ratings: map[string][]int{}, experience: map[string]int{}, broken: map[string]bool{}},
		notifier: &fakeNotifier{},
		metrics:  NewMetricsService(),
	}
	eligibility := NewEligibilityService(f.courses, f.store, nil)
	f.svc = NewApplicationService(f.store, eligibility, f.courses, f.staffing, f.notifier, f.metrics, nil, nil)
	return f
}
