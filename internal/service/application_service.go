package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ta-hiring-api/internal/dto"
	"github.com/noah-isme/ta-hiring-api/internal/models"
	"github.com/noah-isme/ta-hiring-api/internal/repository"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
)

// ApplicationStore persists applications.
type ApplicationStore interface {
	ApplicationLookup
	Create(ctx context.Context, app *models.Application) error
	ListByCourse(ctx context.Context, courseCode string, status models.ApplicationStatus) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) (bool, error)
}

// EligibilityChecker decides whether an application may be created.
type EligibilityChecker interface {
	CanCreate(ctx context.Context, courseCode, username string) (*Eligibility, error)
}

// RecruitmentChecker reports whether a course still hires TAs.
type RecruitmentChecker interface {
	IsOpenForRecruitment(ctx context.Context, courseCode string) (bool, error)
}

// TARecorder registers a selected applicant with the staffing service.
type TARecorder interface {
	CreateTARecord(ctx context.Context, username, courseCode string) (bool, error)
}

// StatusNotifier informs an applicant that their application changed status.
type StatusNotifier interface {
	NotifyStatus(ctx context.Context, directive models.SelectionDirective) error
}

// NotificationRedeliverer retries a lost notification in the background.
type NotificationRedeliverer interface {
	Redeliver(directive models.SelectionDirective) error
}

// FactsInvalidator drops cached candidate facts that a status change made stale.
type FactsInvalidator interface {
	Forget(ctx context.Context, username string) error
}

// transition describes one status change. check runs before the record is loaded,
// allowed validates the current status, prepare runs just before the write and
// written runs right after it. Nothing after the status write is undone.
//
// Every transition, reject and withdraw included, starts from PENDING only. A
// decided application (APPROVED, REJECTED or REVOKED) is final and any further
// change is refused with INVALID_TRANSITION, or APPLICATION_APPROVED for a
// withdraw of a hired applicant.
type transition struct {
	name    string
	to      models.ApplicationStatus
	check   func(ctx context.Context, s *ApplicationService, courseCode string) error
	allowed func(current models.ApplicationStatus) error
	prepare func(ctx context.Context, s *ApplicationService, app *models.Application) error
	written func(ctx context.Context, s *ApplicationService, app *models.Application)
}

func requirePending(current models.ApplicationStatus) error {
	if current != models.ApplicationStatusPending {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "application is "+string(current)+", expected PENDING")
	}
	return nil
}

var (
	selectTransition = transition{
		name: "select",
		to:   models.ApplicationStatusApproved,
		check: func(ctx context.Context, s *ApplicationService, courseCode string) error {
			open, err := s.recruitment.IsOpenForRecruitment(ctx, courseCode)
			if err != nil {
				return communicationError(err, "failed to check course recruitment")
			}
			if !open {
				return appErrors.ErrCourseNotRecruiting
			}
			return nil
		},
		allowed: requirePending,
		prepare: func(ctx context.Context, s *ApplicationService, app *models.Application) error {
			saved, err := s.tas.CreateTARecord(ctx, app.Username, app.CourseCode)
			if err != nil {
				return communicationError(err, "failed to create TA record")
			}
			if !saved {
				return appErrors.ErrTANotSaved
			}
			return nil
		},
		written: func(ctx context.Context, s *ApplicationService, app *models.Application) {
			// The new TA record counts towards the applicant's experience.
			if s.facts == nil {
				return
			}
			if err := s.facts.Forget(ctx, app.Username); err != nil {
				s.logger.Warn("cached candidate facts not invalidated",
					zap.String("username", app.Username),
					zap.Error(err))
			}
		},
	}

	rejectTransition = transition{
		name:    "reject",
		to:      models.ApplicationStatusRejected,
		allowed: requirePending,
	}

	withdrawTransition = transition{
		name: "withdraw",
		to:   models.ApplicationStatusRevoked,
		allowed: func(current models.ApplicationStatus) error {
			if current == models.ApplicationStatusApproved {
				return appErrors.ErrApplicationApproved
			}
			return requirePending(current)
		},
	}
)

// ApplicationService drives the application lifecycle.
type ApplicationService struct {
	store       ApplicationStore
	eligibility EligibilityChecker
	recruitment RecruitmentChecker
	tas         TARecorder
	notifier    StatusNotifier
	redelivery  NotificationRedeliverer
	facts       FactsInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewApplicationService constructs the lifecycle orchestrator.
func NewApplicationService(
	store ApplicationStore,
	eligibility EligibilityChecker,
	recruitment RecruitmentChecker,
	tas TARecorder,
	notifier StatusNotifier,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		store:       store,
		eligibility: eligibility,
		recruitment: recruitment,
		tas:         tas,
		notifier:    notifier,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// SetRedeliverer enables background retries for notifications lost after a status write.
func (s *ApplicationService) SetRedeliverer(r NotificationRedeliverer) {
	s.redelivery = r
}

// SetFactsInvalidator lets selections evict the applicant's cached facts.
func (s *ApplicationService) SetFactsInvalidator(f FactsInvalidator) {
	s.facts = f
}

// Create submits a PENDING application using the quarter and grade gathered during the eligibility check.
func (s *ApplicationService) Create(ctx context.Context, req dto.CreateApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	eligibility, err := s.eligibility.CanCreate(ctx, req.CourseCode, req.Username)
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		CourseCode: req.CourseCode,
		Username:   req.Username,
		Quarter:    eligibility.Quarter,
		Grade:      eligibility.Grade,
		Status:     models.ApplicationStatusPending,
	}
	if err := s.store.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			return nil, appErrors.ErrApplicationExists
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.logger.Info("application created",
		zap.String("id", app.ID),
		zap.String("username", app.Username),
		zap.String("courseCode", app.CourseCode),
		zap.Int("quarter", app.Quarter))
	return app, nil
}

// Get returns the applicant's current application for a course.
func (s *ApplicationService) Get(ctx context.Context, courseCode, username string) (*models.Application, error) {
	return s.load(ctx, courseCode, username)
}

// ListOpen returns the course's PENDING applications in submission order.
func (s *ApplicationService) ListOpen(ctx context.Context, courseCode string) ([]models.Application, error) {
	apps, err := s.store.ListByCourse(ctx, courseCode, models.ApplicationStatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, nil
}

// Select hires the applicant: the course must still recruit and the staffing service must accept the TA record.
func (s *ApplicationService) Select(ctx context.Context, courseCode, username string) (*models.Application, error) {
	return s.apply(ctx, selectTransition, courseCode, username)
}

// Reject turns down a pending application.
func (s *ApplicationService) Reject(ctx context.Context, courseCode, username string) (*models.Application, error) {
	return s.apply(ctx, rejectTransition, courseCode, username)
}

// Withdraw revokes the applicant's own pending application.
func (s *ApplicationService) Withdraw(ctx context.Context, courseCode, username string) (*models.Application, error) {
	return s.apply(ctx, withdrawTransition, courseCode, username)
}

func (s *ApplicationService) load(ctx context.Context, courseCode, username string) (*models.Application, error) {
	app, err := s.store.FindByUserAndCourse(ctx, username, courseCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// apply executes t. Every failure before the status write leaves the record untouched;
// a notification failure after it is reported without undoing the write.
func (s *ApplicationService) apply(ctx context.Context, t transition, courseCode, username string) (*models.Application, error) {
	if t.check != nil {
		if err := t.check(ctx, s, courseCode); err != nil {
			return nil, err
		}
	}

	app, err := s.load(ctx, courseCode, username)
	if err != nil {
		return nil, err
	}
	from := app.Status
	if err := t.allowed(from); err != nil {
		return nil, err
	}

	if t.prepare != nil {
		if err := t.prepare(ctx, s, app); err != nil {
			return nil, err
		}
	}

	written, err := s.store.UpdateStatus(ctx, app.ID, from, t.to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}
	if !written {
		return nil, appErrors.ErrStaleApplication
	}
	app.Status = t.to
	s.metrics.RecordTransition(t.name, t.to)
	if t.written != nil {
		t.written(ctx, s, app)
	}

	fields := []zap.Field{
		zap.String("transition", t.name),
		zap.String("id", app.ID),
		zap.String("username", app.Username),
		zap.String("courseCode", app.CourseCode),
		zap.String("from", string(from)),
		zap.String("to", string(t.to)),
	}

	directive := app.Directive()
	if err := s.notifier.NotifyStatus(ctx, directive); err != nil {
		s.metrics.RecordNotificationFailure()
		s.logger.Error("status written but notification failed", append(fields, zap.Error(err))...)
		s.scheduleRedelivery(directive)
		return nil, appErrors.Wrap(err, appErrors.ErrNotificationFailed.Code, appErrors.ErrNotificationFailed.Status, appErrors.ErrNotificationFailed.Message)
	}

	s.logger.Info("application status changed", fields...)
	return app, nil
}

func (s *ApplicationService) scheduleRedelivery(directive models.SelectionDirective) {
	if s.redelivery == nil {
		return
	}
	if err := s.redelivery.Redeliver(directive); err != nil {
		s.logger.Warn("notification redelivery not scheduled",
			zap.String("username", directive.Username),
			zap.String("courseCode", directive.CourseCode),
			zap.Error(err))
	}
}
