package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
)

const (
	// MaxApplicationsPerQuarter caps live applications per applicant per quarter.
	MaxApplicationsPerQuarter = 3
	// PassingGrade is the lowest course grade that allows applying.
	PassingGrade = 5.75
)

// CourseFacts answers questions about course offerings and applicants' results.
type CourseFacts interface {
	CourseQuarter(ctx context.Context, courseCode string) (int, error)
	Grade(ctx context.Context, courseCode, username string) (float64, error)
}

// ApplicationLookup is the read side of the application store used by eligibility checks.
type ApplicationLookup interface {
	CountLiveByUserAndQuarter(ctx context.Context, username string, quarter int) (int, error)
	FindByUserAndCourse(ctx context.Context, username, courseCode string) (*models.Application, error)
}

// Eligibility carries the facts gathered while checking, so creation never fetches them twice.
type Eligibility struct {
	Quarter int
	Grade   float64
}

// EligibilityService decides whether a user may apply to TA a course.
type EligibilityService struct {
	courses CourseFacts
	apps    ApplicationLookup
	logger  *zap.Logger
}

// NewEligibilityService constructs the checker.
func NewEligibilityService(courses CourseFacts, apps ApplicationLookup, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{courses: courses, apps: apps, logger: logger}
}

// CanCreate runs the quota, duplicate and grade rules in that order and stops at the first failure.
func (s *EligibilityService) CanCreate(ctx context.Context, courseCode, username string) (*Eligibility, error) {
	quarter, err := s.courses.CourseQuarter(ctx, courseCode)
	if err != nil {
		return nil, communicationError(err, "failed to resolve course quarter")
	}

	count, err := s.apps.CountLiveByUserAndQuarter(ctx, username, quarter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	if count >= MaxApplicationsPerQuarter {
		return nil, appErrors.ErrTooManyApplications
	}

	existing, err := s.apps.FindByUserAndCourse(ctx, username, courseCode)
	switch {
	case err == nil:
		if existing.Status.Live() {
			return nil, appErrors.ErrApplicationExists
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	grade, err := s.courses.Grade(ctx, courseCode, username)
	if err != nil {
		return nil, communicationError(err, "failed to fetch grade")
	}
	if grade < PassingGrade {
		s.logger.Debug("grade below passing", zap.String("username", username), zap.String("courseCode", courseCode), zap.Float64("grade", grade))
		return nil, appErrors.ErrInsufficientGrade
	}

	return &Eligibility{Quarter: quarter, Grade: grade}, nil
}

func communicationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrCommunication.Code, appErrors.ErrCommunication.Status, message)
}
