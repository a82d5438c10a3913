package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ta-hiring-api/internal/models"
)

// ErrDuplicateApplication is returned when the live (username, course) index rejects an insert.
var ErrDuplicateApplication = errors.New("live application already exists for user and course")

const uniqueViolation = "23505"

const applicationColumns = `id, course_code, username, quarter, grade, status, created_at, updated_at`

// ApplicationRepository handles persistence of TA applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create persists a new application, assigning its identifier and timestamps.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = app.CreatedAt
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	const query = `INSERT INTO applications (id, course_code, username, quarter, grade, status, created_at, updated_at)
        VALUES (:id, :course_code, :username, :quarter, :grade, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByUserAndCourse returns the application for the pair, preferring the live one
// over revoked history. sql.ErrNoRows is returned untouched when none exists.
func (r *ApplicationRepository) FindByUserAndCourse(ctx context.Context, username, courseCode string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
        WHERE username = $1 AND course_code = $2
        ORDER BY (status = $3), created_at DESC
        LIMIT 1`
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, username, courseCode, models.ApplicationStatusRevoked); err != nil {
		return nil, err
	}
	return &app, nil
}

// CountLiveByUserAndQuarter counts the user's non-revoked applications in a quarter.
func (r *ApplicationRepository) CountLiveByUserAndQuarter(ctx context.Context, username string, quarter int) (int, error) {
	const query = `SELECT COUNT(*) FROM applications WHERE username = $1 AND quarter = $2 AND status <> $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, username, quarter, models.ApplicationStatusRevoked); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}

// ListByCourse returns the course's applications with the given status in submission order.
func (r *ApplicationRepository) ListByCourse(ctx context.Context, courseCode string, status models.ApplicationStatus) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications
        WHERE course_code = $1 AND status = $2
        ORDER BY created_at ASC, id ASC`
	apps := []models.Application{}
	if err := r.db.SelectContext(ctx, &apps, query, courseCode, status); err != nil {
		return nil, fmt.Errorf("list course applications: %w", err)
	}
	return apps, nil
}

// UpdateStatus moves an application from one status to another. It reports false
// without writing when the stored status no longer equals from.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) (bool, error) {
	if !to.Valid() {
		return false, fmt.Errorf("update application status: unknown status %q", to)
	}
	const query = `UPDATE applications SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}
	return affected == 1, nil
}
