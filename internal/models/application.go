package models

import "time"

// ApplicationStatus represents the lifecycle of a TA application.
type ApplicationStatus string

// Possible application statuses.
const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
	ApplicationStatusRevoked  ApplicationStatus = "REVOKED"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusRevoked:
		return true
	}
	return false
}

// Live reports whether the status still occupies the applicant's slot for a course.
func (s ApplicationStatus) Live() bool {
	return s != ApplicationStatusRevoked
}

// Application is one user's request to TA one course offering.
// Quarter and Grade are captured at submission and never change afterwards.
type Application struct {
	ID         string            `db:"id" json:"id"`
	CourseCode string            `db:"course_code" json:"courseCode"`
	Username   string            `db:"username" json:"username"`
	Quarter    int               `db:"quarter" json:"quarter"`
	Grade      float64           `db:"grade" json:"grade"`
	Status     ApplicationStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updatedAt"`
}

// Directive builds the status-change directive for the application's current status.
func (a Application) Directive() SelectionDirective {
	return SelectionDirective{Username: a.Username, CourseCode: a.CourseCode, Status: a.Status}
}

// SelectionDirective requests (or reports) a status change for an applicant on a course.
// It is never persisted; the notifier consumes it once per transition.
type SelectionDirective struct {
	Username   string            `json:"username"`
	CourseCode string            `json:"courseCode"`
	Status     ApplicationStatus `json:"status"`
}
