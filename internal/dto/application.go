package dto

// CreateApplicationRequest submits an application for the authenticated applicant.
type CreateApplicationRequest struct {
	CourseCode string `json:"courseCode" validate:"required,max=32"`
	Username   string `json:"-" validate:"required"`
}
