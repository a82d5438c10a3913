package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// StaffingClient talks to the service that keeps TA contracts, ratings and past experience.
type StaffingClient struct {
	base
}

// NewStaffingClient constructs a staffing-service client.
func NewStaffingClient(opts Options) *StaffingClient {
	return &StaffingClient{base: newBase("staffing", opts)}
}

type createTARequest struct {
	Username   string `json:"username"`
	CourseCode string `json:"courseCode"`
}

type createTAResponse struct {
	Saved bool `json:"saved"`
}

type ratingsResponse struct {
	Ratings []int `json:"ratings"`
}

type experienceResponse struct {
	Courses []string `json:"courses"`
}

// CreateTARecord asks the staffing service to register username as TA of the course.
// The boolean is the service's acceptance; an error means it could not be asked.
func (c *StaffingClient) CreateTARecord(ctx context.Context, username, courseCode string) (bool, error) {
	var out createTAResponse
	req := createTARequest{Username: username, CourseCode: courseCode}
	if err := c.call(ctx, "create_ta", http.MethodPost, "/tas", req, &out); err != nil {
		return false, err
	}
	return out.Saved, nil
}

// Ratings returns every rating username has received as a TA.
func (c *StaffingClient) Ratings(ctx context.Context, username string) ([]int, error) {
	var out ratingsResponse
	path := fmt.Sprintf("/ratings/%s", url.PathEscape(username))
	if err := c.call(ctx, "ratings", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Ratings == nil {
		return []int{}, nil
	}
	return out.Ratings, nil
}

// ExperienceCount returns how many courses username has previously TA'd.
func (c *StaffingClient) ExperienceCount(ctx context.Context, username string) (int, error) {
	var out experienceResponse
	path := fmt.Sprintf("/experiences/%s", url.PathEscape(username))
	if err := c.call(ctx, "experience", http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return len(out.Courses), nil
}
