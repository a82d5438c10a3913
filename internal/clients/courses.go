package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CourseClient queries the courses service.
type CourseClient struct {
	base
}

// NewCourseClient constructs a courses-service client.
func NewCourseClient(opts Options) *CourseClient {
	return &CourseClient{base: newBase("courses", opts)}
}

type quarterResponse struct {
	Quarter int `json:"quarter"`
}

type gradeResponse struct {
	Grade *float64 `json:"grade"`
}

type recruitmentResponse struct {
	Open bool `json:"open"`
}

// CourseQuarter returns the academic quarter the course is held in.
func (c *CourseClient) CourseQuarter(ctx context.Context, courseCode string) (int, error) {
	var out quarterResponse
	path := fmt.Sprintf("/courses/%s/quarter", url.PathEscape(courseCode))
	if err := c.call(ctx, "course_quarter", http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Quarter, nil
}

// Grade returns the grade username obtained for the course.
func (c *CourseClient) Grade(ctx context.Context, courseCode, username string) (float64, error) {
	var out gradeResponse
	path := fmt.Sprintf("/courses/%s/grades/%s", url.PathEscape(courseCode), url.PathEscape(username))
	if err := c.call(ctx, "grade", http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	if out.Grade == nil {
		return 0, fmt.Errorf("courses grade: response without grade: %w", ErrUnavailable)
	}
	return *out.Grade, nil
}

// IsOpenForRecruitment reports whether the course still hires TAs.
func (c *CourseClient) IsOpenForRecruitment(ctx context.Context, courseCode string) (bool, error) {
	var out recruitmentResponse
	path := fmt.Sprintf("/courses/%s/recruitment", url.PathEscape(courseCode))
	if err := c.call(ctx, "recruitment_open", http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Open, nil
}
