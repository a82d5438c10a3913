package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ta-hiring-api/internal/dto"
	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
	"github.com/noah-isme/ta-hiring-api/pkg/response"
)

type applicationService interface {
	Create(ctx context.Context, req dto.CreateApplicationRequest) (*models.Application, error)
	Get(ctx context.Context, courseCode, username string) (*models.Application, error)
	ListOpen(ctx context.Context, courseCode string) ([]models.Application, error)
	Select(ctx context.Context, courseCode, username string) (*models.Application, error)
	Reject(ctx context.Context, courseCode, username string) (*models.Application, error)
	Withdraw(ctx context.Context, courseCode, username string) (*models.Application, error)
}

// ApplicationHandler exposes the TA application lifecycle.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler builds a new handler.
func NewApplicationHandler(service applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Create godoc
// @Summary Apply to TA a course
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	username, err := currentUsername(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	req.Username = username
	app, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Get godoc
// @Summary Get the caller's application for a course
// @Tags Applications
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{courseCode} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	username, err := currentUsername(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	app, err := h.service.Get(c.Request.Context(), c.Param("courseCode"), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// Withdraw godoc
// @Summary Withdraw the caller's pending application
// @Tags Applications
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{courseCode}/withdraw [post]
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	username, err := currentUsername(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	app, err := h.service.Withdraw(c.Request.Context(), c.Param("courseCode"), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// ListOpen godoc
// @Summary List pending applications for a course
// @Tags Applications
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseCode}/applications [get]
func (h *ApplicationHandler) ListOpen(c *gin.Context) {
	courseCode := c.Param("courseCode")
	apps, err := h.service.ListOpen(c.Request.Context(), courseCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, map[string]interface{}{"courseCode": courseCode, "total": len(apps)})
}

// Select godoc
// @Summary Hire an applicant as TA
// @Tags Applications
// @Produce json
// @Param courseCode path string true "Course code"
// @Param username path string true "Applicant username"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /courses/{courseCode}/applications/{username}/select [post]
func (h *ApplicationHandler) Select(c *gin.Context) {
	app, err := h.service.Select(c.Request.Context(), c.Param("courseCode"), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// Reject godoc
// @Summary Reject a pending application
// @Tags Applications
// @Produce json
// @Param courseCode path string true "Course code"
// @Param username path string true "Applicant username"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{courseCode}/applications/{username}/reject [post]
func (h *ApplicationHandler) Reject(c *gin.Context) {
	app, err := h.service.Reject(c.Request.Context(), c.Param("courseCode"), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}
