package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ta-hiring-api/internal/dto"
	"github.com/noah-isme/ta-hiring-api/internal/models"
	"github.com/noah-isme/ta-hiring-api/internal/service"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
	"github.com/noah-isme/ta-hiring-api/pkg/export"
	"github.com/noah-isme/ta-hiring-api/pkg/response"
)

type recommendationService interface {
	Recommend(ctx context.Context, courseCode string, criteria []models.Criterion) ([]models.Application, error)
	FilterRecommend(ctx context.Context, courseCode string, req *dto.FilterThresholdsRequest) ([]models.Application, error)
	AutoReject(ctx context.Context, courseCode string, req *dto.FilterThresholdsRequest) (*dto.AutoRejectResult, error)
	Export(ctx context.Context, courseCode string, criteria []models.Criterion, format export.Format) (*service.ExportFile, error)
}

// RecommendationHandler serves candidate ranking and filtering to lecturers.
type RecommendationHandler struct {
	service recommendationService
}

// NewRecommendationHandler builds a new handler.
func NewRecommendationHandler(service recommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// Recommend godoc
// @Summary Rank open applications
// @Tags Recommendations
// @Produce json
// @Param courseCode path string true "Course code"
// @Param criteria query string false "Comma-separated criteria applied in order: GRADE, EXPERIENCE, RATING"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{courseCode}/recommendations [get]
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	criteria, err := service.ParseCriteria(c.Query("criteria"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ranked, err := h.service.Recommend(c.Request.Context(), c.Param("courseCode"), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranked, map[string]interface{}{"criteria": criteria, "total": len(ranked)})
}

// Filter godoc
// @Summary Filter open applications by minimum thresholds
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body dto.FilterThresholdsRequest true "Thresholds"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{courseCode}/recommendations/filter [post]
func (h *RecommendationHandler) Filter(c *gin.Context) {
	req, ok := bindThresholds(c)
	if !ok {
		return
	}
	kept, err := h.service.FilterRecommend(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, kept, map[string]interface{}{"total": len(kept)})
}

// AutoReject godoc
// @Summary Reject every open application that fails the thresholds
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body dto.FilterThresholdsRequest true "Thresholds"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /courses/{courseCode}/recommendations/auto-reject [post]
func (h *RecommendationHandler) AutoReject(c *gin.Context) {
	req, ok := bindThresholds(c)
	if !ok {
		return
	}
	result, err := h.service.AutoReject(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Download the ranked candidate list
// @Tags Recommendations
// @Produce text/csv
// @Produce application/pdf
// @Param courseCode path string true "Course code"
// @Param criteria query string false "Comma-separated criteria"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /courses/{courseCode}/recommendations/export [get]
func (h *RecommendationHandler) Export(c *gin.Context) {
	criteria, err := service.ParseCriteria(c.Query("criteria"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("courseCode"), criteria, export.Format(c.DefaultQuery("format", string(export.FormatCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// bindThresholds decodes the request body. An empty or null body yields nil, which the service rejects.
func bindThresholds(c *gin.Context) (*dto.FilterThresholdsRequest, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable request body"))
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}
	var req dto.FilterThresholdsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "thresholds must be an object of text fields"))
		return nil, false
	}
	return &req, true
}
