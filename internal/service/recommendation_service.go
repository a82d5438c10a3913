package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ta-hiring-api/internal/dto"
	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
	"github.com/noah-isme/ta-hiring-api/pkg/export"
)

// ApplicationWorkflow is the part of the lifecycle the recommendation endpoints drive.
type ApplicationWorkflow interface {
	ListOpen(ctx context.Context, courseCode string) ([]models.Application, error)
	Reject(ctx context.Context, courseCode, username string) (*models.Application, error)
}

// Ranker orders candidates.
type Ranker interface {
	Rank(ctx context.Context, apps []models.Application, criteria []models.Criterion) ([]models.Application, error)
}

// CandidateFilter narrows candidates.
type CandidateFilter interface {
	Filter(ctx context.Context, apps []models.Application, th Thresholds) ([]models.Application, error)
}

// Renderer turns a dataset into a downloadable document.
type Renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered candidate list ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var exportHeaders = []string{"Rank", "Username", "Grade", "Quarter", "Status", "Applied At"}

// RecommendationService serves lecturers' ranking, filtering and bulk rejection of open applications.
type RecommendationService struct {
	apps      ApplicationWorkflow
	ranker    Ranker
	filter    CandidateFilter
	renderers map[export.Format]Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecommendationService constructs the service. renderers may be nil when export is not offered.
func NewRecommendationService(apps ApplicationWorkflow, ranker Ranker, filter CandidateFilter, renderers map[export.Format]Renderer, logger *zap.Logger) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{
		apps:      apps,
		ranker:    ranker,
		filter:    filter,
		renderers: renderers,
		logger:    logger,
		now:       time.Now,
	}
}

// Recommend returns the course's open applications ranked by criteria.
func (s *RecommendationService) Recommend(ctx context.Context, courseCode string, criteria []models.Criterion) ([]models.Application, error) {
	open, err := s.apps.ListOpen(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, open, criteria)
}

// FilterRecommend returns the course's open applications that meet every threshold.
// Thresholds are parsed before any remote lookup.
func (s *RecommendationService) FilterRecommend(ctx context.Context, courseCode string, req *dto.FilterThresholdsRequest) ([]models.Application, error) {
	th, err := ParseThresholds(req)
	if err != nil {
		return nil, err
	}
	open, err := s.apps.ListOpen(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	return s.runFilter(ctx, open, th)
}

// AutoReject rejects every open application that fails the thresholds, in submission order.
// It stops at the first failed rejection and returns that error; rejections already written stay.
func (s *RecommendationService) AutoReject(ctx context.Context, courseCode string, req *dto.FilterThresholdsRequest) (*dto.AutoRejectResult, error) {
	th, err := ParseThresholds(req)
	if err != nil {
		return nil, err
	}
	open, err := s.apps.ListOpen(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	kept, err := s.runFilter(ctx, open, th)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]struct{}, len(kept))
	result := &dto.AutoRejectResult{CourseCode: courseCode, Kept: make([]string, 0, len(kept)), Rejected: []string{}}
	for _, app := range kept {
		keep[app.ID] = struct{}{}
		result.Kept = append(result.Kept, app.Username)
	}

	for _, app := range open {
		if _, ok := keep[app.ID]; ok {
			continue
		}
		if _, err := s.apps.Reject(ctx, courseCode, app.Username); err != nil {
			s.logger.Warn("auto-reject stopped",
				zap.String("courseCode", courseCode),
				zap.String("username", app.Username),
				zap.Strings("rejected", result.Rejected),
				zap.Error(err))
			return nil, err
		}
		result.Rejected = append(result.Rejected, app.Username)
	}

	s.logger.Info("auto-reject completed",
		zap.String("courseCode", courseCode),
		zap.Int("kept", len(result.Kept)),
		zap.Int("rejected", len(result.Rejected)))
	return result, nil
}

// Export renders the ranked open applications in the requested format.
func (s *RecommendationService) Export(ctx context.Context, courseCode string, criteria []models.Criterion, format export.Format) (*ExportFile, error) {
	format = export.Format(strings.ToLower(string(format)))
	if format == "" {
		format = export.FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	ranked, err := s.Recommend(ctx, courseCode, criteria)
	if err != nil {
		return nil, err
	}

	generated := s.now().UTC()
	data := export.Dataset{
		Title:   fmt.Sprintf("TA candidates for %s", courseCode),
		Headers: exportHeaders,
		Rows:    make([]map[string]string, 0, len(ranked)),
	}
	for i, app := range ranked {
		data.Rows = append(data.Rows, map[string]string{
			"Rank":       strconv.Itoa(i + 1),
			"Username":   app.Username,
			"Grade":      strconv.FormatFloat(app.Grade, 'f', 2, 64),
			"Quarter":    strconv.Itoa(app.Quarter),
			"Status":     string(app.Status),
			"Applied At": app.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("candidates-%s-%s.%s", strings.ToLower(courseCode), generated.Format("20060102-150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *RecommendationService) rank(ctx context.Context, apps []models.Application, criteria []models.Criterion) ([]models.Application, error) {
	ranked, err := s.ranker.Rank(ctx, apps, criteria)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrValidation.Code) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank applications")
	}
	return ranked, nil
}

func (s *RecommendationService) runFilter(ctx context.Context, apps []models.Application, th Thresholds) ([]models.Application, error) {
	kept, err := s.filter.Filter(ctx, apps, th)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to filter applications")
	}
	return kept, nil
}
