package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
)

type criterionKey func(ctx context.Context, facts CandidateFacts, app models.Application) (float64, error)

var criterionKeys = map[models.Criterion]criterionKey{
	models.CriterionGrade: func(_ context.Context, _ CandidateFacts, app models.Application) (float64, error) {
		return app.Grade, nil
	},
	models.CriterionExperience: func(ctx context.Context, facts CandidateFacts, app models.Application) (float64, error) {
		count, err := facts.ExperienceCount(ctx, app.Username)
		return float64(count), err
	},
	models.CriterionRating: func(ctx context.Context, facts CandidateFacts, app models.Application) (float64, error) {
		ratings, err := facts.Ratings(ctx, app.Username)
		return mean(ratings), err
	},
}

// RankingService orders candidates by lecturer-chosen criteria.
type RankingService struct {
	facts  CandidateFacts
	fanOut int
	logger *zap.Logger
}

// NewRankingService constructs the ranking pipeline.
func NewRankingService(facts CandidateFacts, fanOut int, logger *zap.Logger) *RankingService {
	if fanOut <= 0 {
		fanOut = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{facts: facts, fanOut: fanOut, logger: logger}
}

// ParseCriteria parses a comma-separated criterion list, reporting unknown names as validation errors.
func ParseCriteria(raw string) ([]models.Criterion, error) {
	criteria, err := models.ParseCriteria(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return criteria, nil
}

// Rank re-sorts apps once per criterion, highest key first. Each sort is stable,
// so the last criterion dominates and earlier ones break its ties. A fact that
// cannot be fetched counts as zero. The input slice is not modified.
func (s *RankingService) Rank(ctx context.Context, apps []models.Application, criteria []models.Criterion) ([]models.Application, error) {
	ranked := append([]models.Application{}, apps...)
	for _, criterion := range criteria {
		key, ok := criterionKeys[criterion]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown criterion "+string(criterion))
		}
		keys := s.keys(ctx, criterion, key, ranked)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sort.Stable(byKeyDesc{apps: ranked, keys: keys})
	}
	return ranked, nil
}

func (s *RankingService) keys(ctx context.Context, criterion models.Criterion, key criterionKey, apps []models.Application) []float64 {
	keys := make([]float64, len(apps))
	forEachBounded(ctx, s.fanOut, len(apps), func(ctx context.Context, i int) {
		v, err := key(ctx, s.facts, apps[i])
		if err != nil {
			s.logger.Warn("ranking applicant with zero key after failed lookup",
				zap.String("criterion", string(criterion)),
				zap.String("username", apps[i].Username),
				zap.String("courseCode", apps[i].CourseCode),
				zap.Error(err))
			return
		}
		keys[i] = v
	})
	return keys
}

// byKeyDesc sorts applications and their keys together.
type byKeyDesc struct {
	apps []models.Application
	keys []float64
}

func (b byKeyDesc) Len() int           { return len(b.apps) }
func (b byKeyDesc) Less(i, j int) bool { return b.keys[i] > b.keys[j] }
func (b byKeyDesc) Swap(i, j int) {
	b.apps[i], b.apps[j] = b.apps[j], b.apps[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
