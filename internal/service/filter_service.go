package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/ta-hiring-api/internal/dto"
	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
)

// CandidateFacts supplies per-applicant history owned by the staffing service.
type CandidateFacts interface {
	Ratings(ctx context.Context, username string) ([]int, error)
	ExperienceCount(ctx context.Context, username string) (int, error)
}

// Thresholds holds the parsed minimums. A nil field leaves that dimension unconstrained.
type Thresholds struct {
	MinGrade         *float64
	MinRating        *float64
	MinAverageRating *float64
	MinExperience    *float64
}

// ParseThresholds converts the textual request into Thresholds.
func ParseThresholds(req *dto.FilterThresholdsRequest) (Thresholds, error) {
	if req == nil {
		return Thresholds{}, appErrors.Clone(appErrors.ErrValidation, "filter thresholds are required")
	}
	var (
		th  Thresholds
		err error
	)
	fields := []struct {
		name string
		raw  string
		dst  **float64
	}{
		{"minGrade", req.MinGrade, &th.MinGrade},
		{"minRating", req.MinRating, &th.MinRating},
		{"minAverageRating", req.MinAverageRating, &th.MinAverageRating},
		{"minExperience", req.MinExperience, &th.MinExperience},
	}
	for _, f := range fields {
		if *f.dst, err = parseThreshold(f.name, f.raw); err != nil {
			return Thresholds{}, err
		}
	}
	return th, nil
}

func parseThreshold(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, name+" must be a number")
	}
	// NaN fails every comparison and would empty the grade stage.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be a finite number")
	}
	return &v, nil
}

type filterStage struct {
	name  string
	floor *float64
	local bool
	keep  func(ctx context.Context, facts CandidateFacts, app models.Application, floor float64) (bool, error)
}

func (s *FilterService) stages(th Thresholds) []filterStage {
	return []filterStage{
		{name: "grade", floor: th.MinGrade, local: true, keep: func(_ context.Context, _ CandidateFacts, app models.Application, floor float64) (bool, error) {
			return app.Grade >= floor, nil
		}},
		{name: "rating", floor: th.MinRating, keep: func(ctx context.Context, facts CandidateFacts, app models.Application, floor float64) (bool, error) {
			ratings, err := facts.Ratings(ctx, app.Username)
			if err != nil {
				return false, err
			}
			for _, r := range ratings {
				if float64(r) < floor {
					return false, nil
				}
			}
			return true, nil
		}},
		{name: "average_rating", floor: th.MinAverageRating, keep: func(ctx context.Context, facts CandidateFacts, app models.Application, floor float64) (bool, error) {
			ratings, err := facts.Ratings(ctx, app.Username)
			if err != nil {
				return false, err
			}
			if len(ratings) == 0 {
				return true, nil
			}
			return mean(ratings) >= floor, nil
		}},
		{name: "experience", floor: th.MinExperience, keep: func(ctx context.Context, facts CandidateFacts, app models.Application, floor float64) (bool, error) {
			count, err := facts.ExperienceCount(ctx, app.Username)
			if err != nil {
				return false, err
			}
			return float64(count) >= floor, nil
		}},
	}
}

// FilterService narrows candidate lists by minimum grade, ratings and experience.
type FilterService struct {
	facts  CandidateFacts
	fanOut int
	logger *zap.Logger
}

// NewFilterService constructs the pipeline. fanOut bounds concurrent remote lookups per stage.
func NewFilterService(facts CandidateFacts, fanOut int, logger *zap.Logger) *FilterService {
	if fanOut <= 0 {
		fanOut = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterService{facts: facts, fanOut: fanOut, logger: logger}
}

// Filter keeps the applications that clear every configured minimum, preserving input order.
// Bounds are inclusive. An applicant with no ratings passes both rating stages. An applicant
// whose facts cannot be fetched is dropped without affecting the others.
func (s *FilterService) Filter(ctx context.Context, apps []models.Application, th Thresholds) ([]models.Application, error) {
	current := append([]models.Application(nil), apps...)
	for _, stage := range s.stages(th) {
		if stage.floor == nil || len(current) == 0 {
			continue
		}
		current = s.runStage(ctx, stage, current)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if current == nil {
		current = []models.Application{}
	}
	return current, nil
}

func (s *FilterService) runStage(ctx context.Context, stage filterStage, apps []models.Application) []models.Application {
	floor := *stage.floor
	keep := make([]bool, len(apps))
	check := func(ctx context.Context, i int) {
		ok, err := stage.keep(ctx, s.facts, apps[i], floor)
		if err != nil {
			s.logger.Warn("excluding applicant after failed lookup",
				zap.String("stage", stage.name),
				zap.String("username", apps[i].Username),
				zap.String("courseCode", apps[i].CourseCode),
				zap.Error(err))
			return
		}
		keep[i] = ok
	}
	if stage.local {
		for i := range apps {
			check(ctx, i)
		}
	} else {
		forEachBounded(ctx, s.fanOut, len(apps), check)
	}

	kept := make([]models.Application, 0, len(apps))
	for i, app := range apps {
		if keep[i] {
			kept = append(kept, app)
		}
	}
	return kept
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
