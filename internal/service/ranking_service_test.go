package service

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
)

func TestRankByGrade(t *testing.T) {
	svc := NewRankingService(&fakeStaffing{}, 2, nil)
	apps := candidates(map[string]float64{"Bob": 8.0, "Jack": 5.0, "Alice": 6.0}, "Bob", "Jack", "Alice")

	ranked, err := svc.Rank(context.Background(), apps, []models.Criterion{models.CriterionGrade})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Alice", "Jack"}, usernames(ranked))
	assert.Equal(t, []string{"Bob", "Jack", "Alice"}, usernames(apps))
}

func TestRankIsStable(t *testing.T) {
	svc := NewRankingService(&fakeStaffing{}, 2, nil)
	apps := candidates(map[string]float64{"a": 7, "b": 7, "c": 9, "d": 7}, "a", "b", "c", "d")

	first, err := svc.Rank(context.Background(), apps, []models.Criterion{models.CriterionGrade})
	require.NoError(t, err)
	second, err := svc.Rank(context.Background(), apps, []models.Criterion{models.CriterionGrade})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"c", "a", "b", "d"}, usernames(first))
}

func TestRankLastCriterionDominates(t *testing.T) {
	grades := map[string]float64{"a": 6, "b": 9, "c": 7, "d": 8}
	experience := map[string]int{"a": 2, "b": 1, "c": 2, "d": 1}
	svc := NewRankingService(&fakeStaffing{experience: experience}, 3, nil)
	apps := candidates(grades, "a", "b", "c", "d")

	ranked, err := svc.Rank(context.Background(), apps, []models.Criterion{models.CriterionGrade, models.CriterionExperience})
	require.NoError(t, err)

	expected := append([]models.Application(nil), apps...)
	sort.SliceStable(expected, func(i, j int) bool { return expected[i].Grade > expected[j].Grade })
	sort.SliceStable(expected, func(i, j int) bool {
		return experience[expected[i].Username] > experience[expected[j].Username]
	})
	assert.Equal(t, usernames(expected), usernames(ranked))
	assert.Equal(t, []string{"c", "a", "b", "d"}, usernames(ranked))
}

func TestRankByRatingTreatsFailuresAsZero(t *testing.T) {
	staffing := &fakeStaffing{
		ratings: map[string][]int{"a": {4, 6}, "b": {9}, "c": {}},
		broken:  map[string]bool{"d": true},
	}
	svc := NewRankingService(staffing, 2, nil)
	apps := candidates(nil, "d", "c", "a", "b")

	ranked, err := svc.Rank(context.Background(), apps, []models.Criterion{models.CriterionRating})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "d", "c"}, usernames(ranked))
}

func TestRankByExperienceTreatsFailuresAsZero(t *testing.T) {
	staffing := &fakeStaffing{
		experience: map[string]int{"a": 2, "b": 1},
		broken:     map[string]bool{"d": true},
	}
	svc := NewRankingService(staffing, 2, nil)
	apps := candidates(nil, "d", "c", "a", "b")

	ranked, err := svc.Rank(context.Background(), apps, []models.Criterion{models.CriterionExperience})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "c"}, usernames(ranked))
}

func TestRankWithoutCriteriaKeepsOrder(t *testing.T) {
	svc := NewRankingService(&fakeStaffing{}, 1, nil)
	apps := candidates(map[string]float64{"a": 1, "b": 9}, "a", "b")

	ranked, err := svc.Rank(context.Background(), apps, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, usernames(ranked))
}

func TestRankUnknownCriterion(t *testing.T) {
	svc := NewRankingService(&fakeStaffing{}, 1, nil)
	_, err := svc.Rank(context.Background(), candidates(nil, "a"), []models.Criterion{"SENIORITY"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestParseCriteriaReportsValidationError(t *testing.T) {
	criteria, err := ParseCriteria("grade, Rating")
	require.NoError(t, err)
	assert.Equal(t, []models.Criterion{models.CriterionGrade, models.CriterionRating}, criteria)

	_, err = ParseCriteria("grade,height")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}
