package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriteriaKeepsOrder(t *testing.T) {
	criteria, err := ParseCriteria("grade, Experience,RATING,")
	require.NoError(t, err)
	assert.Equal(t, []Criterion{CriterionGrade, CriterionExperience, CriterionRating}, criteria)
}

func TestParseCriteriaEmpty(t *testing.T) {
	criteria, err := ParseCriteria("  ")
	require.NoError(t, err)
	assert.Empty(t, criteria)
}

func TestParseCriteriaUnknown(t *testing.T) {
	_, err := ParseCriteria("GRADE,SENIORITY")
	assert.Error(t, err)
}

func TestApplicationStatusHelpers(t *testing.T) {
	assert.True(t, ApplicationStatusPending.Valid())
	assert.False(t, ApplicationStatus("ARCHIVED").Valid())
	assert.True(t, ApplicationStatusRejected.Live())
	assert.False(t, ApplicationStatusRevoked.Live())
}
