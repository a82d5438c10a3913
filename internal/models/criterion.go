package models

import (
	"fmt"
	"strings"
)

// Criterion selects one ranking dimension.
type Criterion string

const (
	CriterionGrade      Criterion = "GRADE"
	CriterionExperience Criterion = "EXPERIENCE"
	CriterionRating     Criterion = "RATING"
)

// ParseCriterion resolves a criterion name case-insensitively.
func ParseCriterion(raw string) (Criterion, error) {
	c := Criterion(strings.ToUpper(strings.TrimSpace(raw)))
	switch c {
	case CriterionGrade, CriterionExperience, CriterionRating:
		return c, nil
	}
	return "", fmt.Errorf("unknown criterion %q", raw)
}

// ParseCriteria parses a comma-separated, ordered criterion list. Empty input yields no criteria.
func ParseCriteria(raw string) ([]Criterion, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	criteria := make([]Criterion, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCriterion(part)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}
