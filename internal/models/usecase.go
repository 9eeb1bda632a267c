// internal/models/usecase.go
package models

import "strings"

// Qualitative levels used for impact and complexity on catalog entries.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// UseCase is a catalog entry or user-created AI use case under
// evaluation. Entries are never mutated after selection.
type UseCase struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Industry         string  `json:"industry"`
	Impact           string  `json:"impact"`
	Complexity       string  `json:"complexity"`
	AIType           string  `json:"aiType"`
	DataRequirements string  `json:"dataRequirements"`
	RequiredMaturity float64 `json:"requiredMaturity,omitempty"`
}

// NormalizedImpact returns the impact level, defaulting to medium when
// the field is missing or carries an unknown value.
func (u *UseCase) NormalizedImpact() string {
	return normalizeLevel(u.Impact)
}

// NormalizedComplexity returns the complexity level with the same
// medium fallback.
func (u *UseCase) NormalizedComplexity() string {
	return normalizeLevel(u.Complexity)
}

// DefaultScore derives a stand-in questionnaire score from impact and
// complexity, used when a use case was selected but never individually
// evaluated. Higher impact raises the score, higher complexity lowers
// it; a medium/medium case lands on 3.0.
func (u *UseCase) DefaultScore() float64 {
	score := 3.0
	switch u.NormalizedImpact() {
	case LevelHigh:
		score += 1.0
	case LevelLow:
		score -= 1.0
	}
	switch u.NormalizedComplexity() {
	case LevelHigh:
		score -= 1.0
	case LevelLow:
		score += 1.0
	}
	if score < 1.0 {
		return 1.0
	}
	if score > 5.0 {
		return 5.0
	}
	return score
}

func normalizeLevel(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case LevelLow:
		return LevelLow
	case LevelHigh:
		return LevelHigh
	default:
		return LevelMedium
	}
}
