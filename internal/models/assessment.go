// internal/models/assessment.go
package models

import (
	"strconv"
	"strings"
)

// GlobalAnswers maps questionnaire question keys to raw answer values.
// Values are ratings (1-5), booleans, or free-text strings, exactly as
// captured by the questionnaire UI. The map is treated as read-only by
// every consumer.
type GlobalAnswers map[string]interface{}

// Rating returns the numeric rating stored under key, or 0 when the
// question was not answered or holds a non-numeric value.
func (a GlobalAnswers) Rating(key string) float64 {
	if a == nil {
		return 0
	}
	return CoerceRating(a[key])
}

// Bool returns the boolean stored under key; a missing or non-boolean
// answer reads as false.
func (a GlobalAnswers) Bool(key string) bool {
	if a == nil {
		return false
	}
	b, _ := a[key].(bool)
	return b
}

// Text returns the free-text answer stored under key, trimmed.
func (a GlobalAnswers) Text(key string) string {
	if a == nil {
		return ""
	}
	s, _ := a[key].(string)
	return strings.TrimSpace(s)
}

// CoerceRating converts a raw answer value to a rating. JSON decoding
// hands ratings over as float64, stored answers may arrive as int or
// numeric string; everything else (booleans, prose) coerces to 0.
func CoerceRating(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// QuestionnaireResponse carries the per-use-case answer set captured by
// the evaluation questionnaire and the mean score derived from it.
type QuestionnaireResponse struct {
	UseCaseID string                 `json:"useCaseId"`
	Answers   map[string]interface{} `json:"answers"`
	Score     float64                `json:"score"`
}

// Bool reads a boolean answer from the response, false when absent.
func (r *QuestionnaireResponse) Bool(key string) bool {
	if r == nil || r.Answers == nil {
		return false
	}
	b, _ := r.Answers[key].(bool)
	return b
}

// Text reads a free-text or categorical answer from the response.
func (r *QuestionnaireResponse) Text(key string) string {
	if r == nil || r.Answers == nil {
		return ""
	}
	s, _ := r.Answers[key].(string)
	return strings.TrimSpace(s)
}

// MeanScore computes the arithmetic mean of all numeric ratings in an
// answer set. Non-numeric answers do not enter the denominator; an
// answer set with no ratings scores 0.
func MeanScore(answers map[string]interface{}) float64 {
	sum := 0.0
	count := 0
	for _, raw := range answers {
		switch raw.(type) {
		case float64, int, int64:
			sum += CoerceRating(raw)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
