// internal/engine/maturity.go
package engine

import (
	"strings"

	"assessment-workers/internal/models"
)

// Dimension identifies one of the six maturity dimensions. Question
// keys are tagged with their dimension as a prefix ("tecnologia_2").
type Dimension string

const (
	DimEstrategia Dimension = "estrategia"
	DimDatos      Dimension = "datos"
	DimTecnologia Dimension = "tecnologia"
	DimPersonas   Dimension = "personas"
	DimValor      Dimension = "valor"
	DimRiesgos    Dimension = "riesgos"
)

// DimensionOrder fixes iteration order wherever dimensions are listed.
var DimensionOrder = []Dimension{
	DimEstrategia,
	DimDatos,
	DimTecnologia,
	DimPersonas,
	DimValor,
	DimRiesgos,
}

// MaturityResult is the aggregate of an organization's global answers:
// an overall 1-5 score, its level, and the six dimension sub-scores.
// It is derived on demand and never stored by the engine.
type MaturityResult struct {
	Overall    float64               `json:"overall"`
	Level      string                `json:"level"`
	Dimensions map[Dimension]float64 `json:"dimensions"`
}

// ComputeMaturity reduces the global questionnaire answers to a
// MaturityResult. Each dimension scores the arithmetic mean of its
// numeric-rating answers; unanswered questions stay out of the
// denominator and a dimension with no ratings scores 0. The overall
// score weighs the six dimensions equally regardless of how many
// questions each one carries. The function never fails: no answers
// means score 0, level Initial.
func ComputeMaturity(answers models.GlobalAnswers) MaturityResult {
	dims := make(map[Dimension]float64, len(DimensionOrder))

	total := 0.0
	for _, dim := range DimensionOrder {
		sum := 0.0
		count := 0
		for key, raw := range answers {
			if !strings.HasPrefix(key, string(dim)+"_") {
				continue
			}
			switch raw.(type) {
			case float64, int, int64:
				sum += models.CoerceRating(raw)
				count++
			}
		}
		score := 0.0
		if count > 0 {
			score = sum / float64(count)
		}
		dims[dim] = score
		total += score
	}

	overall := total / float64(len(DimensionOrder))
	return MaturityResult{
		Overall:    overall,
		Level:      LevelForScore(overall),
		Dimensions: dims,
	}
}

// RequiredMaturity returns the maturity a use case demands, falling
// back to the default when the catalog entry specifies none.
func RequiredMaturity(uc *models.UseCase) float64 {
	if uc != nil && uc.RequiredMaturity > 0 {
		return uc.RequiredMaturity
	}
	return DefaultRequiredMaturity
}
