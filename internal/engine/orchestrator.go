// internal/engine/orchestrator.go
package engine

import "assessment-workers/internal/models"

// ValidationResult is the per-use-case decision artifact. It is
// recreated on every call and identical inputs always produce an
// identical, order-stable result list, which is what lets the
// validator view, the report builder and the activity generator share
// one classification without drift.
type ValidationResult struct {
	UseCase         models.UseCase `json:"useCase"`
	Status          string         `json:"status"`
	ReadinessScore  float64        `json:"readinessScore"`
	MaturityGap     float64        `json:"maturityGap"`
	Blockers        []Finding      `json:"bloqueadores"`
	Warnings        []Finding      `json:"warnings"`
	Recommendations []string       `json:"recommendations"`
}

// CalculateValidationResults classifies every selected use case, in
// selection order. Responses are matched by use-case id; a use case
// without a response is still classified, with its response-dependent
// rules skipped.
//
// maturityOverride, when non-nil, replaces the maturity score that
// would be recomputed from the answers. Callers pass a previously
// persisted score here so a stored value and a fresh recomputation can
// never disagree within one evaluation run; the same maturity value is
// used for every result in the returned list either way.
//
// An empty selection returns an empty, non-nil list. The function has
// no error path.
func CalculateValidationResults(
	selected []models.UseCase,
	evaluated []models.QuestionnaireResponse,
	answers models.GlobalAnswers,
	maturityOverride *float64,
) []ValidationResult {
	maturity := ComputeMaturity(answers)
	if maturityOverride != nil {
		maturity.Overall = *maturityOverride
		maturity.Level = LevelForScore(*maturityOverride)
	}

	byUseCase := make(map[string]*models.QuestionnaireResponse, len(evaluated))
	for i := range evaluated {
		resp := &evaluated[i]
		if _, seen := byUseCase[resp.UseCaseID]; !seen {
			byUseCase[resp.UseCaseID] = resp
		}
	}

	results := make([]ValidationResult, 0, len(selected))
	for i := range selected {
		uc := selected[i]
		response := byUseCase[uc.ID]

		blockers, warnings := EvaluateUseCase(&uc, response, answers, maturity)
		comp := Compose(blockers, warnings, maturity, &uc)

		results = append(results, ValidationResult{
			UseCase:         uc,
			Status:          comp.Status,
			ReadinessScore:  comp.ReadinessScore,
			MaturityGap:     comp.MaturityGap,
			Blockers:        blockers,
			Warnings:        warnings,
			Recommendations: comp.Recommendations,
		})
	}
	return results
}
