// internal/engine/rules.go
package engine

import (
	"strings"

	"assessment-workers/internal/models"
)

// Rating answers below this value raise a warning.
const lowRatingThreshold = 3.0

// A use-case score under this value flags the evaluation itself.
const lowScoreThreshold = 2.5

// Warnings fire on the maturity gap only when the organization is more
// than a full level behind the requirement.
const maturityGapTolerance = 1.0

// ruleInput is the read-only snapshot a rule predicate sees.
type ruleInput struct {
	useCase  *models.UseCase
	answers  models.GlobalAnswers
	response *models.QuestionnaireResponse
	score    float64
	maturity MaturityResult
}

// rule is one row of the fixed evaluation table.
type rule struct {
	code          FindingCode
	category      Category
	severity      Severity
	message       string
	needsResponse bool
	applies       func(in ruleInput) bool
}

// ruleTable is evaluated top to bottom. The order (estrategia, datos,
// tecnologia, personas, valor, riesgos) is the display order of
// findings and recommendations everywhere in the product; never
// reorder it.
var ruleTable = []rule{
	// --- Estrategia ---
	{
		code:     CodeStrategyNotDefined,
		category: CatEstrategia,
		severity: SeverityWarning,
		message:  "La estrategia de IA no esta claramente definida ni alineada con los objetivos del negocio",
		applies: func(in ruleInput) bool {
			return in.answers.Rating("estrategia_1") < lowRatingThreshold
		},
	},
	{
		code:     CodeNoExecutiveSponsor,
		category: CatEstrategia,
		severity: SeverityWarning,
		message:  "Falta patrocinio ejecutivo para las iniciativas de IA",
		applies: func(in ruleInput) bool {
			return !in.answers.Bool("estrategia_2")
		},
	},
	{
		code:     CodeMaturityBelowRequired,
		category: CatEstrategia,
		severity: SeverityWarning,
		message:  "La madurez organizacional actual esta muy por debajo de la requerida para este caso de uso",
		applies: func(in ruleInput) bool {
			return in.maturity.Overall+maturityGapTolerance < RequiredMaturity(in.useCase)
		},
	},

	// --- Datos ---
	{
		code:     CodeNoDataGovernance,
		category: CatDatos,
		severity: SeverityBlocker,
		message:  "No existe un marco de gobierno de datos establecido",
		applies: func(in ruleInput) bool {
			return !in.answers.Bool("datos_1")
		},
	},
	{
		code:     CodeLowDataQuality,
		category: CatDatos,
		severity: SeverityWarning,
		message:  "La calidad y disponibilidad de los datos es insuficiente",
		applies: func(in ruleInput) bool {
			return in.answers.Rating("datos_2") < lowRatingThreshold
		},
	},

	// --- Tecnologia ---
	{
		code:     CodeNoCloudInfrastructure,
		category: CatTecnologia,
		severity: SeverityBlocker,
		message:  "No hay infraestructura cloud habilitada para cargas de IA",
		applies: func(in ruleInput) bool {
			return !in.answers.Bool("tecnologia_1")
		},
	},
	{
		code:     CodeNoMLOpsPlatform,
		category: CatTecnologia,
		severity: SeverityBlocker,
		message:  "No existe una plataforma MLOps para desplegar y operar modelos",
		applies: func(in ruleInput) bool {
			return !in.answers.Bool("tecnologia_2")
		},
	},

	// --- Personas ---
	{
		code:     CodeLowAITalent,
		category: CatPersonas,
		severity: SeverityWarning,
		message:  "El talento interno en IA es insuficiente para ejecutar el caso de uso",
		applies: func(in ruleInput) bool {
			return in.answers.Rating("personas_1") < lowRatingThreshold
		},
	},
	{
		code:     CodeNoTrainingPlan,
		category: CatPersonas,
		severity: SeverityWarning,
		message:  "No hay un plan de formacion en IA para los equipos",
		applies: func(in ruleInput) bool {
			return !in.answers.Bool("personas_2")
		},
	},

	// --- Valor ---
	{
		code:          CodeLowROICertainty,
		category:      CatValor,
		severity:      SeverityWarning,
		message:       "La certeza sobre el ROI del caso de uso es baja",
		needsResponse: true,
		applies: func(in ruleInput) bool {
			return strings.EqualFold(in.response.Text("valor_roi"), "Baja")
		},
	},
	{
		code:     CodeLowUseCaseScore,
		category: CatValor,
		severity: SeverityWarning,
		message:  "La evaluacion del caso de uso obtuvo una puntuacion baja",
		applies: func(in ruleInput) bool {
			return in.score < lowScoreThreshold
		},
	},

	// --- Riesgos ---
	{
		code:     CodeLowComplianceReadiness,
		category: CatRiesgos,
		severity: SeverityWarning,
		message:  "La preparacion en cumplimiento normativo para IA es limitada",
		applies: func(in ruleInput) bool {
			return in.answers.Rating("riesgos_1") < lowRatingThreshold
		},
	},
	{
		code:          CodeSensitiveDataUse,
		category:      CatRiesgos,
		severity:      SeverityWarning,
		message:       "El caso de uso procesa datos sensibles sin controles definidos",
		needsResponse: true,
		applies: func(in ruleInput) bool {
			return in.response.Bool("riesgo_datos_sensibles")
		},
	},
}

// EvaluateUseCase runs the fixed rule table for one use case and
// returns its blockers and warnings in table order. A nil response
// skips the response-dependent rules entirely; it never counts as a
// failing answer. Missing global answers degrade conservatively: an
// unanswered capability question reads as absent and an unanswered
// rating reads as 0.
func EvaluateUseCase(
	uc *models.UseCase,
	response *models.QuestionnaireResponse,
	answers models.GlobalAnswers,
	maturity MaturityResult,
) (blockers, warnings []Finding) {
	score := UseCaseScore(uc, response)

	in := ruleInput{
		useCase:  uc,
		answers:  answers,
		response: response,
		score:    score,
		maturity: maturity,
	}

	blockers = []Finding{}
	warnings = []Finding{}
	for _, r := range ruleTable {
		if r.needsResponse && response == nil {
			continue
		}
		if !r.applies(in) {
			continue
		}
		f := Finding{
			Code:     r.code,
			Category: r.category,
			Severity: r.severity,
			Text:     renderText(r.severity, r.category, r.message),
		}
		if r.severity == SeverityBlocker {
			blockers = append(blockers, f)
		} else {
			warnings = append(warnings, f)
		}
	}
	return blockers, warnings
}

// UseCaseScore returns the questionnaire score for a use case, or the
// impact/complexity-derived default when it was never evaluated.
func UseCaseScore(uc *models.UseCase, response *models.QuestionnaireResponse) float64 {
	if response != nil {
		return response.Score
	}
	if uc == nil {
		return 0
	}
	return uc.DefaultScore()
}
