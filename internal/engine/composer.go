// internal/engine/composer.go
package engine

import "assessment-workers/internal/models"

// Composition is the numeric and advisory half of a validation result.
type Composition struct {
	ReadinessScore  float64  `json:"readinessScore"`
	MaturityGap     float64  `json:"maturityGap"`
	Status          string   `json:"status"`
	Recommendations []string `json:"recommendations"`
}

// Status-level next steps. These are intentionally generic: per-finding
// remediation is looked up by finding code on the report surface, while
// this list gives the strategic guidance for the classification as a
// whole.
var recommendationsByStatus = map[string][]string{
	StatusGreen: {
		"Proceder con la planificacion del piloto",
		"Definir metricas de exito y linea base antes de implementar",
		"Asegurar el presupuesto y el equipo del proyecto",
	},
	StatusYellow: {
		"Resolver las advertencias identificadas antes de escalar",
		"Ejecutar una prueba de concepto acotada",
		"Reforzar las capacidades marcadas como debiles",
		"Reevaluar el caso de uso tras cerrar las brechas",
	},
	StatusRed: {
		"Posponer la implementacion hasta cerrar los bloqueadores",
		"Priorizar las inversiones en capacidades fundamentales",
		"Reevaluar la madurez organizacional en el proximo ciclo",
	},
}

// Compose turns the findings of one use case into its readiness score,
// maturity gap, status and recommendations.
//
// The score starts at the base and loses a fixed penalty per blocker
// and per warning, clamped to [0, 10]. This linear model is the single
// governing numeric rule of the engine; the penalties live in
// thresholds.go and every classification downstream depends on them.
func Compose(
	blockers, warnings []Finding,
	maturity MaturityResult,
	uc *models.UseCase,
) Composition {
	readiness := ReadinessBase -
		BlockerPenalty*float64(len(blockers)) -
		WarningPenalty*float64(len(warnings))
	if readiness < ReadinessFloor {
		readiness = ReadinessFloor
	}
	if readiness > ReadinessCeiling {
		readiness = ReadinessCeiling
	}

	status := StatusForScore(readiness)

	recs := recommendationsByStatus[status]
	out := make([]string, len(recs))
	copy(out, recs)

	return Composition{
		ReadinessScore:  readiness,
		MaturityGap:     RequiredMaturity(uc) - maturity.Overall,
		Status:          status,
		Recommendations: out,
	}
}
