// internal/engine/thresholds.go
package engine

// All numeric cut-offs of the classification engine live here. Callers
// that display levels or statuses must use these same constants so a
// value rendered in the validator view, the report and the activity
// list can never disagree.
const (
	// Maturity level thresholds on the 1-5 maturity scale.
	MaturityAdvancedThreshold     = 3.5
	MaturityIntermediateThreshold = 2.5

	// Required maturity assumed for use cases that do not specify one.
	DefaultRequiredMaturity = 3.0

	// Readiness scoring: linear penalty model on a 0-10 scale.
	ReadinessBase    = 10.0
	BlockerPenalty   = 2.0
	WarningPenalty   = 0.5
	ReadinessFloor   = 0.0
	ReadinessCeiling = 10.0

	// Status classification thresholds on the readiness score.
	StatusGreenThreshold  = 7.0
	StatusYellowThreshold = 4.0
)

// Maturity levels.
const (
	LevelInitial      = "Initial"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Status is the three-way traffic-light classification of a use case.
const (
	StatusGreen  = "green"
	StatusYellow = "yellow"
	StatusRed    = "red"
)

// LevelForScore maps an overall maturity score to its level.
func LevelForScore(score float64) string {
	switch {
	case score >= MaturityAdvancedThreshold:
		return LevelAdvanced
	case score >= MaturityIntermediateThreshold:
		return LevelIntermediate
	default:
		return LevelInitial
	}
}

// StatusForScore maps a readiness score to its status. Status is a
// function of the readiness score alone: a blocker lowers the score by
// its penalty but does not force red on its own.
func StatusForScore(readiness float64) string {
	switch {
	case readiness >= StatusGreenThreshold:
		return StatusGreen
	case readiness >= StatusYellowThreshold:
		return StatusYellow
	default:
		return StatusRed
	}
}
