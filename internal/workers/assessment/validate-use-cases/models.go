package validateusecases

import "assessment-workers/internal/engine"

type Input struct {
	AssessmentID string `json:"assessmentId"`

	// MaturityScore, when present, replaces the score recomputed from
	// the stored answers so all surfaces classify against the same value.
	MaturityScore *float64 `json:"maturityScore,omitempty"`
}

type Output struct {
	ValidationResults []engine.ValidationResult `json:"validationResults"`
	MaturityScore     float64                   `json:"maturityScore"`
	MaturityLevel     string                    `json:"maturityLevel"`
	FromCache         bool                      `json:"fromCache"`
}
