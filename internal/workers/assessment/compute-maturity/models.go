package computematurity

type Input struct {
	AssessmentID string                 `json:"assessmentId"`
	Answers      map[string]interface{} `json:"answers,omitempty"`
}

// Output carries the aggregated maturity back into the process variables.
type Output struct {
	MaturityScore   float64            `json:"maturityScore"`
	MaturityLevel   string             `json:"maturityLevel"`
	DimensionScores map[string]float64 `json:"dimensionScores"`
	FromCache       bool               `json:"fromCache"`
}
