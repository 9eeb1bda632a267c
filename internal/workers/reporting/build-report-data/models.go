package buildreportdata

import (
	"time"

	"assessment-workers/internal/engine"
)

type Input struct {
	AssessmentID      string                    `json:"assessmentId"`
	Organization      string                    `json:"organization,omitempty"`
	MaturityScore     float64                   `json:"maturityScore"`
	MaturityLevel     string                    `json:"maturityLevel"`
	DimensionScores   map[string]float64        `json:"dimensionScores,omitempty"`
	ValidationResults []engine.ValidationResult `json:"validationResults"`
}

// ReportFinding is a classification finding enriched with the
// consultant-facing impact and remediation narrative.
type ReportFinding struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Text        string `json:"text"`
	Impact      string `json:"impact"`
	Remediation string `json:"remediation"`
}

type ReportUseCase struct {
	UseCaseID       string          `json:"useCaseId"`
	Title           string          `json:"title"`
	Status          string          `json:"status"`
	ReadinessScore  float64         `json:"readinessScore"`
	MaturityGap     float64         `json:"maturityGap"`
	Blockers        []ReportFinding `json:"bloqueadores"`
	Warnings        []ReportFinding `json:"warnings"`
	Recommendations []string        `json:"recommendations"`
}

// ReportDocument is what gets indexed into Elasticsearch, one document
// per assessment.
type ReportDocument struct {
	AssessmentID    string             `json:"assessmentId"`
	Organization    string             `json:"organization,omitempty"`
	MaturityScore   float64            `json:"maturityScore"`
	MaturityLevel   string             `json:"maturityLevel"`
	DimensionScores map[string]float64 `json:"dimensionScores,omitempty"`
	UseCases        []ReportUseCase    `json:"useCases"`
	GeneratedAt     time.Time          `json:"generatedAt"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	Index      string `json:"index"`
	DocumentID string `json:"documentId"`
	UseCases   int    `json:"useCases"`
}
