package generateactivities

import "assessment-workers/internal/engine"

type Input struct {
	AssessmentID      string                    `json:"assessmentId"`
	ValidationResults []engine.ValidationResult `json:"validationResults"`
}

// Activity is a remediation or mitigation task derived from one finding.
type Activity struct {
	ID           string `json:"id"`
	AssessmentID string `json:"assessmentId"`
	UseCaseID    string `json:"useCaseId"`
	FindingCode  string `json:"findingCode"`
	Type         string `json:"type"`
	Priority     string `json:"priority"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

type Output struct {
	ActivitiesCreated int      `json:"activitiesCreated"`
	ActivityIDs       []string `json:"activityIds"`
}
