package generateactivities

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "generate-activities"

	activityTypeRemediation = "remediation"
	activityTypeMitigation  = "mitigation"

	priorityHigh   = "alta"
	priorityMedium = "media"
)

var (
	ErrMissingAssessmentID = errors.New("MISSING_ASSESSMENT_ID")
	ErrDuplicateActivities = errors.New("DUPLICATE_ACTIVITY")
	ErrActivityInsert      = errors.New("ACTIVITY_INSERT_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	errs   *apperrors.ErrorHandler
	newID  func() string
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		logger: scoped,
		errs:   apperrors.NewErrorHandler(scoped),
		newID:  uuid.NewString,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.reportFailure(client, job,
			apperrors.NewPayloadValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.reportFailure(client, job, asStandardError(err, &input))
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

// asStandardError maps execute's sentinel errors onto the shared error
// vocabulary, which carries the retry policy per code.
func asStandardError(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrMissingAssessmentID):
		return apperrors.NewPayloadValidationFailedError("assessmentId is required")
	case errors.Is(err, ErrDuplicateActivities):
		return apperrors.NewDuplicateActivityError(input.AssessmentID, "all")
	case errors.Is(err, ErrActivityInsert):
		return apperrors.NewActivityInsertFailedError(err)
	default:
		return err
	}
}

func (h *Handler) reportFailure(client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	if stdErr, ok := err.(*apperrors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errs.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AssessmentID == "" {
		return nil, ErrMissingAssessmentID
	}

	var existing int
	err := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assessment_activities WHERE assessment_id = $1`,
		input.AssessmentID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityInsert, err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: assessment %s already has %d activities",
			ErrDuplicateActivities, input.AssessmentID, existing)
	}

	activities := buildActivities(input)

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityInsert, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	ids := make([]string, 0, len(activities))
	for i := range activities {
		activities[i].ID = h.newID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assessment_activities
				(id, assessment_id, use_case_id, finding_code, activity_type, priority, title, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			activities[i].ID, activities[i].AssessmentID, activities[i].UseCaseID,
			activities[i].FindingCode, activities[i].Type, activities[i].Priority,
			activities[i].Title, activities[i].Description, now,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrActivityInsert, err)
		}
		ids = append(ids, activities[i].ID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_audit_log (id, assessment_id, activities_created, created_at)
		VALUES ($1, $2, $3, $4)`,
		h.newID(), input.AssessmentID, len(activities), now,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityInsert, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrActivityInsert, err)
	}

	h.logger.Info("activities generated", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"activities":   len(activities),
	})

	return &Output{ActivitiesCreated: len(activities), ActivityIDs: ids}, nil
}

// buildActivities derives one task per finding: blockers become high
// priority remediation tasks, warnings medium priority mitigations.
func buildActivities(input *Input) []Activity {
	var activities []Activity
	for _, result := range input.ValidationResults {
		for _, f := range result.Blockers {
			activities = append(activities, Activity{
				AssessmentID: input.AssessmentID,
				UseCaseID:    result.UseCase.ID,
				FindingCode:  string(f.Code),
				Type:         activityTypeRemediation,
				Priority:     priorityHigh,
				Title:        engine.ActivityPrefix(f.Severity) + " " + engine.RemediationText(f.Code),
				Description:  f.Text + ". " + engine.ImpactText(f.Code),
			})
		}
		for _, f := range result.Warnings {
			activities = append(activities, Activity{
				AssessmentID: input.AssessmentID,
				UseCaseID:    result.UseCase.ID,
				FindingCode:  string(f.Code),
				Type:         activityTypeMitigation,
				Priority:     priorityMedium,
				Title:        engine.ActivityPrefix(f.Severity) + " " + engine.RemediationText(f.Code),
				Description:  f.Text + ". " + engine.ImpactText(f.Code),
			})
		}
	}
	return activities
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
