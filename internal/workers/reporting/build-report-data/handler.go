package buildreportdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/store"
	"assessment-workers/internal/common/validation"
	"assessment-workers/internal/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "build-report-data"
)

var (
	ErrMissingAssessmentID = errors.New("MISSING_ASSESSMENT_ID")
	ErrSchemaInvalid       = errors.New("REPORT_SCHEMA_INVALID")
	ErrIndexFailed         = errors.New("REPORT_INDEX_FAILED")
	ErrRecomputeFailed     = errors.New("VALIDATION_RECOMPUTE_FAILED")
)

// reportSchema guards the document contract with the reporting frontend.
const reportSchema = `{
	"type": "object",
	"required": ["assessmentId", "maturityScore", "maturityLevel", "useCases", "generatedAt"],
	"properties": {
		"assessmentId": {"type": "string", "minLength": 1},
		"organization": {"type": "string"},
		"maturityScore": {"type": "number", "minimum": 0, "maximum": 5},
		"maturityLevel": {"type": "string", "enum": ["Initial", "Intermediate", "Advanced"]},
		"dimensionScores": {
			"type": "object",
			"additionalProperties": {"type": "number", "minimum": 0, "maximum": 5}
		},
		"useCases": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["useCaseId", "status", "readinessScore", "bloqueadores", "warnings", "recommendations"],
				"properties": {
					"useCaseId": {"type": "string", "minLength": 1},
					"title": {"type": "string"},
					"status": {"type": "string", "enum": ["green", "yellow", "red"]},
					"readinessScore": {"type": "number", "minimum": 0, "maximum": 10},
					"maturityGap": {"type": "number"},
					"bloqueadores": {"type": "array"},
					"warnings": {"type": "array"},
					"recommendations": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"generatedAt": {"type": "string"}
	}
}`

type Handler struct {
	config    *Config
	store     *store.Store
	es        *elasticsearch.Client
	validator *validation.SchemaValidator
	logger    logger.Logger
	errs      *apperrors.ErrorHandler
	now       func() time.Time
}

func NewHandler(config *Config, st *store.Store, es *elasticsearch.Client, log logger.Logger) (*Handler, error) {
	validator, err := validation.NewSchemaValidator(reportSchema)
	if err != nil {
		return nil, fmt.Errorf("report schema: %w", err)
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		store:     st,
		es:        es,
		validator: validator,
		logger:    scoped,
		errs:      apperrors.NewErrorHandler(scoped),
		now:       time.Now,
	}, nil
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
		h.reportFailure(client, job, h.asStandardError(err))
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

// asStandardError maps execute's sentinel errors onto the shared error
// vocabulary, which carries the retry policy per code.
func (h *Handler) asStandardError(err error) error {
	switch {
	case errors.Is(err, ErrMissingAssessmentID):
		return apperrors.NewPayloadValidationFailedError("assessmentId is required")
	case errors.Is(err, ErrSchemaInvalid):
		return apperrors.NewReportSchemaInvalidError(err.Error())
	case errors.Is(err, ErrIndexFailed):
		return apperrors.NewReportIndexFailedError(h.config.Index, err)
	case errors.Is(err, ErrRecomputeFailed):
		return apperrors.NewValidationRecomputeFailedError(err)
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

	if input.ValidationResults == nil {
		if err := h.recompute(ctx, input); err != nil {
			return nil, err
		}
	}

	doc := h.buildDocument(input)

	result, err := h.validator.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if !result.Valid {
		details := strings.Join(result.GetErrorMessages(), "; ")
		if h.config.SchemaStrict {
			return nil, fmt.Errorf("%w: %s", ErrSchemaInvalid, details)
		}
		h.logger.Warn("report document failed schema validation", map[string]interface{}{
			"assessmentId": input.AssessmentID,
			"violations":   details,
		})
	}

	if err := h.indexDocument(ctx, doc); err != nil {
		return nil, err
	}

	h.logger.Info("report document indexed", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"index":        h.config.Index,
		"useCases":     len(doc.UseCases),
	})

	return &Output{
		Indexed:    true,
		Index:      h.config.Index,
		DocumentID: input.AssessmentID,
		UseCases:   len(doc.UseCases),
	}, nil
}

// recompute rebuilds the maturity summary and validation results from
// the stored questionnaire when the process variables do not carry
// them, so the report step can run standalone.
func (h *Handler) recompute(ctx context.Context, input *Input) error {
	if h.store == nil {
		return fmt.Errorf("%w: no datastore configured", ErrRecomputeFailed)
	}

	answers, err := h.store.LoadGlobalAnswers(ctx, input.AssessmentID)
	if err != nil {
		return fmt.Errorf("%w: answers: %v", ErrRecomputeFailed, err)
	}
	selected, err := h.store.LoadSelectedUseCases(ctx, input.AssessmentID)
	if err != nil {
		return fmt.Errorf("%w: use cases: %v", ErrRecomputeFailed, err)
	}
	responses, err := h.store.LoadResponses(ctx, input.AssessmentID)
	if err != nil {
		return fmt.Errorf("%w: responses: %v", ErrRecomputeFailed, err)
	}

	maturity := engine.ComputeMaturity(answers)
	input.ValidationResults = engine.CalculateValidationResults(selected, responses, answers, nil)
	input.MaturityScore = maturity.Overall
	input.MaturityLevel = maturity.Level

	dimensions := make(map[string]float64, len(maturity.Dimensions))
	for dim, score := range maturity.Dimensions {
		dimensions[string(dim)] = score
	}
	input.DimensionScores = dimensions

	h.logger.Info("validation results recomputed", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"useCases":     len(input.ValidationResults),
	})
	return nil
}

// buildDocument enriches every finding with the code-keyed impact and
// remediation narrative before the document leaves the engine's domain.
func (h *Handler) buildDocument(input *Input) *ReportDocument {
	useCases := make([]ReportUseCase, 0, len(input.ValidationResults))
	for _, result := range input.ValidationResults {
		recommendations := result.Recommendations
		if recommendations == nil {
			recommendations = []string{}
		}
		useCases = append(useCases, ReportUseCase{
			UseCaseID:       result.UseCase.ID,
			Title:           result.UseCase.Title,
			Status:          result.Status,
			ReadinessScore:  result.ReadinessScore,
			MaturityGap:     result.MaturityGap,
			Blockers:        enrichFindings(result.Blockers),
			Warnings:        enrichFindings(result.Warnings),
			Recommendations: recommendations,
		})
	}

	return &ReportDocument{
		AssessmentID:    input.AssessmentID,
		Organization:    input.Organization,
		MaturityScore:   input.MaturityScore,
		MaturityLevel:   input.MaturityLevel,
		DimensionScores: input.DimensionScores,
		UseCases:        useCases,
		GeneratedAt:     h.now().UTC(),
	}
}

func enrichFindings(findings []engine.Finding) []ReportFinding {
	enriched := make([]ReportFinding, 0, len(findings))
	for _, f := range findings {
		enriched = append(enriched, ReportFinding{
			Code:        string(f.Code),
			Category:    string(f.Category),
			Severity:    string(f.Severity),
			Text:        f.Text,
			Impact:      engine.ImpactText(f.Code),
			Remediation: engine.RemediationText(f.Code),
		})
	}
	return enriched
}

func (h *Handler) indexDocument(ctx context.Context, doc *ReportDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal document: %v", ErrIndexFailed, err)
	}

	res, err := h.es.Index(
		h.config.Index,
		bytes.NewReader(data),
		h.es.Index.WithDocumentID(doc.AssessmentID),
		h.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}
	return nil
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
