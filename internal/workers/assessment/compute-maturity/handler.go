package computematurity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/common/store"
	"assessment-workers/internal/engine"
	"assessment-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "compute-maturity"
)

var (
	ErrMissingAssessmentID = errors.New("MISSING_ASSESSMENT_ID")
	ErrAnswersLoadFailed   = errors.New("ANSWERS_LOAD_FAILED")
)

type Handler struct {
	config *Config
	store  *store.Store
	redis  *redis.Client
	logger logger.Logger
	errs   *apperrors.ErrorHandler
}

func NewHandler(config *Config, st *store.Store, redisClient *redis.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  st,
		redis:  redisClient,
		logger: scoped,
		errs:   apperrors.NewErrorHandler(scoped),
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
		h.reportFailure(client, job, asStandardError(err))
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

// asStandardError maps execute's sentinel errors onto the shared error
// vocabulary, which carries the retry policy per code.
func asStandardError(err error) error {
	switch {
	case errors.Is(err, ErrMissingAssessmentID):
		return apperrors.NewPayloadValidationFailedError("assessmentId is required")
	case errors.Is(err, ErrAnswersLoadFailed):
		return apperrors.NewAnswersLoadFailedError(err)
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
	answers := models.GlobalAnswers(input.Answers)

	// Inline answers take precedence over the stored questionnaire.
	// Only stored answers go through the cache: inline payloads have no
	// stable identity to key on.
	fromStore := answers == nil
	cacheKey := "maturity:" + input.AssessmentID

	if fromStore {
		if input.AssessmentID == "" {
			return nil, ErrMissingAssessmentID
		}
		if h.redis != nil {
			if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
				var cached Output
				if err := json.Unmarshal([]byte(val), &cached); err == nil {
					cached.FromCache = true
					return &cached, nil
				}
			}
		}
		loaded, err := h.store.LoadGlobalAnswers(ctx, input.AssessmentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAnswersLoadFailed, err)
		}
		answers = loaded
	}

	result := engine.ComputeMaturity(answers)

	dimensions := make(map[string]float64, len(result.Dimensions))
	for dim, score := range result.Dimensions {
		dimensions[string(dim)] = score
	}

	metrics.MaturityLevelComputed.WithLabelValues(result.Level).Inc()

	h.logger.Info("maturity computed", map[string]interface{}{
		"assessmentId":  input.AssessmentID,
		"maturityScore": result.Overall,
		"maturityLevel": result.Level,
	})

	output := &Output{
		MaturityScore:   result.Overall,
		MaturityLevel:   result.Level,
		DimensionScores: dimensions,
	}

	if fromStore && h.redis != nil {
		if data, err := json.Marshal(output); err == nil {
			if err := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); err != nil {
				h.logger.Warn("maturity cache write failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	return output, nil
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
