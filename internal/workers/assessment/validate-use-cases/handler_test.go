package validateusecases

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	apperrors "assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/store"
	"assessment-workers/internal/engine"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T, st *store.Store, redisClient *redis.Client) *Handler {
	testLog := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(), st, redisClient, testLog)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func healthyAnswerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"question_key", "answer"}).
		AddRow("estrategia_1", []byte(`5`)).
		AddRow("estrategia_2", []byte(`true`)).
		AddRow("datos_1", []byte(`true`)).
		AddRow("datos_2", []byte(`5`)).
		AddRow("tecnologia_1", []byte(`true`)).
		AddRow("tecnologia_2", []byte(`true`)).
		AddRow("tecnologia_3", []byte(`5`)).
		AddRow("personas_1", []byte(`5`)).
		AddRow("personas_2", []byte(`true`)).
		AddRow("valor_1", []byte(`5`)).
		AddRow("riesgos_1", []byte(`5`))
}

func useCaseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"use_case_id", "title", "description", "industry", "impact",
		"complexity", "ai_type", "data_requirements", "required_maturity",
	}).AddRow("uc-churn", "Churn prediction", "Predict churn", "retail", "high", "medium", "ml", "crm", nil)
}

func expectLoads(mock sqlmock.Sqlmock, answers, useCases, responses *sqlmock.Rows) {
	mock.ExpectQuery("SELECT question_key, answer").
		WithArgs("assess-1").WillReturnRows(answers)
	mock.ExpectQuery("SELECT use_case_id, title").
		WithArgs("assess-1").WillReturnRows(useCases)
	mock.ExpectQuery("SELECT use_case_id, answers, score").
		WithArgs("assess-1").WillReturnRows(responses)
}

func emptyResponseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"use_case_id", "answers", "score"})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_HealthyAssessment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr, redisClient := newTestRedis(t)
	expectLoads(mock, healthyAnswerRows(), useCaseRows(), emptyResponseRows())

	handler := createTestHandler(t, store.New(db), redisClient)
	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})

	require.NoError(t, err)
	require.Len(t, output.ValidationResults, 1)

	result := output.ValidationResults[0]
	assert.Equal(t, engine.StatusGreen, result.Status)
	assert.Equal(t, 10.0, result.ReadinessScore)
	assert.Empty(t, result.Blockers)
	assert.Empty(t, result.Warnings)
	assert.NotEmpty(t, result.Recommendations)

	assert.Equal(t, 5.0, output.MaturityScore)
	assert.Equal(t, engine.LevelAdvanced, output.MaturityLevel)
	assert.False(t, output.FromCache)

	// Result cached for subsequent surfaces
	assert.True(t, mr.Exists("validation:assess-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CacheHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr, redisClient := newTestRedis(t)

	cached := Output{
		ValidationResults: []engine.ValidationResult{},
		MaturityScore:     3.2,
		MaturityLevel:     engine.LevelIntermediate,
	}
	data, _ := json.Marshal(cached)
	require.NoError(t, mr.Set("validation:assess-1", string(data)))

	handler := createTestHandler(t, store.New(db), redisClient)
	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})

	require.NoError(t, err)
	assert.True(t, output.FromCache)
	assert.Equal(t, 3.2, output.MaturityScore)

	// Database must not have been touched
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_MaturityOverride(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr, redisClient := newTestRedis(t)
	expectLoads(mock, healthyAnswerRows(), useCaseRows(), emptyResponseRows())

	override := 1.5
	handler := createTestHandler(t, store.New(db), redisClient)
	output, err := handler.Execute(context.Background(), &Input{
		AssessmentID:  "assess-1",
		MaturityScore: &override,
	})

	require.NoError(t, err)
	assert.Equal(t, 1.5, output.MaturityScore)
	assert.Equal(t, engine.LevelInitial, output.MaturityLevel)

	// The forced score pushes maturity below the default requirement
	result := output.ValidationResults[0]
	codes := make([]engine.FindingCode, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, engine.CodeMaturityBelowRequired)

	// Override results live under their own cache key
	assert.True(t, mr.Exists("validation:assess-1:1.5"))
	assert.False(t, mr.Exists("validation:assess-1"))
}

func TestHandler_Execute_UnscoredResponseUsesRatingMean(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, redisClient := newTestRedis(t)

	// The score column is NULL but the ratings average well above the
	// low-score threshold; the derived mean must carry the evaluation.
	responses := sqlmock.NewRows([]string{"use_case_id", "answers", "score"}).
		AddRow("uc-churn", []byte(`{"valor_1":4,"valor_2":4}`), nil)
	expectLoads(mock, healthyAnswerRows(), useCaseRows(), responses)

	handler := createTestHandler(t, store.New(db), redisClient)
	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})

	require.NoError(t, err)
	require.Len(t, output.ValidationResults, 1)

	for _, w := range output.ValidationResults[0].Warnings {
		assert.NotEqual(t, engine.CodeLowUseCaseScore, w.Code)
	}
}

func TestHandler_Execute_EmptySelection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, redisClient := newTestRedis(t)
	emptyUseCases := sqlmock.NewRows([]string{
		"use_case_id", "title", "description", "industry", "impact",
		"complexity", "ai_type", "data_requirements", "required_maturity",
	})
	expectLoads(mock, healthyAnswerRows(), emptyUseCases, emptyResponseRows())

	handler := createTestHandler(t, store.New(db), redisClient)
	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})

	require.NoError(t, err)
	assert.NotNil(t, output.ValidationResults)
	assert.Empty(t, output.ValidationResults)
}

// ==========================
// Error Cases
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("missing assessment id", func(t *testing.T) {
		_, redisClient := newTestRedis(t)
		handler := createTestHandler(t, nil, redisClient)

		output, err := handler.Execute(context.Background(), &Input{})
		assert.ErrorIs(t, err, ErrMissingAssessmentID)
		assert.Nil(t, output)
	})

	t.Run("answers load failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		_, redisClient := newTestRedis(t)
		mock.ExpectQuery("SELECT question_key, answer").
			WithArgs("assess-1").WillReturnError(assert.AnError)

		handler := createTestHandler(t, store.New(db), redisClient)
		output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
		assert.ErrorIs(t, err, ErrAnswersLoadFailed)
		assert.Nil(t, output)
	})

	t.Run("use case load failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		_, redisClient := newTestRedis(t)
		mock.ExpectQuery("SELECT question_key, answer").
			WithArgs("assess-1").WillReturnRows(healthyAnswerRows())
		mock.ExpectQuery("SELECT use_case_id, title").
			WithArgs("assess-1").WillReturnError(assert.AnError)

		handler := createTestHandler(t, store.New(db), redisClient)
		output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
		assert.ErrorIs(t, err, ErrUseCasesLoadFailed)
		assert.Nil(t, output)
	})
}

func TestAsStandardError(t *testing.T) {
	cases := []struct {
		err       error
		code      apperrors.ErrorCode
		retryable bool
	}{
		{ErrMissingAssessmentID, apperrors.ErrCodePayloadValidationFailed, false},
		{fmt.Errorf("%w: boom", ErrAnswersLoadFailed), apperrors.ErrCodeAnswersLoadFailed, true},
		{fmt.Errorf("%w: boom", ErrUseCasesLoadFailed), apperrors.ErrCodeUseCasesLoadFailed, true},
		{fmt.Errorf("%w: boom", ErrResponsesLoadFailed), apperrors.ErrCodeResponsesLoadFailed, true},
	}
	for _, tc := range cases {
		stdErr, ok := asStandardError(tc.err).(*apperrors.StandardError)
		require.Truef(t, ok, "%v should map to a standard error", tc.err)
		assert.Equal(t, tc.code, stdErr.Code)
		assert.Equal(t, tc.retryable, stdErr.Retryable)
	}

	assert.Equal(t, assert.AnError, asStandardError(assert.AnError))
}

// ==========================
// Consistency
// ==========================

func TestHandler_Execute_CacheRoundTripMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, redisClient := newTestRedis(t)
	handler := createTestHandler(t, store.New(db), redisClient)

	expectLoads(mock, healthyAnswerRows(), useCaseRows(), emptyResponseRows())
	first, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
	require.NoError(t, err)

	// Second call is served from cache, no further queries expected
	second, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
	require.NoError(t, err)

	assert.True(t, second.FromCache)
	assert.Equal(t, first.ValidationResults, second.ValidationResults)
	assert.Equal(t, first.MaturityScore, second.MaturityScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
