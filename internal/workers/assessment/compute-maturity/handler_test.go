package computematurity

import (
	"context"
	"fmt"
	"testing"

	apperrors "assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T, st *store.Store) *Handler {
	testLog := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(), st, nil, testLog)
}

func createCachedTestHandler(t *testing.T, st *store.Store) (*Handler, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	testLog := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(), st, rdb, testLog), mr
}

func fullRatingAnswers() map[string]interface{} {
	return map[string]interface{}{
		"estrategia_1": 5.0,
		"estrategia_2": true,
		"datos_1":      true,
		"datos_2":      5.0,
		"tecnologia_1": true,
		"tecnologia_2": true,
		"tecnologia_3": 5.0,
		"personas_1":   5.0,
		"personas_2":   true,
		"valor_1":      5.0,
		"riesgos_1":    5.0,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_InlineAnswers(t *testing.T) {
	handler := createTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{
		AssessmentID: "assess-1",
		Answers:      fullRatingAnswers(),
	})

	require.NoError(t, err)
	assert.Equal(t, 5.0, output.MaturityScore)
	assert.Equal(t, "Advanced", output.MaturityLevel)
	assert.Len(t, output.DimensionScores, 6)
	assert.Equal(t, 5.0, output.DimensionScores["estrategia"])
}

func TestHandler_Execute_LoadsAnswersFromStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"question_key", "answer"}).
		AddRow("estrategia_1", []byte(`2`)).
		AddRow("datos_2", []byte(`3`))

	mock.ExpectQuery("SELECT question_key, answer").
		WithArgs("assess-1").
		WillReturnRows(rows)

	handler := createTestHandler(t, store.New(db))
	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})

	require.NoError(t, err)
	assert.Equal(t, "Initial", output.MaturityLevel)
	assert.Equal(t, 2.0, output.DimensionScores["estrategia"])
	assert.Equal(t, 3.0, output.DimensionScores["datos"])
	assert.Zero(t, output.DimensionScores["valor"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EmptyAnswersYieldInitial(t *testing.T) {
	handler := createTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{
		AssessmentID: "assess-1",
		Answers:      map[string]interface{}{},
	})

	require.NoError(t, err)
	assert.Zero(t, output.MaturityScore)
	assert.Equal(t, "Initial", output.MaturityLevel)
}

// ==========================
// Cache Tests
// ==========================

func TestHandler_Execute_CachesStoredResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"question_key", "answer"}).
		AddRow("estrategia_1", []byte(`4`)).
		AddRow("datos_2", []byte(`4`))

	// A single query expectation: the second Execute must be served
	// from the cache without touching the database.
	mock.ExpectQuery("SELECT question_key, answer").
		WithArgs("assess-1").
		WillReturnRows(rows)

	handler, mr := createCachedTestHandler(t, store.New(db))

	first, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.True(t, mr.Exists("maturity:assess-1"))

	second, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.MaturityScore, second.MaturityScore)
	assert.Equal(t, first.MaturityLevel, second.MaturityLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InlineAnswersSkipCache(t *testing.T) {
	handler, mr := createCachedTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{
		AssessmentID: "assess-1",
		Answers:      fullRatingAnswers(),
	})

	require.NoError(t, err)
	assert.False(t, output.FromCache)
	assert.False(t, mr.Exists("maturity:assess-1"))
}

// ==========================
// Error Cases
// ==========================

func TestHandler_Execute_MissingAssessmentID(t *testing.T) {
	handler := createTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{})

	assert.ErrorIs(t, err, ErrMissingAssessmentID)
	assert.Nil(t, output)
}

func TestAsStandardError(t *testing.T) {
	stdErr, ok := asStandardError(ErrMissingAssessmentID).(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePayloadValidationFailed, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Zero(t, apperrors.ConvertToBPMNError(stdErr).Retries)

	stdErr, ok = asStandardError(fmt.Errorf("%w: boom", ErrAnswersLoadFailed)).(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAnswersLoadFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, apperrors.ConvertToBPMNError(stdErr).Retries)

	// Unknown errors pass through for the shared handler to normalize
	assert.Equal(t, assert.AnError, asStandardError(assert.AnError))
}

func TestHandler_Execute_StoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT question_key, answer").
		WithArgs("assess-1").
		WillReturnError(assert.AnError)

	handler := createTestHandler(t, store.New(db))
	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})

	assert.ErrorIs(t, err, ErrAnswersLoadFailed)
	assert.Nil(t, output)
}
