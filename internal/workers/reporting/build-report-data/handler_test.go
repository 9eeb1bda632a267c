package buildreportdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	apperrors "assessment-workers/internal/common/errors"
	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/store"
	"assessment-workers/internal/engine"
	"assessment-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockTransport struct {
	lastRequest *http.Request
	statusCode  int
	body        string
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lastRequest = req
	return &http.Response{
		StatusCode: t.statusCode,
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}, "Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(t.body)),
	}, nil
}

func newTestES(t *testing.T, transport *mockTransport) *elasticsearch.Client {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	return es
}

func createTestHandler(t *testing.T, es *elasticsearch.Client, config *Config) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	handler, err := NewHandler(config, nil, es, logger.NewTestLogger(t))
	require.NoError(t, err)
	handler.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return handler
}

func sampleResult() engine.ValidationResult {
	return engine.ValidationResult{
		UseCase: models.UseCase{ID: "uc-churn", Title: "Churn prediction"},
		Status:  engine.StatusYellow,
		ReadinessScore: 6.5,
		MaturityGap:    0.8,
		Blockers: []engine.Finding{{
			Code:     engine.CodeNoMLOpsPlatform,
			Category: engine.CatTecnologia,
			Severity: engine.SeverityBlocker,
			Text:     "[CRITICO - Tecnologia] No cuenta con plataforma MLOps para el ciclo de vida de modelos",
		}},
		Warnings: []engine.Finding{{
			Code:     engine.CodeLowAITalent,
			Category: engine.CatPersonas,
			Severity: engine.SeverityWarning,
			Text:     "[ATENCION - Personas] Disponibilidad insuficiente de talento especializado en IA",
		}},
		Recommendations: []string{"Priorizar quick wins"},
	}
}

func sampleInput() *Input {
	return &Input{
		AssessmentID:      "assess-1",
		Organization:      "Acme Retail",
		MaturityScore:     3.1,
		MaturityLevel:     engine.LevelIntermediate,
		DimensionScores:   map[string]float64{"datos": 3.0},
		ValidationResults: []engine.ValidationResult{sampleResult()},
	}
}

// ==========================
// Document Building
// ==========================

func TestBuildDocument_EnrichesFindings(t *testing.T) {
	handler := createTestHandler(t, nil, nil)
	doc := handler.buildDocument(sampleInput())

	require.Len(t, doc.UseCases, 1)
	uc := doc.UseCases[0]

	require.Len(t, uc.Blockers, 1)
	blocker := uc.Blockers[0]
	assert.Equal(t, "NO_MLOPS_PLATFORM", blocker.Code)
	assert.Equal(t, engine.ImpactText(engine.CodeNoMLOpsPlatform), blocker.Impact)
	assert.Equal(t, engine.RemediationText(engine.CodeNoMLOpsPlatform), blocker.Remediation)
	assert.NotEmpty(t, blocker.Impact)
	assert.NotEmpty(t, blocker.Remediation)

	require.Len(t, uc.Warnings, 1)
	assert.Equal(t, "LOW_AI_TALENT", uc.Warnings[0].Code)
	assert.True(t, strings.HasPrefix(uc.Warnings[0].Text, "[ATENCION - Personas]"))

	assert.Equal(t, "assess-1", doc.AssessmentID)
	assert.Equal(t, 3.1, doc.MaturityScore)
	assert.False(t, doc.GeneratedAt.IsZero())
}

func TestBuildDocument_EmptyResultsKeepArrays(t *testing.T) {
	handler := createTestHandler(t, nil, nil)
	input := sampleInput()
	input.ValidationResults = nil

	doc := handler.buildDocument(input)
	assert.NotNil(t, doc.UseCases)
	assert.Empty(t, doc.UseCases)
}

// ==========================
// Schema Validation
// ==========================

func TestHandler_Execute_SchemaViolationStrict(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	input := sampleInput()
	input.ValidationResults[0].Status = "purple"

	output, err := handler.Execute(context.Background(), input)
	assert.ErrorIs(t, err, ErrSchemaInvalid)
	assert.Nil(t, output)
}

func TestHandler_Execute_MissingAssessmentID(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrMissingAssessmentID)
	assert.Nil(t, output)
}

// ==========================
// Indexing
// ==========================

func TestHandler_Execute_IndexesDocument(t *testing.T) {
	transport := &mockTransport{statusCode: http.StatusCreated, body: `{"result":"created"}`}
	handler := createTestHandler(t, newTestES(t, transport), nil)

	output, err := handler.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.True(t, output.Indexed)
	assert.Equal(t, "assessment-reports", output.Index)
	assert.Equal(t, "assess-1", output.DocumentID)
	assert.Equal(t, 1, output.UseCases)

	require.NotNil(t, transport.lastRequest)
	assert.Equal(t, "/assessment-reports/_doc/assess-1", transport.lastRequest.URL.Path)

	body, err := io.ReadAll(transport.lastRequest.Body)
	require.NoError(t, err)

	var doc ReportDocument
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "Acme Retail", doc.Organization)
	assert.Equal(t, engine.LevelIntermediate, doc.MaturityLevel)
}

// ==========================
// Error Mapping
// ==========================

func TestAsStandardError(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	stdErr, ok := handler.asStandardError(fmt.Errorf("%w: es down", ErrIndexFailed)).(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeReportIndexFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, apperrors.ConvertToBPMNError(stdErr).Retries)

	stdErr, ok = handler.asStandardError(fmt.Errorf("%w: bad status", ErrSchemaInvalid)).(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeReportSchemaInvalid, stdErr.Code)
	assert.False(t, stdErr.Retryable)

	stdErr, ok = handler.asStandardError(fmt.Errorf("%w: no rows", ErrRecomputeFailed)).(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidationRecomputeFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)

	assert.Equal(t, assert.AnError, handler.asStandardError(assert.AnError))
}

// ==========================
// Recompute Fallback
// ==========================

func TestHandler_Execute_RecomputesWhenResultsMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT question_key, answer").
		WithArgs("assess-1").
		WillReturnRows(sqlmock.NewRows([]string{"question_key", "answer"}).
			AddRow("estrategia_1", []byte(`4`)).
			AddRow("datos_1", []byte(`true`)).
			AddRow("datos_2", []byte(`3`)).
			AddRow("tecnologia_1", []byte(`true`)).
			AddRow("tecnologia_2", []byte(`true`)))

	mock.ExpectQuery("SELECT use_case_id, title").
		WithArgs("assess-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"use_case_id", "title", "description", "industry", "impact",
			"complexity", "ai_type", "data_requirements", "required_maturity",
		}).AddRow(
			"uc-churn", "Churn prediction", "Predecir bajas", "retail", "high",
			"medium", "ml", "structured", 3.0,
		))

	mock.ExpectQuery("SELECT use_case_id, answers, score").
		WithArgs("assess-1").
		WillReturnRows(sqlmock.NewRows([]string{"use_case_id", "answers", "score"}).
			AddRow("uc-churn", []byte(`{"q1":4}`), 3.5))

	transport := &mockTransport{statusCode: http.StatusCreated, body: `{"result":"created"}`}
	handler := createTestHandler(t, newTestES(t, transport), nil)
	handler.store = store.New(db)

	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
	require.NoError(t, err)

	assert.True(t, output.Indexed)
	assert.Equal(t, 1, output.UseCases)

	body, err := io.ReadAll(transport.lastRequest.Body)
	require.NoError(t, err)

	var doc ReportDocument
	require.NoError(t, json.Unmarshal(body, &doc))
	require.Len(t, doc.UseCases, 1)
	assert.Equal(t, "uc-churn", doc.UseCases[0].UseCaseID)
	assert.Equal(t, engine.LevelInitial, doc.MaturityLevel)
	assert.Equal(t, 4.0, doc.DimensionScores["estrategia"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RecomputeWithoutStore(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
	assert.ErrorIs(t, err, ErrRecomputeFailed)
	assert.Nil(t, output)
}

func TestHandler_Execute_RecomputeStoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT question_key, answer").
		WithArgs("assess-1").
		WillReturnError(assert.AnError)

	handler := createTestHandler(t, nil, nil)
	handler.store = store.New(db)

	output, err := handler.Execute(context.Background(), &Input{AssessmentID: "assess-1"})
	assert.ErrorIs(t, err, ErrRecomputeFailed)
	assert.Nil(t, output)
}

func TestHandler_Execute_IndexError(t *testing.T) {
	transport := &mockTransport{statusCode: http.StatusInternalServerError, body: `{"error":"boom"}`}
	handler := createTestHandler(t, newTestES(t, transport), nil)

	output, err := handler.Execute(context.Background(), sampleInput())
	assert.ErrorIs(t, err, ErrIndexFailed)
	assert.Nil(t, output)
}
