package errors

import (
	stderrors "errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobStub() entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                123,
		Type:               "generate-activities",
		ProcessInstanceKey: 1230,
		Retries:            3,
	}}
}

// ==========================================
// Constructors and StandardError
// ==========================================

func TestStandardError_Error(t *testing.T) {
	err := NewAssessmentNotFoundError("assess-1")

	assert.Equal(t, ErrCodeAssessmentNotFound, err.Code)
	assert.Contains(t, err.Details, "assess-1")
	assert.False(t, err.Retryable)
	assert.Equal(t, "StandardError[ASSESSMENT_NOT_FOUND]: Assessment not found", err.Error())
}

func TestConstructorRetryability(t *testing.T) {
	cause := stderrors.New("connection refused")

	retryable := []*StandardError{
		NewAnswersLoadFailedError(cause),
		NewUseCasesLoadFailedError(cause),
		NewResponsesLoadFailedError(cause),
		NewDatabaseConnectionFailedError(cause),
		NewReportIndexFailedError("assessment-reports", cause),
		NewValidationRecomputeFailedError(cause),
		NewActivityInsertFailedError(cause),
		NewNotificationSendFailedError("email", cause),
	}
	for _, err := range retryable {
		assert.Truef(t, err.Retryable, "%s should be retryable", err.Code)
	}

	terminal := []*StandardError{
		NewAssessmentNotFoundError("assess-1"),
		NewCatalogLoadFailedError("configs/use-case-catalog.json", cause),
		NewPayloadValidationFailedError("missing assessmentId"),
		NewReportSchemaInvalidError("status: invalid enum value"),
		NewDuplicateActivityError("assess-1", "demand-forecasting"),
	}
	for _, err := range terminal {
		assert.Falsef(t, err.Retryable, "%s should not be retryable", err.Code)
	}
}

// ==========================================
// Retry policy and BPMN conversion
// ==========================================

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeAnswersLoadFailed, 3},
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeValidationRecomputeFailed, 3},
		{ErrCodeReportIndexTimeout, 2},
		{ErrCodeAssessmentNotFound, 0},
		{ErrCodeDuplicateActivity, 0},
		{ErrCodeReportSchemaInvalid, 0},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, GetRetryCount(tt.code), "code %s", tt.code)
		assert.Equalf(t, tt.want > 0, IsRetryableErrorCode(tt.code), "code %s", tt.code)
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewReportIndexFailedError("assessment-reports", stderrors.New("503"))

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "REPORT_INDEX_FAILED", bpmnErr.Code)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, "REPORT_INDEX_FAILED", bpmnErr.ErrorVariables["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryableZeroesRetries(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewDuplicateActivityError("assess-1", "uc-1"))

	assert.Equal(t, "DUPLICATE_ACTIVITY", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.False(t, bpmnErr.Retryable)
}

func TestConvertToBPMNError_UnmappedCodeFallsBack(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewBusinessRuleError("rule broken", "details"))

	assert.Equal(t, "BUSINESS_RULE_VIOLATION", bpmnErr.Code)
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewAnswersLoadFailedError(stderrors.New("timeout")))

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "ANSWERS_LOAD_FAILED", vars["errorCode"])
	assert.Equal(t, true, vars["retryable"])
	assert.Contains(t, vars, "originalErrorCode")
	assert.Contains(t, vars, "timestamp")
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeAssessmentNotFound, "ASSESSMENT"},
		{ErrCodeUseCasesLoadFailed, "ASSESSMENT"},
		{ErrCodeCatalogLoadFailed, "CATALOG"},
		{ErrCodeDatabaseConnectionFailed, "DATABASE"},
		{ErrCodeReportIndexFailed, "REPORTING"},
		{ErrCodeActivityInsertFailed, "ACTIVITY"},
		{ErrCodeNotificationSendFailed, "NOTIFICATION"},
		{ErrCodePayloadValidationFailed, "VALIDATION"},
		{ErrorCode("SOMETHING_ELSE"), "OTHER"},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, GetErrorCategory(tt.code), "code %s", tt.code)
	}
}

// ==========================================
// ErrorHandler
// ==========================================

type recordingLogger struct {
	msg    string
	fields map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.msg = msg
	l.fields = fields
}

func TestErrorHandler_NormalizeError(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	stdErr := NewAssessmentNotFoundError("assess-1")
	assert.Same(t, stdErr, h.normalizeError(stdErr))

	wrapped := h.normalizeError(stderrors.New("boom"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), wrapped.Code)
	assert.Equal(t, "boom", wrapped.Details)
	assert.False(t, wrapped.Retryable)
}

func TestErrorHandler_LogError(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	stdErr := NewDuplicateActivityError("assess-1", "uc-1")
	h.logError(jobStub(), stdErr, ConvertToBPMNError(stdErr))

	require.NotNil(t, log.fields)
	assert.Equal(t, "Job failed", log.msg)
	assert.Equal(t, "DUPLICATE_ACTIVITY", log.fields["errorCode"])
	assert.Equal(t, "DUPLICATE_ACTIVITY", log.fields["bpmnErrorCode"])
}
