package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	// Test without cause
	err := New(CodeEmptyScenario, "Test error")
	assert.Equal(t, "[1100] Test error", err.Error())

	// Test with cause
	cause := errors.New("underlying error")
	errWithCause := Wrap(CodeEmptyScenario, "Test error", cause)
	assert.Contains(t, errWithCause.Error(), "underlying error")
	assert.Contains(t, errWithCause.Error(), "1100")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(CodeSceneParseFailed, "Scene parsing failed", cause)

	// Test Unwrap
	assert.Equal(t, cause, err.Unwrap())

	// Test errors.Is
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := New(CodePlanFailed, "Planning failed")

	assert.True(t, Is(err, CodePlanFailed))
	assert.False(t, Is(err, CodeEmptyScenario))

	// Test with regular error
	regularErr := errors.New("regular error")
	assert.False(t, Is(regularErr, CodePlanFailed))
}

func TestGetCode(t *testing.T) {
	// AppError
	appErr := New(CodeLLMQuotaExceeded, "Quota exceeded")
	assert.Equal(t, CodeLLMQuotaExceeded, GetCode(appErr))

	// Regular error returns CodeUnknown
	regularErr := errors.New("regular error")
	assert.Equal(t, CodeUnknown, GetCode(regularErr))
}

func TestGetMessage(t *testing.T) {
	// AppError
	appErr := New(CodeTaskNotFound, "任务不存在 Task not found")
	assert.Equal(t, "任务不存在 Task not found", GetMessage(appErr))

	// Regular error returns error message
	regularErr := errors.New("regular error message")
	assert.Equal(t, "regular error message", GetMessage(regularErr))
}

func TestWrapWithDetail(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapWithDetail(CodeImproveFailed, "Improve failed", "provider: rest", cause)

	assert.Equal(t, CodeImproveFailed, err.Code)
	assert.Equal(t, "Improve failed", err.Message)
	assert.Equal(t, "provider: rest", err.Detail)
	assert.Equal(t, cause, err.Cause)
}

func TestPredefinedErrors(t *testing.T) {
	// Verify predefined errors have correct codes
	assert.Equal(t, CodeInvalidParams, ErrInvalidParams.Code)
	assert.Equal(t, CodeEmptyScenario, ErrEmptyScenario.Code)
	assert.Equal(t, CodeNoScenes, ErrNoScenes.Code)
	assert.Equal(t, CodeEmptyModelId, ErrEmptyModelId.Code)
	assert.Equal(t, CodeDBError, ErrDBError.Code)
	assert.Equal(t, CodeTaskNotFound, ErrTaskNotFound.Code)
}
