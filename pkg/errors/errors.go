// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Scenario parsing errors (1100-1199)
	CodeEmptyScenario     = 1100
	CodeSceneParseFailed  = 1101
	CodeSceneParseTimeout = 1102
	CodeNoScenes          = 1103

	// Timeline planning errors (1200-1299)
	CodePlanFailed      = 1200
	CodeUnknownModel    = 1201
	CodeEmptyModelId    = 1202
	CodeTooManySegments = 1203

	// Prompt compilation errors (1300-1399)
	CodeCompileFailed    = 1300
	CodeImproveFailed    = 1301
	CodeImproveTimeout   = 1302
	CodeLLMQuotaExceeded = 1303

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeTaskNotFound   = 1501
	CodeFileWriteError = 1502

	// Queue errors (1600-1699)
	CodeEnqueueFailed = 1600
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "参数错误 Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "资源不存在 Resource not found")

	// Scenario parsing
	ErrEmptyScenario    = New(CodeEmptyScenario, "剧本内容为空 Scenario text is empty")
	ErrSceneParseFailed = New(CodeSceneParseFailed, "场景解析失败 Scene parsing failed")
	ErrNoScenes         = New(CodeNoScenes, "未解析出任何场景 No scenes produced")

	// Planning
	ErrPlanFailed   = New(CodePlanFailed, "时间线规划失败 Timeline planning failed")
	ErrEmptyModelId = New(CodeEmptyModelId, "目标模型不能为空 Target model id is empty")

	// Compilation
	ErrImproveFailed = New(CodeImproveFailed, "提示词润色失败 Prompt improvement failed")

	// Storage
	ErrDBError      = New(CodeDBError, "数据库错误 Database error")
	ErrTaskNotFound = New(CodeTaskNotFound, "任务不存在 Task not found")
)
