// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1002"
	CodeConflict           ErrorCode = "1003"
	CodeTooManyRequests    ErrorCode = "1004"
	CodeInternalError      ErrorCode = "1005"
	CodeServiceUnavailable ErrorCode = "1006"

	// 资源错误 (2xxx)
	CodeProjectNotFound  ErrorCode = "2001"
	CodeProviderNotFound ErrorCode = "2002"
	CodeShotNotFound     ErrorCode = "2003"

	// 业务错误 (3xxx)
	CodeValidationFailed   ErrorCode = "3001"
	CodeExtractionMismatch ErrorCode = "3002"
	CodeUnsupportedFormat  ErrorCode = "3003"
	CodeProjectBusy        ErrorCode = "3004"

	// 外部服务错误 (4xxx)
	CodeProviderError ErrorCode = "4001"
	CodeStorageError  ErrorCode = "4002"
	CodeCacheError    ErrorCode = "4003"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 返回附带详细信息的副本，预定义错误本身不被修改
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 返回附带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound, CodeProjectNotFound, CodeProviderNotFound, CodeShotNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeProjectBusy:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case CodeProviderError:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrProjectNotFound  = New(CodeProjectNotFound, "project not found")
	ErrProviderNotFound = New(CodeProviderNotFound, "provider not found")
	ErrShotNotFound     = New(CodeShotNotFound, "shot not found")

	ErrValidationFailed   = New(CodeValidationFailed, "validation failed")
	ErrExtractionMismatch = New(CodeExtractionMismatch, "no structured payload in model reply")
	ErrUnsupportedFormat  = New(CodeUnsupportedFormat, "unsupported document format")
	ErrProjectBusy        = New(CodeProjectBusy, "another request is in flight for this project")
	ErrProviderFailed     = New(CodeProviderError, "provider call failed")
	ErrStorageFailed      = New(CodeStorageError, "storage operation failed")
)

// IsAppError 检查是否为 AppError，包含被包装的情况
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
