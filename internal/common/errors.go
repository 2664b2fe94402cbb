package common

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeInvalidInput   ErrorCode = "INVALID_INPUT"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeRateLimited    ErrorCode = "RATE_LIMITED"
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavail ErrorCode = "SERVICE_UNAVAILABLE"
)

// AppError carries a code that handlers translate into a status.
// Message is safe to show to the end user; Err is for logs.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Err: cause}
}

func NewInvalidInputError(message string) *AppError {
	return NewError(CodeInvalidInput, message)
}

func NewNotFoundError(message string) *AppError {
	return NewError(CodeNotFound, message)
}

func NewAlreadyExistsError(message string) *AppError {
	return NewError(CodeAlreadyExists, message)
}

func NewUnauthorizedError(message string) *AppError {
	return NewError(CodeUnauthorized, message)
}

func NewForbiddenError(message string) *AppError {
	return NewError(CodeForbidden, message)
}

func NewInternalErrorWithCause(message string, cause error) *AppError {
	return WrapError(CodeInternal, message, cause)
}

// CodeOf returns the code of the outermost AppError in the chain, or
// CodeInternal for anything else.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == CodeNotFound
}

func IsInvalidInput(err error) bool {
	return err != nil && CodeOf(err) == CodeInvalidInput
}

func IsUnauthorized(err error) bool {
	return err != nil && CodeOf(err) == CodeUnauthorized
}

func IsForbidden(err error) bool {
	return err != nil && CodeOf(err) == CodeForbidden
}

func IsAlreadyExists(err error) bool {
	return err != nil && CodeOf(err) == CodeAlreadyExists
}

func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeServiceUnavail:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text shown to clients. Internal failures never leak
// their cause.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		return appErr.Message
	}
	return "internal server error"
}
