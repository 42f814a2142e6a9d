package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Upload and backend errors
	CodeUnsupportedMedia   ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	CodeFileTooLarge       ErrorCode = "FILE_TOO_LARGE"
	CodeUploadFailed       ErrorCode = "UPLOAD_FAILED"
	CodeGenerationFailed   ErrorCode = "GENERATION_FAILED"
	CodeHistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"

	// Practice flow errors
	CodeNoFile          ErrorCode = "NO_FILE_SELECTED"
	CodeNoDocument      ErrorCode = "NO_DOCUMENT"
	CodeNoQuiz          ErrorCode = "NO_QUIZ"
	CodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a detail that is surfaced to API clients.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of a wrapped DomainError, or CodeInternal.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnsupportedMediaError(mimeType string) *DomainError {
	return NewError(CodeUnsupportedMedia, "Only PDF files are supported", nil).
		WithContext("detected_type", mimeType)
}

func NewFileTooLargeError(size, limit int64) *DomainError {
	return NewError(CodeFileTooLarge, "File exceeds the upload limit", nil).
		WithContext("size", size).
		WithContext("limit", limit)
}

func NewUploadFailedError(err error) *DomainError {
	return NewError(CodeUploadFailed, "PDF upload failed", err)
}

func NewGenerationFailedError(err error) *DomainError {
	return NewError(CodeGenerationFailed, "Quiz generation failed", err)
}

func NewHistoryUnavailableError(err error) *DomainError {
	return NewError(CodeHistoryUnavailable, "Attempt history is unavailable", err)
}

func NewNoFileError() *DomainError {
	return NewError(CodeNoFile, "No PDF file selected", nil)
}

func NewNoDocumentError() *DomainError {
	return NewError(CodeNoDocument, "Upload a PDF before generating a quiz", nil)
}

func NewNoQuizError() *DomainError {
	return NewError(CodeNoQuiz, "No quiz in progress", nil)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeSessionNotFound, fmt.Sprintf("Session not found: %s", sessionID), nil)
}
