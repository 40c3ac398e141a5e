package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"

	// Request validation
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Generation specific errors
	CodeInferenceFailure     ErrorCode = "INFERENCE_FAILURE"
	CodeConfigLoad           ErrorCode = "CONFIG_LOAD_ERROR"
	CodeInsufficientKeywords ErrorCode = "INSUFFICIENT_KEYWORDS"
	CodeGenerationNotFound   ErrorCode = "GENERATION_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithContext attaches a detail value that is returned to API callers.
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
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

// NewInferenceError wraps a failed or undecodable call to an inference service.
// It is fatal to the generation call it occurred in.
func NewInferenceError(operation string, err error) *DomainError {
	return NewError(CodeInferenceFailure, fmt.Sprintf("inference call failed: %s", operation), err)
}

// NewConfigLoadError reports a catalog file that could not be used. The caller
// falls back to built-in defaults.
func NewConfigLoadError(path string, err error) *DomainError {
	return NewError(CodeConfigLoad, fmt.Sprintf("could not load %s", path), err)
}

func NewInsufficientKeywordsError(found []string) *DomainError {
	return NewError(CodeInsufficientKeywords, "Too few of your keywords appear in the text.", nil).
		WithContext("found_keywords", found)
}

func NewGenerationNotFoundError(id string) *DomainError {
	return NewError(CodeGenerationNotFound, fmt.Sprintf("Generation not found with ID: %s", id), nil)
}

// IsCode reports whether err is a DomainError carrying code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if de, ok := err.(*DomainError); ok && de.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
