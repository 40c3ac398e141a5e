package domain

import (
	"fmt"
	"strings"
)

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string    `json:"field"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field problem of one request.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Message: message}
}

func NewMissingFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Code: CodeMissingField, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Code: CodeInvalidFormat, Message: fmt.Sprintf("invalid value %v", value)}
}

func NewOutOfRangeError(field string, value, min, max int) *ValidationError {
	return &ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("value %d must be between %d and %d", value, min, max),
	}
}
