package models

import (
	"errors"
	"strings"
)

var (
	ErrGeneral             = errors.New("an error occurred on the server during your request")
	ErrStoreUnavailable    = errors.New("the database is currently not reachable, please try again later")
	ErrResourceNotFound    = errors.New("there is no")
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateKey        = errors.New("duplicate entry")
	ErrReferenced          = errors.New("still in use")
	ErrCapacityExceedsRoom = errors.New("section capacity exceeds room capacity")
	ErrSectionFull         = errors.New("the section has no available slots")
)

// FieldError is a single violated constraint.
type FieldError struct {
	Field   string `json:"field" example:"lrn"`
	Message string `json:"message" example:"lrn must be 12 digits"`
}

// ValidationError lists every field that failed validation, not just the first.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// NewValidationError creates a ValidationError from field errors.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed so that the result can be returned as error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}

	return ErrValidation.Error() + ": " + strings.Join(messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
