package httperrors

import "github.com/smartenroll/backend/pkg/models"

// HTTPError is the body of every error response.
type HTTPError struct {
	Error  string              `json:"error" example:"the specified resource ID is not a valid UUID"`
	Fields []models.FieldError `json:"fields,omitempty"`
}
