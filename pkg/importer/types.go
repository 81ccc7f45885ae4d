package importer

import (
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
)

// Row is a student parsed from a roster file.
type Row struct {
	Line    int                   // Line of the row in the source file
	Student registrar.EnrollInput // Intake form built from the row
}

// Failure is a row that could not be enrolled.
type Failure struct {
	Line int
	LRN  string
	Err  error
}

// Summary is the outcome of an import.
type Summary struct {
	Enrolled []models.Student
	Failed   []Failure
}
