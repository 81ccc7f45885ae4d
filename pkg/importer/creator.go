package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
	"golang.org/x/exp/slices"
)

var ErrDuplicateInFile = errors.New("the LRN appears more than once in the file")

// Enroller admits a single student.
type Enroller interface {
	Enroll(ctx context.Context, in registrar.EnrollInput, actingUserID *uuid.UUID) (models.Student, error)
}

// Create enrolls every row on its own. A failing row does not stop the
// import, it is reported in the summary with its line.
//
// Store outages abort the import since no later row can succeed.
func Create(ctx context.Context, e Enroller, rows []Row, actingUserID *uuid.UUID) (Summary, error) {
	summary := Summary{
		Enrolled: []models.Student{},
		Failed:   []Failure{},
	}

	for idx, row := range rows {
		if slices.ContainsFunc(rows[:idx], func(r Row) bool { return r.Student.LRN == row.Student.LRN }) {
			summary.Failed = append(summary.Failed, Failure{Line: row.Line, LRN: row.Student.LRN, Err: ErrDuplicateInFile})
			continue
		}

		student, err := e.Enroll(ctx, row.Student, actingUserID)
		if errors.Is(err, models.ErrStoreUnavailable) {
			return summary, fmt.Errorf("import stopped at line %d: %w", row.Line, err)
		}

		if err != nil {
			log.Debug().Int("line", row.Line).Str("lrn", row.Student.LRN).Err(err).Msg("roster row rejected")
			summary.Failed = append(summary.Failed, Failure{Line: row.Line, LRN: row.Student.LRN, Err: err})
			continue
		}

		summary.Enrolled = append(summary.Enrolled, student)
	}

	return summary, nil
}
