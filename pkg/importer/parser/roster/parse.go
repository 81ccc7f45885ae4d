package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
	"github.com/smartenroll/backend/pkg/importer"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
)

// required columns of the header line
var required = []string{"lrn", "first_name", "last_name", "email", "strand"}

// Parse reads a roster CSV file.
//
// The first line names the columns, their order does not matter.
// Unknown columns are ignored. Values are trimmed.
func Parse(f io.Reader) ([]importer.Row, error) {
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []importer.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read the header of the CSV: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("the CSV has no %q column", name)
		}
	}

	rows := []importer.Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError carries the line already
			return []importer.Row{}, fmt.Errorf("could not read line in CSV: %w", err)
		}

		value := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		in := registrar.EnrollInput{
			LRN:             value("lrn"),
			FirstName:       value("first_name"),
			MiddleName:      value("middle_name"),
			LastName:        value("last_name"),
			Email:           value("email"),
			ContactNumber:   value("contact_number"),
			Gender:          value("gender"),
			Address:         value("address"),
			GuardianName:    value("guardian_name"),
			GuardianContact: value("guardian_contact"),
			LastSchool:      value("last_school"),
			Strand:          models.Strand(strings.ToUpper(value("strand"))),
			Track:           value("track"),
			GradeLevel:      value("grade_level"),
			PaymentMode:     value("payment_mode"),
		}

		if in.LRN == "" {
			return csvReadError(reader, errors.New("the LRN is empty"))
		}

		if s := value("date_of_birth"); s != "" {
			in.DateOfBirth, err = types.ParseDate(s)
			if err != nil {
				return csvReadError(reader, fmt.Errorf("could not parse date of birth: %w", err))
			}
		}

		if s := value("total_fees"); s != "" {
			in.TotalFees, err = decimal.NewFromString(s)
			if err != nil {
				return csvReadError(reader, errors.New("total fees could not be parsed to a decimal"))
			}
		}

		if s := value("section_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				return csvReadError(reader, errors.New("the section ID is not a valid UUID"))
			}
			in.SectionID = &id
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, importer.Row{Line: line, Student: in})
	}

	return rows, nil
}

// csvReadError returns the error with the line of the input it occurred in.
func csvReadError(r *csv.Reader, err error) ([]importer.Row, error) {
	line, _ := r.FieldPos(0)

	return []importer.Row{}, fmt.Errorf("error in line %d of the CSV: %w", line, err)
}
