package models

import (
	"github.com/smartenroll/backend/internal/types"
)

// AcademicYear groups students, sections and payments by school year.
// At most one academic year is active.
type AcademicYear struct {
	DefaultModel
	YearName  string     `json:"yearName" gorm:"uniqueIndex;size:32" example:"2024-2025"`
	StartDate types.Date `json:"startDate" example:"2024-06-03"`
	EndDate   types.Date `json:"endDate" example:"2025-03-28"`
	Semester  string     `json:"semester" gorm:"size:32" example:"Full Year"`
	IsActive  bool       `json:"isActive" example:"true"`
}
