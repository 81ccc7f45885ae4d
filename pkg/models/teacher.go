package models

import (
	"github.com/smartenroll/backend/internal/types"
)

type Teacher struct {
	DefaultModel
	FullName       string       `json:"fullName" gorm:"size:255" example:"Maria Santos"`
	Email          string       `json:"email" gorm:"uniqueIndex;size:255" example:"maria.santos@school.edu"`
	ContactNumber  string       `json:"contactNumber" gorm:"size:32" example:"09171234567"`
	Department     string       `json:"department" gorm:"size:128" example:"Science"`
	Specialization string       `json:"specialization" gorm:"size:128" example:"Physics"`
	HireDate       types.Date   `json:"hireDate" example:"2024-06-03"`
	Status         RecordStatus `json:"status" gorm:"size:16;default:Active" example:"Active"`
}
