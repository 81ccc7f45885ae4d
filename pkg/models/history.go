package models

import (
	"time"

	"github.com/google/uuid"
)

// StudentStatusHistory records every change of a student's status.
type StudentStatusHistory struct {
	DefaultModel
	StudentID uuid.UUID     `json:"studentId" gorm:"type:char(36);index"`
	OldStatus StudentStatus `json:"oldStatus" gorm:"size:16"`
	NewStatus StudentStatus `json:"newStatus" gorm:"size:16"`
	Reason    string        `json:"reason"`
	ChangedBy *uuid.UUID    `json:"changedBy" gorm:"type:char(36)"`
}

// SectionAssignment records which section a student was seated in and when.
// Rows are never updated except for closing the current assignment.
type SectionAssignment struct {
	DefaultModel
	StudentID    uuid.UUID  `json:"studentId" gorm:"type:char(36);index"`
	SectionID    uuid.UUID  `json:"sectionId" gorm:"type:char(36);index"`
	AssignedBy   *uuid.UUID `json:"assignedBy" gorm:"type:char(36)"`
	AssignedDate time.Time  `json:"assignedDate"`
	RemovedDate  *time.Time `json:"removedDate"`
	IsCurrent    bool       `json:"isCurrent" gorm:"index"`
}
