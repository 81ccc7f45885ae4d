package models

import (
	"github.com/google/uuid"
)

// Section is a class of students sharing a strand.
//
// The number of enrolled students is not stored, it is always
// computed from the students referencing the section.
type Section struct {
	DefaultModel
	SectionName    string       `json:"sectionName" gorm:"size:128;index:section_name_strand" example:"STEM-A"`
	Strand         Strand       `json:"strand" gorm:"size:16;index:section_name_strand;index" example:"STEM"`
	Track          string       `json:"track" gorm:"size:64" example:"Academic"`
	Capacity       int          `json:"capacity" gorm:"check:section_capacity_positive,capacity > 0" example:"40"`
	RoomNumber     *string      `json:"roomNumber" gorm:"size:32;index" example:"R101"`
	TeacherID      *uuid.UUID   `json:"teacherId" gorm:"type:char(36)" example:"2c6ab2a9-5b0c-4f3c-9c66-0b1a4f6c7b1d"`
	AdviserID      *uuid.UUID   `json:"adviserId" gorm:"type:char(36)" example:"2c6ab2a9-5b0c-4f3c-9c66-0b1a4f6c7b1d"`
	AcademicYearID *uuid.UUID   `json:"academicYearId" gorm:"type:char(36)" example:"f1b7c3de-55a4-4f6e-b8e0-41a7c1b2f1a0"`
	Status         RecordStatus `json:"status" gorm:"size:16;default:Active;index" example:"Active"`
}

// SectionView is a section together with its occupancy.
type SectionView struct {
	Section
	StudentCount   int    `json:"studentCount" example:"38"`
	AvailableSlots int    `json:"availableSlots" example:"2"`
	IsFull         bool   `json:"isFull" example:"false"`
	RoomCapacity   *int   `json:"roomCapacity" example:"45"`
	TeacherName    string `json:"teacherName" example:"Maria Santos"`
	AdviserName    string `json:"adviserName" example:"Jose Reyes"`
}

// Occupancy computes the derived attributes from the enrolled student count.
func (s *SectionView) Occupancy(studentCount int) {
	s.StudentCount = studentCount
	s.AvailableSlots = s.Capacity - studentCount
	s.IsFull = studentCount >= s.Capacity
}
