package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
	"gorm.io/gorm"
)

// Student is an enrolled learner.
//
// AmountPaid, Balance and PaymentStatus are aggregates over the
// student's payments and are only changed together.
type Student struct {
	DefaultModel
	LRN             string          `json:"lrn" gorm:"uniqueIndex;size:12" example:"123456789012"` // Learner Reference Number
	FullName        string          `json:"fullName" gorm:"size:255;index" example:"Juan Santos Dela Cruz"`
	FirstName       string          `json:"firstName" gorm:"size:128" example:"Juan"`
	MiddleName      string          `json:"middleName" gorm:"size:128" example:"Santos"`
	LastName        string          `json:"lastName" gorm:"size:128" example:"Dela Cruz"`
	Email           string          `json:"email" gorm:"uniqueIndex;size:255" example:"juan@example.com"`
	ContactNumber   string          `json:"contactNumber" gorm:"size:32" example:"09171234567"`
	Gender          string          `json:"gender" gorm:"size:16" example:"Male"`
	DateOfBirth     types.Date      `json:"dateOfBirth" example:"2008-04-12"`
	Address         string          `json:"address" example:"N/A"`
	GuardianName    string          `json:"guardianName" gorm:"size:255" example:"Maria Dela Cruz"`
	GuardianContact string          `json:"guardianContact" gorm:"size:32" example:"09181234567"`
	LastSchool      string          `json:"lastSchool" gorm:"size:255" example:"San Isidro National High School"`
	Strand          Strand          `json:"strand" gorm:"size:16;index" example:"STEM"`
	Track           string          `json:"track" gorm:"size:64" example:"Academic"`
	GradeLevel      string          `json:"gradeLevel" gorm:"size:8" example:"11"`
	SectionID       *uuid.UUID      `json:"sectionId" gorm:"type:char(36);index" example:"e0b2a4f4-2f7e-4a9d-a1a5-8b3f5c1c2d3e"`
	Section         *Section        `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	AcademicYearID  *uuid.UUID      `json:"academicYearId" gorm:"type:char(36);index" example:"f1b7c3de-55a4-4f6e-b8e0-41a7c1b2f1a0"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"size:16" example:"Partial"`
	PaymentMode     string          `json:"paymentMode" gorm:"size:32" example:"Full Payment"`
	Status          StudentStatus   `json:"status" gorm:"size:16;index" example:"Enrolled"`
	StatusReason    string          `json:"statusReason" example:""`
	StatusChangedAt *time.Time      `json:"statusChangedAt" example:"2024-08-01T09:12:00Z"`
	StatusChangedBy *uuid.UUID      `json:"statusChangedBy" gorm:"type:char(36)" example:"9a7a6c7e-1d39-4d5b-8cfb-5a1b3c2d4e5f"`
	EnrollmentDate  time.Time       `json:"enrollmentDate" gorm:"index" example:"2024-06-03T08:00:00Z"`
	TotalFees       decimal.Decimal `json:"totalFees" gorm:"type:DECIMAL(20,8)" example:"10000"`
	AmountPaid      decimal.Decimal `json:"amountPaid" gorm:"type:DECIMAL(20,8)" example:"4000"`
	Balance         decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,8)" example:"6000"`
}

// AfterFind sets the timezone of the enrollment date to UTC.
func (s *Student) AfterFind(tx *gorm.DB) (err error) {
	err = s.DefaultModel.AfterFind(tx)
	s.EnrollmentDate = s.EnrollmentDate.In(time.UTC)
	return err
}

// ApplyPayment adds amount to the amount paid and recomputes the
// balance and the payment status. Negative amounts reverse a payment.
func (s *Student) ApplyPayment(amount decimal.Decimal) {
	s.AmountPaid = s.AmountPaid.Add(amount)
	s.Balance = s.TotalFees.Sub(s.AmountPaid)
	s.PaymentStatus = DerivePaymentStatus(s.AmountPaid, s.TotalFees)
}

// StudentSummary is the compact representation used in lists and searches.
type StudentSummary struct {
	ID             uuid.UUID     `json:"id" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	LRN            string        `json:"lrn" example:"123456789012"`
	FullName       string        `json:"fullName" example:"Juan Santos Dela Cruz"`
	Email          string        `json:"email" example:"juan@example.com"`
	Strand         Strand        `json:"strand" example:"STEM"`
	GradeLevel     string        `json:"gradeLevel" example:"11"`
	Gender         string        `json:"gender" example:"Male"`
	SectionID      *uuid.UUID    `json:"sectionId" example:"e0b2a4f4-2f7e-4a9d-a1a5-8b3f5c1c2d3e"`
	SectionName    *string       `json:"sectionName" example:"STEM-A"`
	PaymentStatus  PaymentStatus `json:"paymentStatus" example:"Pending"`
	Status         StudentStatus `json:"status" example:"Enrolled"`
	EnrollmentDate time.Time     `json:"enrollmentDate" example:"2024-06-03T08:00:00Z"`
}
