package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
)

// Payment is a single payment transaction of a student.
type Payment struct {
	DefaultModel
	StudentID       uuid.UUID       `json:"studentId" gorm:"type:char(36);index" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	Student         Student         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8);check:payment_amount_positive,amount > 0" example:"4000"`
	PaymentDate     types.Date      `json:"paymentDate" gorm:"index" example:"2024-06-10"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"size:32;index" example:"Cash"`
	PaymentType     string          `json:"paymentType" gorm:"size:32" example:"Tuition"`
	ReferenceNumber string          `json:"referenceNumber" gorm:"size:64" example:"GC-0042"`
	ReceiptNumber   string          `json:"receiptNumber" gorm:"uniqueIndex;size:32" example:"REC-20240610-0001"`
	AcademicYearID  *uuid.UUID      `json:"academicYearId" gorm:"type:char(36);index" example:"f1b7c3de-55a4-4f6e-b8e0-41a7c1b2f1a0"`
	Notes           string          `json:"notes" example:"First installment"`
	RecordedBy      *uuid.UUID      `json:"recordedBy" gorm:"type:char(36)" example:"9a7a6c7e-1d39-4d5b-8cfb-5a1b3c2d4e5f"`
}

// TableName keeps the table name used by existing registrar databases.
func (Payment) TableName() string {
	return "payment_transactions"
}

// PaymentView is a payment with the names of the referenced records.
type PaymentView struct {
	Payment
	StudentName      string  `json:"studentName" example:"Juan Santos Dela Cruz"`
	LRN              string  `json:"lrn" example:"123456789012"`
	RecordedByName   *string `json:"recordedByName" example:"admin"`
	AcademicYearName *string `json:"academicYearName" example:"2024-2025"`
}
