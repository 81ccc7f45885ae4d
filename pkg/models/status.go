package models

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Strand is the curricular track students and sections are grouped by.
type Strand string

const (
	StrandSTEM  Strand = "STEM"
	StrandABM   Strand = "ABM"
	StrandHUMSS Strand = "HUMSS"
	StrandGAS   Strand = "GAS"
	StrandTVL   Strand = "TVL"
)

// Strands is the fixed strand universe used for statistics.
var Strands = []Strand{StrandSTEM, StrandABM, StrandHUMSS, StrandGAS, StrandTVL}

// Valid reports whether the strand is part of the strand universe.
func (s Strand) Valid() bool {
	return slices.Contains(Strands, s)
}

// RecordStatus is the lifecycle status of rooms, teachers and sections.
type RecordStatus string

const (
	StatusActive   RecordStatus = "Active"
	StatusInactive RecordStatus = "Inactive"
)

type StudentStatus string

const (
	StudentPending     StudentStatus = "Pending"
	StudentEnrolled    StudentStatus = "Enrolled"
	StudentDropped     StudentStatus = "Dropped"
	StudentTransferred StudentStatus = "Transferred"
	StudentGraduated   StudentStatus = "Graduated"
)

var StudentStatuses = []StudentStatus{StudentPending, StudentEnrolled, StudentDropped, StudentTransferred, StudentGraduated}

func (s StudentStatus) Valid() bool {
	return slices.Contains(StudentStatuses, s)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPartial, PaymentPaid}

func (s PaymentStatus) Valid() bool {
	return slices.Contains(PaymentStatuses, s)
}

// DerivePaymentStatus classifies how much of the fees has been paid.
//
// It only depends on its arguments: Paid once the fees are covered,
// Partial for any positive amount below the fees, Pending otherwise.
func DerivePaymentStatus(amountPaid, totalFees decimal.Decimal) PaymentStatus {
	if amountPaid.GreaterThanOrEqual(totalFees) {
		return PaymentPaid
	}

	if amountPaid.IsPositive() {
		return PaymentPartial
	}

	return PaymentPending
}
