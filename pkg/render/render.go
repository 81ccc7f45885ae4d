// Package render turns receipts and reports into paginated documents.
package render

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
)

// DocumentRenderer writes documents and returns the path of the written file.
type DocumentRenderer interface {
	Receipt(ReceiptData) (string, error)
	Report(ReportData) (string, error)
}

// ReceiptData is everything printed on a payment receipt.
type ReceiptData struct {
	ReceiptNumber   string
	PaymentDate     types.Date
	StudentName     string
	LRN             string
	Strand          string
	GradeLevel      string
	Amount          decimal.Decimal
	PaymentMethod   string
	PaymentType     string
	ReferenceNumber string
	TotalFees       decimal.Decimal
	AmountPaid      decimal.Decimal
	Balance         decimal.Decimal
	PaymentStatus   string
	RecordedBy      string
	IssuedAt        time.Time
}

// Field is a labelled value.
type Field struct {
	Label string
	Value string
}

// ReportData is a report as a title, summary fields and one table.
type ReportData struct {
	Name        string // File name without extension
	Title       string
	Subtitle    string
	Summary     []Field
	Columns     []string
	Rows        [][]string
	GeneratedAt time.Time
}
