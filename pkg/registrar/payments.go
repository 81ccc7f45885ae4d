package registrar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
	"github.com/smartenroll/backend/pkg/metrics"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/render"
	"github.com/smartenroll/backend/pkg/validation"
	"gorm.io/gorm"
)

const paymentListLimit = 100

// PaymentLedger records payments and keeps the payment aggregates of
// students in sync with them.
type PaymentLedger struct {
	db      *gorm.DB
	clock   Clock
	metrics *metrics.Ledger
}

func NewPaymentLedger(db *gorm.DB, clock Clock, m *metrics.Ledger) *PaymentLedger {
	return &PaymentLedger{db: db, clock: clock, metrics: m}
}

type PaymentInput struct {
	StudentID       uuid.UUID       `json:"studentId" validate:"required" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0" example:"4000"`
	PaymentDate     types.Date      `json:"paymentDate" validate:"required" example:"2024-06-10"`
	PaymentMethod   string          `json:"paymentMethod" example:"Cash"`
	PaymentType     string          `json:"paymentType" example:"Tuition"`
	ReferenceNumber string          `json:"referenceNumber" example:"GC-0042"`
	ReceiptNumber   string          `json:"receiptNumber" example:""` // Generated when empty
	AcademicYearID  *uuid.UUID      `json:"academicYearId" example:"f1b7c3de-55a4-4f6e-b8e0-41a7c1b2f1a0"`
	Notes           string          `json:"notes" example:"First installment"`
}

// receiptNumber numbers receipts by the count of all payments recorded so far.
// Deleted payments lower the count, so numbers still in use are skipped.
func receiptNumber(tx *gorm.DB, day time.Time) (string, error) {
	var count int64
	if err := tx.Model(&models.Payment{}).Count(&count).Error; err != nil {
		return "", err
	}

	for n := count + 1; ; n++ {
		number := fmt.Sprintf("REC-%s-%04d", day.Format("20060102"), n)

		var taken int64
		if err := tx.Model(&models.Payment{}).Where("receipt_number = ?", number).Count(&taken).Error; err != nil {
			return "", err
		}

		if taken == 0 {
			return number, nil
		}
	}
}

// AddPayment records a payment and applies it to the student's balance.
func (l *PaymentLedger) AddPayment(ctx context.Context, in PaymentInput, recordedBy *uuid.UUID) (models.Payment, error) {
	if err := validation.Struct(in); err != nil {
		return models.Payment{}, err
	}

	payment := models.Payment{
		StudentID:       in.StudentID,
		Amount:          in.Amount,
		PaymentDate:     in.PaymentDate,
		PaymentMethod:   orDefault(in.PaymentMethod, "Cash"),
		PaymentType:     orDefault(in.PaymentType, "Tuition"),
		ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
		ReceiptNumber:   strings.TrimSpace(in.ReceiptNumber),
		AcademicYearID:  in.AcademicYearID,
		Notes:           strings.TrimSpace(in.Notes),
		RecordedBy:      recordedBy,
	}

	err := transaction(ctx, l.db, func(tx *gorm.DB) error {
		var student models.Student
		if err := forUpdate(tx).First(&student, "id = ?", in.StudentID).Error; err != nil {
			return err
		}

		if payment.AcademicYearID == nil {
			payment.AcademicYearID = student.AcademicYearID
		}

		if payment.ReceiptNumber == "" {
			number, err := receiptNumber(tx, l.clock())
			if err != nil {
				return err
			}
			payment.ReceiptNumber = number
		}

		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		student.ApplyPayment(payment.Amount)
		return saveAggregates(tx, student)
	})
	if err != nil {
		return models.Payment{}, err
	}

	l.metrics.PaymentRecorded(payment.Amount)
	return payment, nil
}

func saveAggregates(tx *gorm.DB, student models.Student) error {
	return tx.Model(&student).Select("amount_paid", "balance", "payment_status").Updates(&student).Error
}

// DeletePayment removes a payment and reverses it on the student's balance.
func (l *PaymentLedger) DeletePayment(ctx context.Context, id uuid.UUID) error {
	var payment models.Payment
	err := transaction(ctx, l.db, func(tx *gorm.DB) error {
		if err := tx.First(&payment, "id = ?", id).Error; err != nil {
			return err
		}

		var student models.Student
		if err := forUpdate(tx).First(&student, "id = ?", payment.StudentID).Error; err != nil {
			return err
		}

		student.ApplyPayment(payment.Amount.Neg())
		if err := saveAggregates(tx, student); err != nil {
			return err
		}

		return tx.Delete(&payment).Error
	})
	if err != nil {
		return err
	}

	l.metrics.PaymentReversed(payment.Amount)
	return nil
}

func (l *PaymentLedger) GetByID(ctx context.Context, id uuid.UUID) (models.PaymentView, error) {
	var views []models.PaymentView
	err := paymentViews(l.db.WithContext(ctx)).Where("payment_transactions.id = ?", id).Scan(&views).Error
	if err != nil {
		return models.PaymentView{}, err
	}

	if len(views) == 0 {
		return models.PaymentView{}, fmt.Errorf("%w payment matching your query", models.ErrResourceNotFound)
	}

	return views[0], nil
}

// Receipt collects the data printed on the receipt of a payment. The
// balance is the student's current balance.
func (l *PaymentLedger) Receipt(ctx context.Context, id uuid.UUID) (render.ReceiptData, error) {
	payment, err := l.GetByID(ctx, id)
	if err != nil {
		return render.ReceiptData{}, err
	}

	var student models.Student
	if err := l.db.WithContext(ctx).First(&student, "id = ?", payment.StudentID).Error; err != nil {
		return render.ReceiptData{}, err
	}

	recordedBy := "-"
	if payment.RecordedByName != nil {
		recordedBy = *payment.RecordedByName
	}

	return render.ReceiptData{
		ReceiptNumber:   payment.ReceiptNumber,
		PaymentDate:     payment.PaymentDate,
		StudentName:     student.FullName,
		LRN:             student.LRN,
		Strand:          string(student.Strand),
		GradeLevel:      student.GradeLevel,
		Amount:          payment.Amount,
		PaymentMethod:   payment.PaymentMethod,
		PaymentType:     payment.PaymentType,
		ReferenceNumber: payment.ReferenceNumber,
		TotalFees:       student.TotalFees,
		AmountPaid:      student.AmountPaid,
		Balance:         student.Balance,
		PaymentStatus:   string(student.PaymentStatus),
		RecordedBy:      recordedBy,
		IssuedAt:        l.clock(),
	}, nil
}

type PaymentSummary struct {
	TotalFees     decimal.Decimal      `json:"totalFees" example:"10000"`
	AmountPaid    decimal.Decimal      `json:"amountPaid" example:"4000"`
	Balance       decimal.Decimal      `json:"balance" example:"6000"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus" example:"Partial"`
}

func (l *PaymentLedger) Summary(ctx context.Context, studentID uuid.UUID) (PaymentSummary, error) {
	var student models.Student
	if err := l.db.WithContext(ctx).First(&student, "id = ?", studentID).Error; err != nil {
		return PaymentSummary{}, err
	}

	return PaymentSummary{
		TotalFees:     student.TotalFees,
		AmountPaid:    student.AmountPaid,
		Balance:       student.Balance,
		PaymentStatus: student.PaymentStatus,
	}, nil
}

func paymentViews(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Payment{}).
		Select(`payment_transactions.*, students.full_name AS student_name, students.lrn,
			users.username AS recorded_by_name, academic_years.year_name AS academic_year_name`).
		Joins("JOIN students ON students.id = payment_transactions.student_id").
		Joins("LEFT JOIN users ON users.id = payment_transactions.recorded_by").
		Joins("LEFT JOIN academic_years ON academic_years.id = payment_transactions.academic_year_id")
}

func scanPayments(q *gorm.DB) ([]models.PaymentView, error) {
	payments := make([]models.PaymentView, 0)
	err := q.Scan(&payments).Error
	for i := range payments {
		payments[i].CreatedAt = payments[i].CreatedAt.In(time.UTC)
		payments[i].UpdatedAt = payments[i].UpdatedAt.In(time.UTC)
	}
	return payments, err
}

// History returns the payments of a student, the latest first.
func (l *PaymentLedger) History(ctx context.Context, studentID uuid.UUID) ([]models.PaymentView, error) {
	if err := l.db.WithContext(ctx).First(&models.Student{}, "id = ?", studentID).Error; err != nil {
		return nil, err
	}

	return scanPayments(paymentViews(l.db.WithContext(ctx)).
		Where("payment_transactions.student_id = ?", studentID).
		Order("payment_transactions.payment_date DESC, payment_transactions.created_at DESC"))
}

// PaymentFilter restricts ListAll. The payment status is the status of the student.
type PaymentFilter struct {
	DateFrom      types.Date           `form:"dateFrom" json:"dateFrom"`
	DateTo        types.Date           `form:"dateTo" json:"dateTo"`
	PaymentStatus models.PaymentStatus `form:"paymentStatus" json:"paymentStatus"`
}

func (l *PaymentLedger) ListAll(ctx context.Context, f PaymentFilter) ([]models.PaymentView, error) {
	q := paymentViews(l.db.WithContext(ctx))

	if !f.DateFrom.IsZero() {
		q = q.Where("payment_transactions.payment_date >= ?", f.DateFrom)
	}

	if !f.DateTo.IsZero() {
		q = q.Where("payment_transactions.payment_date <= ?", f.DateTo)
	}

	if f.PaymentStatus != "" {
		q = q.Where("students.payment_status = ?", f.PaymentStatus)
	}

	return scanPayments(q.
		Order("payment_transactions.payment_date DESC, payment_transactions.created_at DESC").
		Limit(paymentListLimit))
}

type MethodStats struct {
	Method string          `json:"method" example:"Cash"`
	Amount decimal.Decimal `json:"amount" example:"52000"`
	Count  int64           `json:"count" example:"13"`
}

type PaymentStats struct {
	TotalCollected   decimal.Decimal `json:"totalCollected" example:"86500"`
	TransactionCount int64           `json:"transactionCount" example:"21"`
	ByMethod         []MethodStats   `json:"byMethod"`
}

// Stats sums up the payments, optionally of one academic year.
func (l *PaymentLedger) Stats(ctx context.Context, academicYearID *uuid.UUID) (PaymentStats, error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		q := tx.Model(&models.Payment{})
		if academicYearID != nil {
			q = q.Where("academic_year_id = ?", *academicYearID)
		}
		return q
	}

	db := l.db.WithContext(ctx)

	var totals struct {
		Amount decimal.Decimal
		Count  int64
	}
	err := scope(db).Select("COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count").Scan(&totals).Error
	if err != nil {
		return PaymentStats{}, err
	}

	methods := make([]MethodStats, 0)
	err = scope(db).
		Select("payment_method AS method, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS count").
		Group("payment_method").
		Order("amount DESC").
		Scan(&methods).Error
	if err != nil {
		return PaymentStats{}, err
	}

	return PaymentStats{
		TotalCollected:   totals.Amount,
		TransactionCount: totals.Count,
		ByMethod:         methods,
	}, nil
}
