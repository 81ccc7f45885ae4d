// Package registrar implements the enrollment and capacity ledger of the
// registrar's office: rooms, teachers, sections, students and payments.
//
// Every component holds the *gorm.DB it was constructed with. Sequences
// that read state and then write depending on it run in one transaction.
package registrar

import (
	"context"
	"strings"
	"time"

	"github.com/smartenroll/backend/pkg/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Clock returns the current time. It is replaced in tests.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().In(time.UTC)
}

// Registrar bundles all components sharing one store.
type Registrar struct {
	Rooms         *RoomRegistry
	Teachers      *TeacherRegistry
	Sections      *SectionCatalog
	Enrollment    *EnrollmentLedger
	Payments      *PaymentLedger
	AcademicYears *AcademicYears
	Reports       *ReportBuilder
}

// Option configures a Registrar.
type Option func(*options)

type options struct {
	clock   Clock
	metrics *metrics.Ledger
}

// WithClock sets the clock used for enrollment dates, receipts and reports.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithMetrics records ledger activity in the given collectors.
func WithMetrics(m *metrics.Ledger) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New wires all components to db.
func New(db *gorm.DB, opts ...Option) *Registrar {
	o := options{clock: utcNow}
	for _, opt := range opts {
		opt(&o)
	}

	sections := NewSectionCatalog(db)
	enrollment := NewEnrollmentLedger(db, sections, o.clock, o.metrics)

	return &Registrar{
		Rooms:         NewRoomRegistry(db),
		Teachers:      NewTeacherRegistry(db, o.clock),
		Sections:      sections,
		Enrollment:    enrollment,
		Payments:      NewPaymentLedger(db, o.clock, o.metrics),
		AcademicYears: NewAcademicYears(db),
		Reports:       NewReportBuilder(db, enrollment, o.clock),
	}
}

// forUpdate locks the selected rows until the transaction ends.
// sqlite has no row locks, it serializes writers on its single connection.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// likeEscaper escapes the wildcards of LIKE. Patterns built by like must be
// used with `ESCAPE '!'`.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// like builds a case-insensitive substring pattern.
func like(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

func transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
