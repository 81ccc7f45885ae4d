package registrar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
	"github.com/smartenroll/backend/pkg/metrics"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/validation"
	"gorm.io/gorm"
)

const (
	searchLimit         = 50
	advancedSearchLimit = 100
	recentLimit         = 10
	byDateLimit         = 50
)

// EnrollmentLedger owns the student records.
type EnrollmentLedger struct {
	db       *gorm.DB
	sections *SectionCatalog
	clock    Clock
	metrics  *metrics.Ledger
}

func NewEnrollmentLedger(db *gorm.DB, sections *SectionCatalog, clock Clock, m *metrics.Ledger) *EnrollmentLedger {
	return &EnrollmentLedger{db: db, sections: sections, clock: clock, metrics: m}
}

// EnrollInput is the intake form of a new student.
type EnrollInput struct {
	LRN             string          `json:"lrn" validate:"lrn" example:"123456789012"`
	FirstName       string          `json:"firstName" validate:"notblank" example:"Juan"`
	MiddleName      string          `json:"middleName" example:"Santos"`
	LastName        string          `json:"lastName" validate:"notblank" example:"Dela Cruz"`
	Email           string          `json:"email" validate:"email_at" example:"juan@example.com"`
	ContactNumber   string          `json:"contactNumber" example:"09171234567"`
	Gender          string          `json:"gender" example:"Male"`
	DateOfBirth     types.Date      `json:"dateOfBirth" example:"2008-04-12"`
	Address         string          `json:"address" example:"Purok 3, San Isidro"`
	GuardianName    string          `json:"guardianName" example:"Maria Dela Cruz"`
	GuardianContact string          `json:"guardianContact" example:"09181234567"`
	LastSchool      string          `json:"lastSchool" example:"San Isidro National High School"`
	Strand          models.Strand   `json:"strand" validate:"strand" example:"STEM"`
	Track           string          `json:"track" example:"Academic"`
	GradeLevel      string          `json:"gradeLevel" example:"11"`
	PaymentMode     string          `json:"paymentMode" example:"Full Payment"`
	TotalFees       decimal.Decimal `json:"totalFees" validate:"gte=0" example:"10000"`
	SectionID       *uuid.UUID      `json:"sectionId" example:"e0b2a4f4-2f7e-4a9d-a1a5-8b3f5c1c2d3e"` // Leave empty to assign the section automatically
	AcademicYearID  *uuid.UUID      `json:"academicYearId" example:"f1b7c3de-55a4-4f6e-b8e0-41a7c1b2f1a0"`
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func fullName(parts ...string) string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return strings.Join(names, " ")
}

func (in EnrollInput) model(now time.Time) models.Student {
	return models.Student{
		LRN:             strings.TrimSpace(in.LRN),
		FirstName:       strings.TrimSpace(in.FirstName),
		MiddleName:      strings.TrimSpace(in.MiddleName),
		LastName:        strings.TrimSpace(in.LastName),
		FullName:        fullName(in.FirstName, in.MiddleName, in.LastName),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		ContactNumber:   strings.TrimSpace(in.ContactNumber),
		Gender:          orDefault(in.Gender, "Male"),
		DateOfBirth:     in.DateOfBirth,
		Address:         orDefault(in.Address, "N/A"),
		GuardianName:    strings.TrimSpace(in.GuardianName),
		GuardianContact: strings.TrimSpace(in.GuardianContact),
		LastSchool:      strings.TrimSpace(in.LastSchool),
		Strand:          in.Strand,
		Track:           orDefault(in.Track, "Academic"),
		GradeLevel:      orDefault(in.GradeLevel, "11"),
		PaymentMode:     orDefault(in.PaymentMode, "Full Payment"),
		AcademicYearID:  in.AcademicYearID,
		Status:          models.StudentEnrolled,
		PaymentStatus:   models.DerivePaymentStatus(decimal.Zero, in.TotalFees),
		EnrollmentDate:  now,
		TotalFees:       in.TotalFees,
		AmountPaid:      decimal.Zero,
		Balance:         in.TotalFees,
	}
}

// Enroll admits a student.
//
// Without a requested section, the student is seated in the section of the
// strand with the most available slots. When every section of the strand is
// full, the student is still enrolled, without a section.
func (l *EnrollmentLedger) Enroll(ctx context.Context, in EnrollInput, actingUserID *uuid.UUID) (models.Student, error) {
	if err := validation.Struct(in); err != nil {
		return models.Student{}, err
	}

	now := l.clock()
	student := in.model(now)

	err := transaction(ctx, l.db, func(tx *gorm.DB) error {
		if err := studentUnique(tx, student, nil); err != nil {
			return err
		}

		if student.AcademicYearID == nil {
			year, err := activeYear(tx)
			if err != nil {
				return err
			}
			if year != nil {
				student.AcademicYearID = &year.ID
			}
		}

		sectionID, err := l.seat(tx, student.Strand, in.SectionID)
		if err != nil {
			return err
		}
		student.SectionID = sectionID

		if err := tx.Create(&student).Error; err != nil {
			return err
		}

		if sectionID == nil {
			return nil
		}

		return tx.Create(&models.SectionAssignment{
			StudentID:    student.ID,
			SectionID:    *sectionID,
			AssignedBy:   actingUserID,
			AssignedDate: now,
			IsCurrent:    true,
		}).Error
	})
	if err != nil {
		return models.Student{}, err
	}

	l.metrics.Enrolled(string(student.Strand), student.SectionID != nil)
	return student, nil
}

// seat reserves a slot in the requested section, or in the best available
// section of the strand if none was requested.
func (l *EnrollmentLedger) seat(tx *gorm.DB, strand models.Strand, requested *uuid.UUID) (*uuid.UUID, error) {
	if requested != nil {
		section, err := reserveSlot(tx, *requested)
		if err != nil {
			return nil, err
		}

		if section.Strand != strand {
			return nil, models.NewValidationError(models.FieldError{
				Field:   "sectionId",
				Message: fmt.Sprintf("section %s belongs to strand %s", section.SectionName, section.Strand),
			})
		}

		return &section.ID, nil
	}

	candidates, err := availableSections(tx, strand)
	if err != nil {
		return nil, err
	}

	// A candidate can fill up between listing and locking it
	for _, candidate := range candidates {
		section, err := reserveSlot(tx, candidate.ID)
		if errors.Is(err, models.ErrSectionFull) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &section.ID, nil
	}

	return nil, nil
}

func studentUnique(tx *gorm.DB, student models.Student, except *uuid.UUID) error {
	checks := []struct {
		query string
		value string
		msg   string
	}{
		{"lrn = ?", student.LRN, "a student with LRN %s already exists"},
		{"LOWER(email) = ?", strings.ToLower(student.Email), "a student with email %s already exists"},
	}

	for _, c := range checks {
		q := tx.Model(&models.Student{}).Where(c.query, c.value)
		if except != nil {
			q = q.Where("id <> ?", *except)
		}

		var count int64
		if err := q.Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return fmt.Errorf("%w: "+c.msg, models.ErrDuplicateKey, c.value)
		}
	}

	return nil
}

func (l *EnrollmentLedger) GetByID(ctx context.Context, id uuid.UUID) (models.Student, error) {
	var student models.Student
	err := l.db.WithContext(ctx).First(&student, "id = ?", id).Error
	return student, err
}

// ListAll returns all enrolled students, the latest enrollment first.
func (l *EnrollmentLedger) ListAll(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0)
	err := l.db.WithContext(ctx).
		Where(&models.Student{Status: models.StudentEnrolled}).
		Order("enrollment_date DESC").
		Find(&students).Error
	return students, err
}

func summaries(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Student{}).
		Select(`students.id, students.lrn, students.full_name, students.email, students.strand,
			students.grade_level, students.gender, students.section_id, sections.section_name,
			students.payment_status, students.status, students.enrollment_date`).
		Joins("LEFT JOIN sections ON sections.id = students.section_id")
}

func scanSummaries(q *gorm.DB) ([]models.StudentSummary, error) {
	students := make([]models.StudentSummary, 0)
	err := q.Scan(&students).Error
	for i := range students {
		students[i].EnrollmentDate = students[i].EnrollmentDate.In(time.UTC)
	}
	return students, err
}

// ListBySection returns the enrolled students of a section by name.
func (l *EnrollmentLedger) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]models.StudentSummary, error) {
	if _, err := l.sections.GetByID(ctx, sectionID); err != nil {
		return nil, err
	}

	return scanSummaries(summaries(l.db.WithContext(ctx)).
		Where("students.section_id = ? AND students.status = ?", sectionID, models.StudentEnrolled).
		Order("students.full_name ASC"))
}

// Recent returns the latest enrollments. A limit of zero or less
// returns the 10 latest.
func (l *EnrollmentLedger) Recent(ctx context.Context, limit int) ([]models.StudentSummary, error) {
	if limit <= 0 {
		limit = recentLimit
	}

	return scanSummaries(summaries(l.db.WithContext(ctx)).
		Where("students.status = ?", models.StudentEnrolled).
		Order("students.enrollment_date DESC").
		Limit(limit))
}

// ByDateRange returns the enrollments between from and to, both inclusive
// and optional, the latest first. A limit of zero or less returns at most 50.
func (l *EnrollmentLedger) ByDateRange(ctx context.Context, from, to *time.Time, limit int) ([]models.StudentSummary, error) {
	if limit <= 0 {
		limit = byDateLimit
	}

	q := summaries(l.db.WithContext(ctx)).Where("students.status = ?", models.StudentEnrolled)
	if from != nil {
		q = q.Where("students.enrollment_date >= ?", from.In(time.UTC))
	}
	if to != nil {
		q = q.Where("students.enrollment_date <= ?", to.In(time.UTC))
	}

	return scanSummaries(q.Order("students.enrollment_date DESC").Limit(limit))
}

// Search finds enrolled students whose name, email or strand contain the query.
func (l *EnrollmentLedger) Search(ctx context.Context, query string) ([]models.StudentSummary, error) {
	pattern := like(query)
	return scanSummaries(summaries(l.db.WithContext(ctx)).
		Where("students.status = ?", models.StudentEnrolled).
		Where("LOWER(students.full_name) LIKE ? ESCAPE '!' OR LOWER(students.email) LIKE ? ESCAPE '!' OR LOWER(students.strand) LIKE ? ESCAPE '!'", pattern, pattern, pattern).
		Order("students.enrollment_date DESC").
		Limit(searchLimit))
}

// StudentFilter combines all set fields with AND.
type StudentFilter struct {
	Name          string               `form:"name" json:"name"` // Matches name, email or LRN
	Strand        models.Strand        `form:"strand" json:"strand"`
	GradeLevel    string               `form:"gradeLevel" json:"gradeLevel"`
	Status        models.StudentStatus `form:"status" json:"status"`
	PaymentStatus models.PaymentStatus `form:"paymentStatus" json:"paymentStatus"`
	Gender        string               `form:"gender" json:"gender"`
}

func (l *EnrollmentLedger) AdvancedSearch(ctx context.Context, f StudentFilter) ([]models.StudentSummary, error) {
	q := summaries(l.db.WithContext(ctx))

	if name := strings.TrimSpace(f.Name); name != "" {
		pattern := like(name)
		q = q.Where("LOWER(students.full_name) LIKE ? ESCAPE '!' OR LOWER(students.email) LIKE ? ESCAPE '!' OR students.lrn LIKE ? ESCAPE '!'", pattern, pattern, pattern)
	}

	if f.Strand != "" {
		q = q.Where("students.strand = ?", f.Strand)
	}

	if f.GradeLevel != "" {
		q = q.Where("students.grade_level = ?", f.GradeLevel)
	}

	if f.Status != "" {
		q = q.Where("students.status = ?", f.Status)
	}

	if f.PaymentStatus != "" {
		q = q.Where("students.payment_status = ?", f.PaymentStatus)
	}

	if f.Gender != "" {
		q = q.Where("students.gender = ?", f.Gender)
	}

	return scanSummaries(q.Order("students.enrollment_date DESC").Limit(advancedSearchLimit))
}

// StudentUpdate holds the fields that can be changed after enrollment.
// Fields that are nil are left unchanged. Setting SectionID to the nil
// UUID removes the student from their section.
type StudentUpdate struct {
	FirstName       *string               `json:"firstName" validate:"omitnil,notblank" example:"Juan"`
	MiddleName      *string               `json:"middleName" example:"Santos"`
	LastName        *string               `json:"lastName" validate:"omitnil,notblank" example:"Dela Cruz"`
	FullName        *string               `json:"fullName" validate:"omitnil,notblank" example:"Juan Santos Dela Cruz"`
	Gender          *string               `json:"gender" example:"Male"`
	DateOfBirth     *types.Date           `json:"dateOfBirth" example:"2008-04-12"`
	Address         *string               `json:"address" example:"Purok 3, San Isidro"`
	ContactNumber   *string               `json:"contactNumber" example:"09171234567"`
	Email           *string               `json:"email" validate:"omitnil,email_at" example:"juan@example.com"`
	GuardianName    *string               `json:"guardianName" example:"Maria Dela Cruz"`
	GuardianContact *string               `json:"guardianContact" example:"09181234567"`
	LastSchool      *string               `json:"lastSchool" example:"San Isidro National High School"`
	Strand          *models.Strand        `json:"strand" validate:"omitnil,strand" example:"STEM"`
	Track           *string               `json:"track" example:"Academic"`
	GradeLevel      *string               `json:"gradeLevel" example:"12"`
	SectionID       *uuid.UUID            `json:"sectionId" example:"e0b2a4f4-2f7e-4a9d-a1a5-8b3f5c1c2d3e"`
	PaymentStatus   *models.PaymentStatus `json:"paymentStatus" validate:"omitnil,oneof=Pending Partial Paid" example:"Paid"`
	Status          *models.StudentStatus `json:"status" validate:"omitnil,oneof=Pending Enrolled Dropped Transferred Graduated" example:"Dropped"`
	StatusReason    *string               `json:"statusReason" example:"Moved to another city"`
	TotalFees       *decimal.Decimal      `json:"totalFees" validate:"omitnil,gte=0" example:"12000"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func (u StudentUpdate) apply(s *models.Student) {
	setString(&s.FirstName, u.FirstName)
	setString(&s.MiddleName, u.MiddleName)
	setString(&s.LastName, u.LastName)
	if u.FullName != nil {
		s.FullName = strings.TrimSpace(*u.FullName)
	} else if u.FirstName != nil || u.MiddleName != nil || u.LastName != nil {
		s.FullName = fullName(s.FirstName, s.MiddleName, s.LastName)
	}

	setString(&s.Gender, u.Gender)
	if u.DateOfBirth != nil {
		s.DateOfBirth = *u.DateOfBirth
	}
	setString(&s.Address, u.Address)
	setString(&s.ContactNumber, u.ContactNumber)
	if u.Email != nil {
		s.Email = strings.ToLower(strings.TrimSpace(*u.Email))
	}
	setString(&s.GuardianName, u.GuardianName)
	setString(&s.GuardianContact, u.GuardianContact)
	setString(&s.LastSchool, u.LastSchool)
	if u.Strand != nil {
		s.Strand = *u.Strand
	}
	setString(&s.Track, u.Track)
	setString(&s.GradeLevel, u.GradeLevel)
	setString(&s.StatusReason, u.StatusReason)

	if u.TotalFees != nil {
		s.TotalFees = *u.TotalFees
		s.ApplyPayment(decimal.Zero)
	}

	// An explicit payment status overrides the derived one
	if u.PaymentStatus != nil {
		s.PaymentStatus = *u.PaymentStatus
	}
}

// Update changes a student. Status changes are recorded in the status
// history, section changes close the current section assignment and
// open a new one.
func (l *EnrollmentLedger) Update(ctx context.Context, id uuid.UUID, u StudentUpdate, actingUserID *uuid.UUID) (models.Student, error) {
	if err := validation.Struct(u); err != nil {
		return models.Student{}, err
	}

	now := l.clock()
	var student models.Student
	err := transaction(ctx, l.db, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&student, "id = ?", id).Error; err != nil {
			return err
		}

		oldStatus := student.Status
		oldSection := student.SectionID

		u.apply(&student)
		if u.Email != nil {
			if err := studentUnique(tx, student, &student.ID); err != nil {
				return err
			}
		}

		newStatus := oldStatus
		if u.Status != nil {
			newStatus = *u.Status
		}

		sectionChanged := u.SectionID != nil && !sameSection(oldSection, u.SectionID)
		if sectionChanged {
			student.SectionID = nil
			if *u.SectionID != uuid.Nil {
				student.SectionID = u.SectionID
			}
		}

		if student.SectionID != nil && (sectionChanged || u.Strand != nil) {
			if err := sameStrand(tx, *student.SectionID, student.Strand, sectionChanged); err != nil {
				return err
			}
		}

		// Seat the student if they are enrolled in a section that did not count them yet
		entersSection := student.SectionID != nil && newStatus == models.StudentEnrolled &&
			(sectionChanged || oldStatus != models.StudentEnrolled)
		if entersSection {
			if _, err := reserveSlot(tx, *student.SectionID); err != nil {
				return err
			}
		}

		if newStatus != oldStatus {
			student.Status = newStatus
			student.StatusChangedAt = &now
			student.StatusChangedBy = actingUserID

			err := tx.Create(&models.StudentStatusHistory{
				StudentID: student.ID,
				OldStatus: oldStatus,
				NewStatus: newStatus,
				Reason:    student.StatusReason,
				ChangedBy: actingUserID,
			}).Error
			if err != nil {
				return err
			}
		}

		if sectionChanged {
			err := tx.Model(&models.SectionAssignment{}).
				Where("student_id = ? AND is_current = ?", student.ID, true).
				Updates(map[string]interface{}{"is_current": false, "removed_date": now}).Error
			if err != nil {
				return err
			}

			if student.SectionID != nil {
				err = tx.Create(&models.SectionAssignment{
					StudentID:    student.ID,
					SectionID:    *student.SectionID,
					AssignedBy:   actingUserID,
					AssignedDate: now,
					IsCurrent:    true,
				}).Error
				if err != nil {
					return err
				}
			}
		}

		return tx.Save(&student).Error
	})
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// sameStrand rejects seating a student in a section of another strand.
func sameStrand(tx *gorm.DB, sectionID uuid.UUID, strand models.Strand, sectionChanged bool) error {
	var section models.Section
	if err := tx.First(&section, "id = ?", sectionID).Error; err != nil {
		return err
	}

	if section.Strand == strand {
		return nil
	}

	field := "strand"
	if sectionChanged {
		field = "sectionId"
	}

	return models.NewValidationError(models.FieldError{
		Field:   field,
		Message: fmt.Sprintf("section %s belongs to strand %s", section.SectionName, section.Strand),
	})
}

func sameSection(current, requested *uuid.UUID) bool {
	if current == nil {
		return *requested == uuid.Nil
	}
	return *current == *requested
}

// StatusHistory returns the status changes of a student, the latest first.
func (l *EnrollmentLedger) StatusHistory(ctx context.Context, id uuid.UUID) ([]models.StudentStatusHistory, error) {
	if _, err := l.GetByID(ctx, id); err != nil {
		return nil, err
	}

	history := make([]models.StudentStatusHistory, 0)
	err := l.db.WithContext(ctx).Where("student_id = ?", id).Order("created_at DESC").Find(&history).Error
	return history, err
}

// SectionHistory returns the section assignments of a student, the latest first.
func (l *EnrollmentLedger) SectionHistory(ctx context.Context, id uuid.UUID) ([]models.SectionAssignment, error) {
	if _, err := l.GetByID(ctx, id); err != nil {
		return nil, err
	}

	assignments := make([]models.SectionAssignment, 0)
	err := l.db.WithContext(ctx).Where("student_id = ?", id).Order("assigned_date DESC").Find(&assignments).Error
	return assignments, err
}

// Delete removes a student together with their payments and history.
func (l *EnrollmentLedger) Delete(ctx context.Context, id uuid.UUID) error {
	return transaction(ctx, l.db, func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, "id = ?", id).Error; err != nil {
			return err
		}

		for _, dependent := range []interface{}{&models.Payment{}, &models.StudentStatusHistory{}, &models.SectionAssignment{}} {
			if err := tx.Where("student_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&student).Error
	})
}

// StrandStats is the enrollment of one strand.
type StrandStats struct {
	Name       models.Strand `json:"name" example:"STEM"`
	Enrolled   int64         `json:"enrolled" example:"78"`
	TotalSlots int64         `json:"totalSlots" example:"80"`
}

type EnrollmentStats struct {
	TotalEnrolled  int64         `json:"totalEnrolled" example:"210"`
	TotalSlots     int64         `json:"totalSlots" example:"240"`
	AvailableSlots int64         `json:"availableSlots" example:"30"`
	ByStrand       []StrandStats `json:"byStrand"`
}

type strandCount struct {
	Strand models.Strand
	Count  int64
}

// Stats counts enrolled students and slots of active sections per strand.
// With since set, only students enrolled at or after since are counted.
// Every strand of the strand universe is reported, even without sections.
func (l *EnrollmentLedger) Stats(ctx context.Context, since *time.Time) (EnrollmentStats, error) {
	db := l.db.WithContext(ctx)

	var slots []strandCount
	err := db.Model(&models.Section{}).
		Select("strand, COALESCE(SUM(capacity), 0) AS count").
		Where("status = ?", models.StatusActive).
		Group("strand").
		Scan(&slots).Error
	if err != nil {
		return EnrollmentStats{}, err
	}

	q := db.Model(&models.Student{}).
		Select("strand, COUNT(*) AS count").
		Where("status = ?", models.StudentEnrolled)
	if since != nil {
		q = q.Where("enrollment_date >= ?", since.In(time.UTC))
	}

	var enrolled []strandCount
	if err := q.Group("strand").Scan(&enrolled).Error; err != nil {
		return EnrollmentStats{}, err
	}

	stats := EnrollmentStats{ByStrand: make([]StrandStats, 0, len(models.Strands))}
	for _, strand := range models.Strands {
		s := StrandStats{Name: strand}
		for _, c := range slots {
			if c.Strand == strand {
				s.TotalSlots = c.Count
			}
		}
		for _, c := range enrolled {
			if c.Strand == strand {
				s.Enrolled = c.Count
			}
		}
		stats.ByStrand = append(stats.ByStrand, s)
	}

	for _, c := range slots {
		stats.TotalSlots += c.Count
	}
	for _, c := range enrolled {
		stats.TotalEnrolled += c.Count
	}
	stats.AvailableSlots = stats.TotalSlots - stats.TotalEnrolled

	return stats, nil
}
