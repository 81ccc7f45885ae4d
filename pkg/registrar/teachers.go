package registrar

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/smartenroll/backend/internal/types"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/validation"
	"gorm.io/gorm"
)

type TeacherRegistry struct {
	db    *gorm.DB
	clock Clock
}

func NewTeacherRegistry(db *gorm.DB, clock Clock) *TeacherRegistry {
	return &TeacherRegistry{db: db, clock: clock}
}

type TeacherInput struct {
	FullName       string              `json:"fullName" validate:"notblank" example:"Maria Santos"`
	Email          string              `json:"email" validate:"email_at" example:"maria.santos@school.edu"`
	ContactNumber  string              `json:"contactNumber" validate:"notblank" example:"09171234567"`
	Specialization string              `json:"specialization" validate:"notblank" example:"Physics"`
	Department     string              `json:"department" example:"Science"`
	Status         models.RecordStatus `json:"status" validate:"omitempty,oneof=Active Inactive" example:"Active"`
}

func (in TeacherInput) apply(t *models.Teacher) {
	t.FullName = strings.TrimSpace(in.FullName)
	t.Email = strings.ToLower(strings.TrimSpace(in.Email))
	t.ContactNumber = strings.TrimSpace(in.ContactNumber)
	t.Specialization = strings.TrimSpace(in.Specialization)
	t.Department = strings.TrimSpace(in.Department)

	if in.Status != "" {
		t.Status = in.Status
	}
}

func (r *TeacherRegistry) ListAll(ctx context.Context) ([]models.Teacher, error) {
	teachers := make([]models.Teacher, 0)
	err := r.db.WithContext(ctx).Order("full_name ASC").Find(&teachers).Error
	return teachers, err
}

func (r *TeacherRegistry) GetByID(ctx context.Context, id uuid.UUID) (models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).First(&teacher, "id = ?", id).Error
	return teacher, err
}

// ListAvailable returns active teachers that neither teach nor advise an active section.
func (r *TeacherRegistry) ListAvailable(ctx context.Context) ([]models.Teacher, error) {
	teachers := make([]models.Teacher, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Teacher{}).
		Joins("LEFT JOIN sections ON (sections.teacher_id = teachers.id OR sections.adviser_id = teachers.id) AND sections.status = ?", models.StatusActive).
		Where("teachers.status = ? AND sections.id IS NULL", models.StatusActive).
		Order("teachers.full_name ASC").
		Find(&teachers).Error
	return teachers, err
}

// Sections returns the active sections a teacher teaches or advises.
func (r *TeacherRegistry) Sections(ctx context.Context, id uuid.UUID) ([]models.Section, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sections := make([]models.Section, 0)
	err := r.db.WithContext(ctx).
		Where("(teacher_id = ? OR adviser_id = ?) AND status = ?", id, id, models.StatusActive).
		Order("section_name ASC").
		Find(&sections).Error
	return sections, err
}

// Add registers a teacher hired today. Email addresses are unique.
func (r *TeacherRegistry) Add(ctx context.Context, in TeacherInput) (models.Teacher, error) {
	if err := validation.Struct(in); err != nil {
		return models.Teacher{}, err
	}

	teacher := models.Teacher{
		HireDate: types.DateOf(r.clock()),
		Status:   models.StatusActive,
	}
	in.apply(&teacher)

	err := transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := teacherEmailUnique(tx, teacher.Email, nil); err != nil {
			return err
		}
		return tx.Create(&teacher).Error
	})
	if err != nil {
		return models.Teacher{}, err
	}

	return teacher, nil
}

func (r *TeacherRegistry) Update(ctx context.Context, id uuid.UUID, in TeacherInput) (models.Teacher, error) {
	if err := validation.Struct(in); err != nil {
		return models.Teacher{}, err
	}

	var teacher models.Teacher
	err := transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&teacher, "id = ?", id).Error; err != nil {
			return err
		}

		in.apply(&teacher)
		if err := teacherEmailUnique(tx, teacher.Email, &teacher.ID); err != nil {
			return err
		}

		return tx.Save(&teacher).Error
	})
	if err != nil {
		return models.Teacher{}, err
	}

	return teacher, nil
}

// Delete removes a teacher that is neither teacher nor adviser of any section.
func (r *TeacherRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	return transaction(ctx, r.db, func(tx *gorm.DB) error {
		var teacher models.Teacher
		if err := tx.First(&teacher, "id = ?", id).Error; err != nil {
			return err
		}

		var count int64
		err := tx.Model(&models.Section{}).
			Where("teacher_id = ? OR adviser_id = ?", id, id).
			Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			return fmt.Errorf("%w: %s is assigned to %d section(s)", models.ErrReferenced, teacher.FullName, count)
		}

		return tx.Delete(&teacher).Error
	})
}

func teacherEmailUnique(tx *gorm.DB, email string, except *uuid.UUID) error {
	q := tx.Model(&models.Teacher{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if except != nil {
		q = q.Where("id <> ?", *except)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: a teacher with email %s already exists", models.ErrDuplicateKey, email)
	}

	return nil
}
