package registrar

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/validation"
	"gorm.io/gorm"
)

// AcademicYears manages the school years. At most one of them is active.
type AcademicYears struct {
	db *gorm.DB
}

func NewAcademicYears(db *gorm.DB) *AcademicYears {
	return &AcademicYears{db: db}
}

type AcademicYearInput struct {
	YearName  string     `json:"yearName" validate:"notblank" example:"2024-2025"`
	StartDate types.Date `json:"startDate" validate:"required" example:"2024-06-03"`
	EndDate   types.Date `json:"endDate" validate:"required" example:"2025-03-28"`
	Semester  string     `json:"semester" example:"Full Year"`
	IsActive  bool       `json:"isActive" example:"true"`
}

func (a *AcademicYears) List(ctx context.Context) ([]models.AcademicYear, error) {
	years := make([]models.AcademicYear, 0)
	err := a.db.WithContext(ctx).Order("start_date DESC").Find(&years).Error
	return years, err
}

func (a *AcademicYears) GetByID(ctx context.Context, id uuid.UUID) (models.AcademicYear, error) {
	var year models.AcademicYear
	err := a.db.WithContext(ctx).First(&year, "id = ?", id).Error
	return year, err
}

// Active returns the active academic year.
func (a *AcademicYears) Active(ctx context.Context) (models.AcademicYear, error) {
	year, err := activeYear(a.db.WithContext(ctx))
	if err != nil {
		return models.AcademicYear{}, err
	}

	if year == nil {
		return models.AcademicYear{}, fmt.Errorf("%w active academic year", models.ErrResourceNotFound)
	}

	return *year, nil
}

// activeYear returns nil when no academic year is active.
func activeYear(tx *gorm.DB) (*models.AcademicYear, error) {
	var years []models.AcademicYear
	if err := tx.Where("is_active = ?", true).Limit(1).Find(&years).Error; err != nil {
		return nil, err
	}

	if len(years) == 0 {
		return nil, nil
	}
	return &years[0], nil
}

func (a *AcademicYears) Add(ctx context.Context, in AcademicYearInput) (models.AcademicYear, error) {
	err := validation.Struct(in)
	if err == nil && !in.StartDate.Before(in.EndDate) {
		err = models.NewValidationError(models.FieldError{Field: "endDate", Message: "endDate must be after startDate"})
	}
	if err != nil {
		return models.AcademicYear{}, err
	}

	year := models.AcademicYear{
		YearName:  strings.TrimSpace(in.YearName),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Semester:  orDefault(in.Semester, "Full Year"),
		IsActive:  in.IsActive,
	}

	err = transaction(ctx, a.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AcademicYear{}).Where("year_name = ?", year.YearName).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: academic year %s already exists", models.ErrDuplicateKey, year.YearName)
		}

		if year.IsActive {
			if err := deactivateYears(tx); err != nil {
				return err
			}
		}

		return tx.Create(&year).Error
	})

	return year, err
}

func deactivateYears(tx *gorm.DB) error {
	return tx.Model(&models.AcademicYear{}).Where("is_active = ?", true).Update("is_active", false).Error
}

// SetActive makes the academic year the only active one.
func (a *AcademicYears) SetActive(ctx context.Context, id uuid.UUID) (models.AcademicYear, error) {
	var year models.AcademicYear
	err := transaction(ctx, a.db, func(tx *gorm.DB) error {
		if err := tx.First(&year, "id = ?", id).Error; err != nil {
			return err
		}

		if err := deactivateYears(tx); err != nil {
			return err
		}

		year.IsActive = true
		return tx.Model(&year).Update("is_active", true).Error
	})

	return year, err
}

// Delete removes an academic year that is neither active nor used by students.
func (a *AcademicYears) Delete(ctx context.Context, id uuid.UUID) error {
	return transaction(ctx, a.db, func(tx *gorm.DB) error {
		var year models.AcademicYear
		if err := tx.First(&year, "id = ?", id).Error; err != nil {
			return err
		}

		if year.IsActive {
			return fmt.Errorf("%w: academic year %s is active", models.ErrReferenced, year.YearName)
		}

		var count int64
		if err := tx.Model(&models.Student{}).Where("academic_year_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %d students are enrolled in academic year %s", models.ErrReferenced, count, year.YearName)
		}

		return tx.Delete(&year).Error
	})
}

type AcademicYearStats struct {
	Year           models.AcademicYear `json:"year"`
	TotalEnrolled  int64               `json:"totalEnrolled" example:"210"`
	ByStrand       []StrandStats       `json:"byStrand"`
	TotalCollected decimal.Decimal     `json:"totalCollected" example:"86500"`
}

// Stats counts the enrolled students and collected payments of an academic year.
// The total slots of the strands are not tracked per year and are left at zero.
func (a *AcademicYears) Stats(ctx context.Context, id uuid.UUID) (AcademicYearStats, error) {
	year, err := a.GetByID(ctx, id)
	if err != nil {
		return AcademicYearStats{}, err
	}

	db := a.db.WithContext(ctx)

	var enrolled []strandCount
	err = db.Model(&models.Student{}).
		Select("strand, COUNT(*) AS count").
		Where("academic_year_id = ? AND status = ?", id, models.StudentEnrolled).
		Group("strand").
		Scan(&enrolled).Error
	if err != nil {
		return AcademicYearStats{}, err
	}

	var collected struct{ Amount decimal.Decimal }
	err = db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS amount").
		Where("academic_year_id = ?", id).
		Scan(&collected).Error
	if err != nil {
		return AcademicYearStats{}, err
	}

	stats := AcademicYearStats{Year: year, TotalCollected: collected.Amount, ByStrand: make([]StrandStats, 0, len(models.Strands))}
	for _, strand := range models.Strands {
		s := StrandStats{Name: strand}
		for _, c := range enrolled {
			if c.Strand == strand {
				s.Enrolled = c.Count
			}
		}
		stats.TotalEnrolled += s.Enrolled
		stats.ByStrand = append(stats.ByStrand, s)
	}

	return stats, nil
}
