package registrar

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/validation"
	"gorm.io/gorm"
)

// SectionCatalog owns the sections and is the only place where
// occupancy is computed.
type SectionCatalog struct {
	db *gorm.DB
}

func NewSectionCatalog(db *gorm.DB) *SectionCatalog {
	return &SectionCatalog{db: db}
}

type SectionInput struct {
	SectionName    string              `json:"sectionName" validate:"notblank" example:"STEM-A"`
	Strand         models.Strand       `json:"strand" validate:"strand" example:"STEM"`
	Track          string              `json:"track" example:"Academic"`
	Capacity       int                 `json:"capacity" validate:"gt=0" example:"40"`
	RoomNumber     *string             `json:"roomNumber" example:"R101"`
	TeacherID      *uuid.UUID          `json:"teacherId" example:"2c6ab2a9-5b0c-4f3c-9c66-0b1a4f6c7b1d"`
	AdviserID      *uuid.UUID          `json:"adviserId" example:"2c6ab2a9-5b0c-4f3c-9c66-0b1a4f6c7b1d"`
	AcademicYearID *uuid.UUID          `json:"academicYearId" example:"f1b7c3de-55a4-4f6e-b8e0-41a7c1b2f1a0"`
	Status         models.RecordStatus `json:"status" validate:"omitempty,oneof=Active Inactive" example:"Active"`
}

func (in SectionInput) apply(s *models.Section) {
	s.SectionName = strings.TrimSpace(in.SectionName)
	s.Strand = in.Strand
	s.Track = strings.TrimSpace(in.Track)
	if s.Track == "" {
		s.Track = "Academic"
	}
	s.Capacity = in.Capacity
	s.RoomNumber = nil
	if in.RoomNumber != nil && strings.TrimSpace(*in.RoomNumber) != "" {
		n := strings.TrimSpace(*in.RoomNumber)
		s.RoomNumber = &n
	}
	s.TeacherID = in.TeacherID
	s.AdviserID = in.AdviserID
	s.AcademicYearID = in.AcademicYearID

	s.Status = in.Status
	if s.Status == "" {
		s.Status = models.StatusActive
	}
}

// views selects sections with their occupancy and the names of the
// referenced teachers.
func views(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Section{}).
		Select(`sections.*,
			(SELECT COUNT(*) FROM students WHERE students.section_id = sections.id AND students.status = ?) AS student_count,
			(SELECT rooms.capacity FROM rooms WHERE rooms.room_number = sections.room_number AND rooms.status = ? ORDER BY rooms.building LIMIT 1) AS room_capacity,
			COALESCE(teachers.full_name, '') AS teacher_name,
			COALESCE(advisers.full_name, '') AS adviser_name`, models.StudentEnrolled, models.StatusActive).
		Joins("LEFT JOIN teachers ON teachers.id = sections.teacher_id").
		Joins("LEFT JOIN teachers AS advisers ON advisers.id = sections.adviser_id")
}

func scanViews(q *gorm.DB) ([]models.SectionView, error) {
	sections := make([]models.SectionView, 0)
	if err := q.Scan(&sections).Error; err != nil {
		return nil, err
	}

	for i := range sections {
		sections[i].Occupancy(sections[i].StudentCount)
	}

	return sections, nil
}

// ListActive returns all active sections ordered by strand and name.
func (c *SectionCatalog) ListActive(ctx context.Context) ([]models.SectionView, error) {
	return scanViews(views(c.db.WithContext(ctx)).
		Where("sections.status = ?", models.StatusActive).
		Order("sections.strand ASC, sections.section_name ASC"))
}

// ListByStrand returns the sections of a strand with the given status.
// An empty status selects active sections.
func (c *SectionCatalog) ListByStrand(ctx context.Context, strand models.Strand, status models.RecordStatus) ([]models.SectionView, error) {
	if status == "" {
		status = models.StatusActive
	}

	return scanViews(views(c.db.WithContext(ctx)).
		Where("sections.strand = ? AND sections.status = ?", strand, status).
		Order("sections.section_name ASC"))
}

func (c *SectionCatalog) GetByID(ctx context.Context, id uuid.UUID) (models.SectionView, error) {
	return sectionView(c.db.WithContext(ctx), id)
}

func sectionView(tx *gorm.DB, id uuid.UUID) (models.SectionView, error) {
	sections, err := scanViews(views(tx).Where("sections.id = ?", id))
	if err != nil {
		return models.SectionView{}, err
	}

	if len(sections) == 0 {
		return models.SectionView{}, fmt.Errorf("%w section matching your query", models.ErrResourceNotFound)
	}

	return sections[0], nil
}

// FindAvailable returns the active section of the strand with the most
// available slots, or nil if every section of the strand is full.
func (c *SectionCatalog) FindAvailable(ctx context.Context, strand models.Strand) (*models.SectionView, error) {
	candidates, err := availableSections(c.db.WithContext(ctx), strand)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}

	return &candidates[0], nil
}

// availableSections returns the active sections of the strand that are
// not full, the one with the most available slots first. Ties are
// broken by section name.
func availableSections(tx *gorm.DB, strand models.Strand) ([]models.SectionView, error) {
	sections, err := scanViews(views(tx).
		Where("sections.strand = ? AND sections.status = ?", strand, models.StatusActive).
		Order("sections.section_name ASC"))
	if err != nil {
		return nil, err
	}

	available := make([]models.SectionView, 0, len(sections))
	for _, s := range sections {
		if s.AvailableSlots > 0 {
			available = append(available, s)
		}
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].AvailableSlots > available[j].AvailableSlots
	})

	return available, nil
}

// reserveSlot locks the section and verifies that it is active and has
// a free slot for one more enrolled student.
func reserveSlot(tx *gorm.DB, sectionID uuid.UUID) (models.Section, error) {
	var section models.Section
	if err := forUpdate(tx).First(&section, "id = ?", sectionID).Error; err != nil {
		return section, err
	}

	if section.Status != models.StatusActive {
		return section, fmt.Errorf("%w: section %s is not active", models.ErrSectionFull, section.SectionName)
	}

	count, err := enrolledCount(tx, sectionID)
	if err != nil {
		return section, err
	}

	if count >= int64(section.Capacity) {
		return section, fmt.Errorf("%w: section %s already has %d of %d students", models.ErrSectionFull, section.SectionName, count, section.Capacity)
	}

	return section, nil
}

func enrolledCount(tx *gorm.DB, sectionID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&models.Student{}).
		Where("section_id = ? AND status = ?", sectionID, models.StudentEnrolled).
		Count(&count).Error
	return count, err
}

// Add creates a section. Its name is unique per strand among active
// sections, and an assigned room must be free and large enough.
func (c *SectionCatalog) Add(ctx context.Context, in SectionInput) (models.Section, error) {
	if err := validation.Struct(in); err != nil {
		return models.Section{}, err
	}

	var section models.Section
	in.apply(&section)

	err := transaction(ctx, c.db, func(tx *gorm.DB) error {
		if err := checkSection(tx, section, nil); err != nil {
			return err
		}
		return tx.Create(&section).Error
	})
	if err != nil {
		return models.Section{}, err
	}

	return section, nil
}

// Update changes a section. The capacity cannot drop below the number of
// students enrolled in it.
func (c *SectionCatalog) Update(ctx context.Context, id uuid.UUID, in SectionInput) (models.Section, error) {
	if err := validation.Struct(in); err != nil {
		return models.Section{}, err
	}

	var section models.Section
	err := transaction(ctx, c.db, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&section, "id = ?", id).Error; err != nil {
			return err
		}

		in.apply(&section)
		if err := checkSection(tx, section, &section.ID); err != nil {
			return err
		}

		count, err := enrolledCount(tx, section.ID)
		if err != nil {
			return err
		}

		if count > int64(section.Capacity) {
			return models.NewValidationError(models.FieldError{
				Field:   "capacity",
				Message: fmt.Sprintf("capacity cannot be lower than the %d enrolled students", count),
			})
		}

		return tx.Save(&section).Error
	})
	if err != nil {
		return models.Section{}, err
	}

	return section, nil
}

// checkSection verifies the references and uniqueness rules of a section.
// except is the ID of the section itself when it is updated.
func checkSection(tx *gorm.DB, section models.Section, except *uuid.UUID) error {
	for _, teacherID := range []*uuid.UUID{section.TeacherID, section.AdviserID} {
		if teacherID == nil {
			continue
		}
		if err := tx.First(&models.Teacher{}, "id = ?", *teacherID).Error; err != nil {
			return err
		}
	}

	if section.AcademicYearID != nil {
		if err := tx.First(&models.AcademicYear{}, "id = ?", *section.AcademicYearID).Error; err != nil {
			return err
		}
	}

	// Inactive sections do not occupy a name or a room
	if section.Status != models.StatusActive {
		return nil
	}

	q := tx.Model(&models.Section{}).
		Where("LOWER(section_name) = ? AND strand = ? AND status = ?", strings.ToLower(section.SectionName), section.Strand, models.StatusActive)
	if except != nil {
		q = q.Where("id <> ?", *except)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: section %s already exists for strand %s", models.ErrDuplicateKey, section.SectionName, section.Strand)
	}

	if section.RoomNumber == nil {
		return nil
	}

	room, err := roomByNumber(tx, *section.RoomNumber)
	if err != nil {
		return err
	}

	occupant, err := activeSectionInRoom(tx, room.RoomNumber, except)
	if err != nil {
		return err
	}

	if occupant != nil {
		return fmt.Errorf("%w: room %s is already assigned to section %s", models.ErrDuplicateKey, room.RoomNumber, occupant.SectionName)
	}

	if section.Capacity > room.Capacity {
		return fmt.Errorf("%w: section capacity (%d) exceeds room capacity (%d)", models.ErrCapacityExceedsRoom, section.Capacity, room.Capacity)
	}

	return nil
}

// roomByNumber returns the active room with the number. Sections reference
// rooms by number only, if buildings share a number the first building wins.
func roomByNumber(tx *gorm.DB, number string) (models.Room, error) {
	var room models.Room
	err := tx.Where("room_number = ? AND status = ?", number, models.StatusActive).
		Order("building ASC").
		First(&room).Error
	return room, err
}

// Delete removes a section without enrolled students. Students in other
// states that still reference it lose their section.
func (c *SectionCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	return transaction(ctx, c.db, func(tx *gorm.DB) error {
		var section models.Section
		if err := forUpdate(tx).First(&section, "id = ?", id).Error; err != nil {
			return err
		}

		count, err := enrolledCount(tx, id)
		if err != nil {
			return err
		}

		if count > 0 {
			return fmt.Errorf("%w: section %s has %d enrolled students", models.ErrReferenced, section.SectionName, count)
		}

		err = tx.Model(&models.Student{}).Where("section_id = ?", id).Update("section_id", nil).Error
		if err != nil {
			return err
		}

		return tx.Delete(&section).Error
	})
}
