package registrar

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/validation"
	"gorm.io/gorm"
)

// RoomRegistry is the inventory of physical rooms.
type RoomRegistry struct {
	db *gorm.DB
}

func NewRoomRegistry(db *gorm.DB) *RoomRegistry {
	return &RoomRegistry{db: db}
}

type RoomInput struct {
	RoomNumber string              `json:"roomNumber" validate:"notblank" example:"R101"`
	Building   string              `json:"building" validate:"notblank" example:"Main"`
	Capacity   int                 `json:"capacity" validate:"gt=0" example:"40"`
	Status     models.RecordStatus `json:"status" validate:"omitempty,oneof=Active Inactive" example:"Active"`
}

func (in RoomInput) model() models.Room {
	status := in.Status
	if status == "" {
		status = models.StatusActive
	}

	return models.Room{
		RoomNumber: strings.TrimSpace(in.RoomNumber),
		Building:   strings.TrimSpace(in.Building),
		Capacity:   in.Capacity,
		Status:     status,
	}
}

// RoomOption is a room as offered for assignment to a section.
type RoomOption struct {
	models.Room
	OccupiedBy *string `json:"occupiedBy" example:"STEM-A"` // Name of the active section using the room
}

// ListActive returns all active rooms.
func (r *RoomRegistry) ListActive(ctx context.Context) ([]models.Room, error) {
	rooms := make([]models.Room, 0)
	err := r.db.WithContext(ctx).
		Where(&models.Room{Status: models.StatusActive}).
		Order("building ASC, room_number ASC").
		Find(&rooms).Error
	return rooms, err
}

// ListAll returns rooms of every status.
func (r *RoomRegistry) ListAll(ctx context.Context) ([]models.Room, error) {
	rooms := make([]models.Room, 0)
	err := r.db.WithContext(ctx).Order("building ASC, room_number ASC").Find(&rooms).Error
	return rooms, err
}

func (r *RoomRegistry) GetByID(ctx context.Context, id uuid.UUID) (models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error
	return room, err
}

// ListForAssignment returns the active rooms together with the active
// section occupying each of them. The section given by except is ignored
// so that a section being edited does not block its own room.
func (r *RoomRegistry) ListForAssignment(ctx context.Context, except *uuid.UUID) ([]RoomOption, error) {
	join := "LEFT JOIN sections ON sections.room_number = rooms.room_number AND sections.status = ?"
	args := []interface{}{models.StatusActive}
	if except != nil {
		join += " AND sections.id <> ?"
		args = append(args, *except)
	}

	options := make([]RoomOption, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Select("rooms.*, sections.section_name AS occupied_by").
		Joins(join, args...).
		Where("rooms.status = ?", models.StatusActive).
		Order("rooms.building ASC, rooms.room_number ASC").
		Scan(&options).Error
	return options, err
}

// Add registers a new room. The pair of room number and building is unique.
func (r *RoomRegistry) Add(ctx context.Context, in RoomInput) (models.Room, error) {
	if err := validation.Struct(in); err != nil {
		return models.Room{}, err
	}

	room := in.model()
	err := transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := roomUnique(tx, room, nil); err != nil {
			return err
		}
		return tx.Create(&room).Error
	})
	if err != nil {
		return models.Room{}, err
	}

	return room, nil
}

// Update changes a room. A room used by an active section keeps its number
// and building and cannot shrink below the capacity of that section.
func (r *RoomRegistry) Update(ctx context.Context, id uuid.UUID, in RoomInput) (models.Room, error) {
	if err := validation.Struct(in); err != nil {
		return models.Room{}, err
	}

	var room models.Room
	err := transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&room, "id = ?", id).Error; err != nil {
			return err
		}

		updated := in.model()
		if err := roomUnique(tx, updated, &room.ID); err != nil {
			return err
		}

		section, err := activeSectionInRoom(tx, room.RoomNumber, nil)
		if err != nil {
			return err
		}

		if section != nil {
			if updated.RoomNumber != room.RoomNumber || updated.Building != room.Building {
				return fmt.Errorf("%w: room %s is assigned to section %s", models.ErrReferenced, room.RoomNumber, section.SectionName)
			}

			if updated.Capacity < section.Capacity {
				return fmt.Errorf("%w: section %s needs %d seats, room %s would have %d", models.ErrCapacityExceedsRoom, section.SectionName, section.Capacity, room.RoomNumber, updated.Capacity)
			}
		}

		room.RoomNumber = updated.RoomNumber
		room.Building = updated.Building
		room.Capacity = updated.Capacity
		room.Status = updated.Status
		return tx.Save(&room).Error
	})
	if err != nil {
		return models.Room{}, err
	}

	return room, nil
}

// Delete removes a room that no active section references.
func (r *RoomRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	return transaction(ctx, r.db, func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, "id = ?", id).Error; err != nil {
			return err
		}

		section, err := activeSectionInRoom(tx, room.RoomNumber, nil)
		if err != nil {
			return err
		}

		if section != nil {
			return fmt.Errorf("%w: room %s is assigned to section %s", models.ErrReferenced, room.RoomNumber, section.SectionName)
		}

		return tx.Delete(&room).Error
	})
}

func roomUnique(tx *gorm.DB, room models.Room, except *uuid.UUID) error {
	q := tx.Model(&models.Room{}).Where("room_number = ? AND building = ?", room.RoomNumber, room.Building)
	if except != nil {
		q = q.Where("id <> ?", *except)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: room %s already exists in building %s", models.ErrDuplicateKey, room.RoomNumber, room.Building)
	}

	return nil
}

// activeSectionInRoom returns the active section using the room number, if any.
func activeSectionInRoom(tx *gorm.DB, roomNumber string, except *uuid.UUID) (*models.Section, error) {
	q := tx.Where("room_number = ? AND status = ?", roomNumber, models.StatusActive)
	if except != nil {
		q = q.Where("id <> ?", *except)
	}

	var sections []models.Section
	if err := q.Limit(1).Find(&sections).Error; err != nil {
		return nil, err
	}

	if len(sections) == 0 {
		return nil, nil
	}

	return &sections[0], nil
}
