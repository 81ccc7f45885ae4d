package models

// Room is a physical classroom.
type Room struct {
	DefaultModel
	RoomNumber string       `json:"roomNumber" gorm:"uniqueIndex:room_number_building;size:32" example:"R101"`   // Number of the room, unique per building
	Building   string       `json:"building" gorm:"uniqueIndex:room_number_building;size:128" example:"Main"`   // Building the room is in
	Capacity   int          `json:"capacity" gorm:"check:room_capacity_positive,capacity > 0" example:"40"`     // Number of seats
	Status     RecordStatus `json:"status" gorm:"size:16;default:Active" example:"Active"`                      // Active or Inactive
}
