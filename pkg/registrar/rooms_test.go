package registrar_test

import (
	"github.com/google/uuid"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
)

func (s *RegistrarSuite) TestRoomAddValidation() {
	_, err := s.r.Rooms.Add(s.ctx, registrar.RoomInput{RoomNumber: " ", Capacity: 0})

	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)

	fields := []string{}
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	s.Assert().ElementsMatch([]string{"roomNumber", "building", "capacity"}, fields)
}

func (s *RegistrarSuite) TestRoomAddDuplicate() {
	s.createRoom("R101", 40)

	_, err := s.r.Rooms.Add(s.ctx, registrar.RoomInput{RoomNumber: "R101", Building: "Main", Capacity: 30})
	s.Assert().ErrorIs(err, models.ErrDuplicateKey)

	_, err = s.r.Rooms.Add(s.ctx, registrar.RoomInput{RoomNumber: "R101", Building: "Annex", Capacity: 30})
	s.Assert().Nil(err, "the same number in another building is a different room")
}

func (s *RegistrarSuite) TestRoomListActive() {
	s.createRoom("R102", 40)
	s.createRoom("R101", 40)
	_, err := s.r.Rooms.Add(s.ctx, registrar.RoomInput{RoomNumber: "R103", Building: "Main", Capacity: 40, Status: models.StatusInactive})
	s.Require().Nil(err)

	rooms, err := s.r.Rooms.ListActive(s.ctx)
	s.Require().Nil(err)
	s.Require().Len(rooms, 2)
	s.Assert().Equal("R101", rooms[0].RoomNumber)
	s.Assert().Equal("R102", rooms[1].RoomNumber)

	all, err := s.r.Rooms.ListAll(s.ctx)
	s.Require().Nil(err)
	s.Assert().Len(all, 3)
}

func (s *RegistrarSuite) TestRoomDeleteInUse() {
	room := s.createRoom("R101", 40)
	section := s.createSection("STEM-A", models.StrandSTEM, 40, ptr("R101"))

	s.Assert().ErrorIs(s.r.Rooms.Delete(s.ctx, room.ID), models.ErrReferenced)

	_, err := s.r.Sections.Update(s.ctx, section.ID, registrar.SectionInput{
		SectionName: "STEM-A",
		Strand:      models.StrandSTEM,
		Capacity:    40,
		Status:      models.StatusInactive,
	})
	s.Require().Nil(err)

	s.Assert().Nil(s.r.Rooms.Delete(s.ctx, room.ID))
	_, err = s.r.Rooms.GetByID(s.ctx, room.ID)
	s.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (s *RegistrarSuite) TestRoomDeleteNotFound() {
	s.Assert().ErrorIs(s.r.Rooms.Delete(s.ctx, uuid.New()), models.ErrResourceNotFound)
}

func (s *RegistrarSuite) TestRoomUpdateBelowSectionCapacity() {
	room := s.createRoom("R101", 40)
	s.createSection("STEM-A", models.StrandSTEM, 35, ptr("R101"))

	_, err := s.r.Rooms.Update(s.ctx, room.ID, registrar.RoomInput{RoomNumber: "R101", Building: "Main", Capacity: 30})
	s.Assert().ErrorIs(err, models.ErrCapacityExceedsRoom)

	updated, err := s.r.Rooms.Update(s.ctx, room.ID, registrar.RoomInput{RoomNumber: "R101", Building: "Main", Capacity: 45})
	s.Require().Nil(err)
	s.Assert().Equal(45, updated.Capacity)
}

func (s *RegistrarSuite) TestRoomListForAssignment() {
	s.createRoom("R101", 40)
	s.createRoom("R102", 40)
	section := s.createSection("STEM-A", models.StrandSTEM, 40, ptr("R101"))

	options, err := s.r.Rooms.ListForAssignment(s.ctx, nil)
	s.Require().Nil(err)
	s.Require().Len(options, 2)
	s.Require().NotNil(options[0].OccupiedBy)
	s.Assert().Equal("STEM-A", *options[0].OccupiedBy)
	s.Assert().Nil(options[1].OccupiedBy)

	options, err = s.r.Rooms.ListForAssignment(s.ctx, &section.ID)
	s.Require().Nil(err)
	s.Assert().Nil(options[0].OccupiedBy, "the section being edited does not occupy its own room")
}
