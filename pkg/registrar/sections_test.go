package registrar_test

import (
	"github.com/google/uuid"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
)

func (s *RegistrarSuite) TestFindAvailablePicksMostSlots() {
	a := s.createSection("STEM-A", models.StrandSTEM, 40, nil)
	b := s.createSection("STEM-B", models.StrandSTEM, 40, nil)
	s.fill(a, 38)
	s.fill(b, 10)

	section, err := s.r.Sections.FindAvailable(s.ctx, models.StrandSTEM)
	s.Require().Nil(err)
	s.Require().NotNil(section)
	s.Assert().Equal(b.ID, section.ID)
	s.Assert().Equal(10, section.StudentCount)
	s.Assert().Equal(30, section.AvailableSlots)
	s.Assert().False(section.IsFull)
}

func (s *RegistrarSuite) TestFindAvailableTieBreaksByName() {
	s.createSection("HUMSS-B", models.StrandHUMSS, 10, nil)
	a := s.createSection("HUMSS-A", models.StrandHUMSS, 10, nil)

	section, err := s.r.Sections.FindAvailable(s.ctx, models.StrandHUMSS)
	s.Require().Nil(err)
	s.Require().NotNil(section)
	s.Assert().Equal(a.ID, section.ID)
}

func (s *RegistrarSuite) TestFindAvailableFullStrand() {
	a := s.createSection("GAS-A", models.StrandGAS, 2, nil)
	s.fill(a, 2)

	section, err := s.r.Sections.FindAvailable(s.ctx, models.StrandGAS)
	s.Require().Nil(err)
	s.Assert().Nil(section)

	student := s.enroll(models.StrandGAS, 0)
	s.Assert().Nil(student.SectionID, "enrollment succeeds without a section")
	s.Assert().Equal(models.StudentEnrolled, student.Status)
}

func (s *RegistrarSuite) TestFindAvailableIgnoresOtherStrandsAndInactive() {
	s.createSection("ABM-A", models.StrandABM, 40, nil)
	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{SectionName: "TVL-A", Strand: models.StrandTVL, Capacity: 40, Status: models.StatusInactive})
	s.Require().Nil(err)

	section, err := s.r.Sections.FindAvailable(s.ctx, models.StrandTVL)
	s.Require().Nil(err)
	s.Assert().Nil(section)
}

func (s *RegistrarSuite) TestSectionCapacityInvariant() {
	section := s.createSection("STEM-A", models.StrandSTEM, 2, nil)

	for i := 0; i < 5; i++ {
		s.enroll(models.StrandSTEM, 0)
	}

	view, err := s.r.Sections.GetByID(s.ctx, section.ID)
	s.Require().Nil(err)
	s.Assert().Equal(2, view.StudentCount)
	s.Assert().True(view.IsFull)
	s.Assert().Equal(0, view.AvailableSlots)

	students, err := s.r.Enrollment.ListAll(s.ctx)
	s.Require().Nil(err)
	sectionless := 0
	for _, st := range students {
		if st.SectionID == nil {
			sectionless++
		}
	}
	s.Assert().Equal(3, sectionless)

	// Moving a sectionless student into the full section is rejected
	for _, st := range students {
		if st.SectionID == nil {
			_, err := s.r.Enrollment.Update(s.ctx, st.ID, registrar.StudentUpdate{SectionID: &section.ID}, nil)
			s.Assert().ErrorIs(err, models.ErrSectionFull)
			break
		}
	}

	// and so is enrolling into it directly
	in := s.enrollInput(models.StrandSTEM, 0)
	in.SectionID = &section.ID
	_, err = s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Assert().ErrorIs(err, models.ErrSectionFull)
}

func (s *RegistrarSuite) TestSectionRoomDoubleBooking() {
	s.createRoom("R101", 40)
	s.createSection("STEM-A", models.StrandSTEM, 40, ptr("R101"))

	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{SectionName: "ABM-A", Strand: models.StrandABM, Capacity: 30, RoomNumber: ptr("R101")})
	s.Assert().ErrorIs(err, models.ErrDuplicateKey)
}

func (s *RegistrarSuite) TestSectionCapacityExceedsRoom() {
	s.createRoom("R101", 30)

	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{SectionName: "STEM-A", Strand: models.StrandSTEM, Capacity: 40, RoomNumber: ptr("R101")})
	s.Require().ErrorIs(err, models.ErrCapacityExceedsRoom)
	s.Assert().Contains(err.Error(), "section capacity (40) exceeds room capacity (30)")
}

func (s *RegistrarSuite) TestSectionUnknownRoom() {
	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{SectionName: "STEM-A", Strand: models.StrandSTEM, Capacity: 40, RoomNumber: ptr("X999")})
	s.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (s *RegistrarSuite) TestSectionDuplicateName() {
	s.createSection("STEM-A", models.StrandSTEM, 40, nil)

	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{SectionName: "stem-a", Strand: models.StrandSTEM, Capacity: 40})
	s.Assert().ErrorIs(err, models.ErrDuplicateKey)

	_, err = s.r.Sections.Add(s.ctx, registrar.SectionInput{SectionName: "STEM-A", Strand: models.StrandABM, Capacity: 40})
	s.Assert().Nil(err, "names are unique per strand")
}

func (s *RegistrarSuite) TestSectionAddValidation() {
	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{Strand: "ART", Capacity: -1})

	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Assert().Len(verr.Fields, 3)
}

func (s *RegistrarSuite) TestSectionAddUnknownTeacher() {
	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{SectionName: "STEM-A", Strand: models.StrandSTEM, Capacity: 40, TeacherID: ptr(uuid.New())})
	s.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (s *RegistrarSuite) TestSectionUpdateBelowEnrollment() {
	section := s.createSection("STEM-A", models.StrandSTEM, 10, nil)
	s.fill(section, 5)

	_, err := s.r.Sections.Update(s.ctx, section.ID, registrar.SectionInput{SectionName: "STEM-A", Strand: models.StrandSTEM, Capacity: 4})
	s.Assert().ErrorIs(err, models.ErrValidation)

	updated, err := s.r.Sections.Update(s.ctx, section.ID, registrar.SectionInput{SectionName: "STEM-A", Strand: models.StrandSTEM, Capacity: 5})
	s.Require().Nil(err)
	s.Assert().Equal(5, updated.Capacity)
}

func (s *RegistrarSuite) TestSectionViewNames() {
	teacher := s.createTeacher("Maria Santos")
	room := s.createRoom("R101", 45)

	section, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{
		SectionName: "STEM-A",
		Strand:      models.StrandSTEM,
		Capacity:    40,
		RoomNumber:  &room.RoomNumber,
		TeacherID:   &teacher.ID,
	})
	s.Require().Nil(err)

	view, err := s.r.Sections.GetByID(s.ctx, section.ID)
	s.Require().Nil(err)
	s.Assert().Equal("Maria Santos", view.TeacherName)
	s.Assert().Equal("", view.AdviserName)
	s.Require().NotNil(view.RoomCapacity)
	s.Assert().Equal(45, *view.RoomCapacity)
}

func (s *RegistrarSuite) TestSectionListByStrand() {
	s.createSection("STEM-B", models.StrandSTEM, 40, nil)
	s.createSection("STEM-A", models.StrandSTEM, 40, nil)
	s.createSection("ABM-A", models.StrandABM, 40, nil)

	sections, err := s.r.Sections.ListByStrand(s.ctx, models.StrandSTEM, "")
	s.Require().Nil(err)
	s.Require().Len(sections, 2)
	s.Assert().Equal("STEM-A", sections[0].SectionName)

	all, err := s.r.Sections.ListActive(s.ctx)
	s.Require().Nil(err)
	s.Require().Len(all, 3)
	s.Assert().Equal(models.StrandABM, all[0].Strand)
}

func (s *RegistrarSuite) TestSectionDelete() {
	section := s.createSection("STEM-A", models.StrandSTEM, 40, nil)
	student := s.enroll(models.StrandSTEM, 0)
	s.Require().Equal(section.ID, *student.SectionID)

	s.Assert().ErrorIs(s.r.Sections.Delete(s.ctx, section.ID), models.ErrReferenced)

	_, err := s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{Status: ptr(models.StudentDropped)}, nil)
	s.Require().Nil(err)

	s.Require().Nil(s.r.Sections.Delete(s.ctx, section.ID))

	dropped, err := s.r.Enrollment.GetByID(s.ctx, student.ID)
	s.Require().Nil(err)
	s.Assert().Nil(dropped.SectionID)
}
