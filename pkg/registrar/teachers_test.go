package registrar_test

import (
	"github.com/smartenroll/backend/internal/types"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
)

func (s *RegistrarSuite) TestTeacherAdd() {
	teacher, err := s.r.Teachers.Add(s.ctx, registrar.TeacherInput{
		FullName:       "Maria Santos",
		Email:          "Maria.Santos@School.example",
		ContactNumber:  "09171234567",
		Specialization: "Physics",
	})
	s.Require().Nil(err)

	s.Assert().Equal("maria.santos@school.example", teacher.Email)
	s.Assert().Equal(models.StatusActive, teacher.Status)
	s.Assert().False(teacher.HireDate.IsZero())
	s.Assert().Equal(types.DateOf(s.now), teacher.HireDate)

	_, err = s.r.Teachers.Add(s.ctx, registrar.TeacherInput{
		FullName:       "Another Santos",
		Email:          "maria.santos@school.example",
		ContactNumber:  "09170000000",
		Specialization: "Chemistry",
	})
	s.Assert().ErrorIs(err, models.ErrDuplicateKey)
}

func (s *RegistrarSuite) TestTeacherAddValidation() {
	_, err := s.r.Teachers.Add(s.ctx, registrar.TeacherInput{FullName: "No Contact", Email: "not-an-email"})

	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Assert().Len(verr.Fields, 3)
}

func (s *RegistrarSuite) TestTeacherUpdateKeepsOwnEmail() {
	teacher := s.createTeacher("Maria Santos")

	updated, err := s.r.Teachers.Update(s.ctx, teacher.ID, registrar.TeacherInput{
		FullName:       "Maria Santos-Reyes",
		Email:          teacher.Email,
		ContactNumber:  "09171234567",
		Specialization: "Physics",
		Status:         models.StatusInactive,
	})
	s.Require().Nil(err)
	s.Assert().Equal("Maria Santos-Reyes", updated.FullName)
	s.Assert().Equal(models.StatusInactive, updated.Status)
	s.Assert().Equal(teacher.HireDate, updated.HireDate)
}

func (s *RegistrarSuite) TestTeacherDeleteInUse() {
	teacher := s.createTeacher("Maria Santos")
	adviser := s.createTeacher("Jose Reyes")

	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{
		SectionName: "STEM-A",
		Strand:      models.StrandSTEM,
		Capacity:    40,
		TeacherID:   &teacher.ID,
		AdviserID:   &adviser.ID,
	})
	s.Require().Nil(err)

	s.Assert().ErrorIs(s.r.Teachers.Delete(s.ctx, teacher.ID), models.ErrReferenced)
	s.Assert().ErrorIs(s.r.Teachers.Delete(s.ctx, adviser.ID), models.ErrReferenced)

	free := s.createTeacher("Ana Cruz")
	s.Assert().Nil(s.r.Teachers.Delete(s.ctx, free.ID))
}

func (s *RegistrarSuite) TestTeacherListAvailable() {
	busy := s.createTeacher("Maria Santos")
	free := s.createTeacher("Ana Cruz")

	_, err := s.r.Sections.Add(s.ctx, registrar.SectionInput{SectionName: "ABM-A", Strand: models.StrandABM, Capacity: 40, AdviserID: &busy.ID})
	s.Require().Nil(err)

	available, err := s.r.Teachers.ListAvailable(s.ctx)
	s.Require().Nil(err)
	s.Require().Len(available, 1)
	s.Assert().Equal(free.ID, available[0].ID)

	sections, err := s.r.Teachers.Sections(s.ctx, busy.ID)
	s.Require().Nil(err)
	s.Require().Len(sections, 1)
	s.Assert().Equal("ABM-A", sections[0].SectionName)
}
