package v1_test

import (
	"net/http"

	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
	"github.com/smartenroll/backend/test"
)

func (s *ControllerSuite) TestSectionAvailable() {
	s.createSection("STEM-A", models.StrandSTEM, 2)
	b := s.createSection("STEM-B", models.StrandSTEM, 5)

	recorder := s.request(http.MethodGet, "/v1/sections/available?strand=STEM", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	section := decode[*models.SectionView](s, recorder)
	s.Require().NotNil(section)
	s.Equal(b.ID, section.ID)
	s.Equal(5, section.AvailableSlots)

	recorder = s.request(http.MethodGet, "/v1/sections/available?strand=ABM", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)
	s.JSONEq(`{"data": null}`, recorder.Body.String())
}

func (s *ControllerSuite) TestSectionListByStrand() {
	s.createSection("STEM-A", models.StrandSTEM, 10)
	s.createSection("ABM-A", models.StrandABM, 10)

	recorder := s.request(http.MethodGet, "/v1/sections?strand=ABM", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	sections := decode[[]models.SectionView](s, recorder)
	s.Require().Len(sections, 1)
	s.Equal("ABM-A", sections[0].SectionName)

	recorder = s.request(http.MethodGet, "/v1/sections", nil)
	s.Len(decode[[]models.SectionView](s, recorder), 2)
}

func (s *ControllerSuite) TestSectionCapacityExceedsRoom() {
	s.create("/v1/rooms", registrar.RoomInput{RoomNumber: "R101", Building: "Main", Capacity: 30})

	room := "R101"
	recorder := s.request(http.MethodPost, "/v1/sections", registrar.SectionInput{SectionName: "STEM-A", Strand: models.StrandSTEM, Capacity: 35, RoomNumber: &room})
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusBadRequest)
	s.Contains(recorder.Body.String(), "exceeds room capacity")
}

func (s *ControllerSuite) TestSectionStudents() {
	section := s.createSection("HUMSS-A", models.StrandHUMSS, 10)
	s.enroll(s.enrollInput(models.StrandHUMSS, 0))

	recorder := s.request(http.MethodGet, "/v1/sections/"+section.ID.String()+"/students", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	students := decode[[]models.StudentSummary](s, recorder)
	s.Require().Len(students, 1)
	s.Equal("HUMSS-A", *students[0].SectionName)
}
