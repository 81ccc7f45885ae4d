package v1_test

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
	"github.com/smartenroll/backend/test"
)

func (s *ControllerSuite) TestEnrollAssignsSection() {
	section := s.createSection("STEM-A", models.StrandSTEM, 2)

	student := s.enroll(s.enrollInput(models.StrandSTEM, 10000))
	s.Require().NotNil(student.SectionID)
	s.Equal(section.ID, *student.SectionID)
	s.Equal(models.StudentEnrolled, student.Status)
	s.Equal(models.PaymentPending, student.PaymentStatus)

	recorder := s.request(http.MethodGet, "/v1/sections/"+section.ID.String(), nil)
	s.Equal(1, decode[models.SectionView](s, recorder).AvailableSlots)
}

func (s *ControllerSuite) TestEnrollIntoFullSection() {
	section := s.createSection("STEM-A", models.StrandSTEM, 1)
	s.enroll(s.enrollInput(models.StrandSTEM, 0))

	in := s.enrollInput(models.StrandSTEM, 0)
	in.SectionID = &section.ID
	recorder := s.request(http.MethodPost, "/v1/students", in)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusConflict)
}

func (s *ControllerSuite) TestEnrollDuplicateLRN() {
	in := s.enrollInput(models.StrandGAS, 0)
	s.enroll(in)

	in.Email = "other@example.com"
	recorder := s.request(http.MethodPost, "/v1/students", in)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusConflict)
}

func (s *ControllerSuite) TestEnrollInvalidLRN() {
	in := s.enrollInput(models.StrandGAS, 0)
	in.LRN = "12345"

	recorder := s.request(http.MethodPost, "/v1/students", in)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusBadRequest)
	s.Contains(recorder.Body.String(), `"field":"lrn"`)
}

func (s *ControllerSuite) TestUpdateStudentStatus() {
	student := s.enroll(s.enrollInput(models.StrandTVL, 0))

	dropped := models.StudentDropped
	reason := "Moved away"
	recorder := s.request(http.MethodPatch, "/v1/students/"+student.ID.String(), registrar.StudentUpdate{Status: &dropped, StatusReason: &reason})
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	updated := decode[models.Student](s, recorder)
	s.Equal(models.StudentDropped, updated.Status)
	s.Require().NotNil(updated.StatusChangedBy)
	s.Equal(s.identity.ID, *updated.StatusChangedBy)

	recorder = s.request(http.MethodGet, "/v1/students/"+student.ID.String()+"/status-history", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	history := decode[[]models.StudentStatusHistory](s, recorder)
	s.Require().Len(history, 1)
	s.Equal("Moved away", history[0].Reason)
}

func (s *ControllerSuite) TestSearchAndFilter() {
	in := s.enrollInput(models.StrandABM, 0)
	in.FirstName = "Andres"
	in.LastName = "Bonifacio"
	s.enroll(in)
	s.enroll(s.enrollInput(models.StrandSTEM, 0))

	recorder := s.request(http.MethodGet, "/v1/students/search?q=bonifacio", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)
	s.Len(decode[[]models.StudentSummary](s, recorder), 1)

	recorder = s.request(http.MethodGet, "/v1/students/filter?strand=STEM&status=Enrolled", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)
	s.Len(decode[[]models.StudentSummary](s, recorder), 1)

	recorder = s.request(http.MethodGet, "/v1/students/recent?limit=1", nil)
	s.Len(decode[[]models.StudentSummary](s, recorder), 1)

	recorder = s.request(http.MethodGet, "/v1/students/enrolled?from=2024-06-10&to=2024-06-10", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)
	s.Len(decode[[]models.StudentSummary](s, recorder), 2)

	recorder = s.request(http.MethodGet, "/v1/students/enrolled?from=2024-06-11", nil)
	s.Len(decode[[]models.StudentSummary](s, recorder), 0)
}

func (s *ControllerSuite) TestEnrollmentStats() {
	s.createSection("STEM-A", models.StrandSTEM, 10)
	s.enroll(s.enrollInput(models.StrandSTEM, 0))

	recorder := s.request(http.MethodGet, "/v1/students/stats", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	stats := decode[registrar.EnrollmentStats](s, recorder)
	s.EqualValues(1, stats.TotalEnrolled)
	s.EqualValues(10, stats.TotalSlots)
	s.EqualValues(9, stats.AvailableSlots)
}

func (s *ControllerSuite) TestDeleteStudent() {
	student := s.enroll(s.enrollInput(models.StrandGAS, 0))

	recorder := s.request(http.MethodDelete, "/v1/students/"+student.ID.String(), nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusNoContent)

	recorder = s.request(http.MethodGet, "/v1/students/"+student.ID.String(), nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusNotFound)

	recorder = s.request(http.MethodGet, "/v1/students/"+uuid.New().String()+"/payments", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusNotFound)
}
