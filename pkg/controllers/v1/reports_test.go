package v1_test

import (
	"net/http"
	"os"

	v1 "github.com/smartenroll/backend/pkg/controllers/v1"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
	"github.com/smartenroll/backend/test"
)

func (s *ControllerSuite) TestReportStrand() {
	s.createSection("STEM-A", models.StrandSTEM, 4)
	s.enroll(s.enrollInput(models.StrandSTEM, 0))

	recorder := s.request(http.MethodGet, "/v1/reports?kind=strand&range=All+Time", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	report := decode[registrar.Report](s, recorder)
	s.Equal(registrar.ReportStrand, report.Kind)
	s.Require().NotNil(report.Total)
	s.EqualValues(1, report.Total.Enrolled)
	s.EqualValues(3, report.Total.Available)
}

func (s *ControllerSuite) TestReportInvalid() {
	recorder := s.request(http.MethodGet, "/v1/reports?kind=weekly", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusBadRequest)

	recorder = s.request(http.MethodGet, "/v1/reports?kind=total&range=Yesterday", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusBadRequest)
}

func (s *ControllerSuite) TestReportExport() {
	s.enroll(s.enrollInput(models.StrandABM, 0))

	recorder := s.request(http.MethodGet, "/v1/reports/export?kind=recent&range=Today&format=json", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	document := decode[v1.Document](s, recorder)
	s.Contains(document.Path, "SmartEnroll_recent_Today_")

	content, err := os.ReadFile(document.Path)
	s.Require().Nil(err)
	s.Contains(string(content), "Page 1 of 1")
}
