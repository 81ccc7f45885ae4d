package v1_test

import (
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/internal/types"
	v1 "github.com/smartenroll/backend/pkg/controllers/v1"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
	"github.com/smartenroll/backend/test"
)

func (s *ControllerSuite) pay(student models.Student, amount int64, method string) models.Payment {
	recorder := s.create("/v1/payments", registrar.PaymentInput{
		StudentID:     student.ID,
		Amount:        decimal.NewFromInt(amount),
		PaymentDate:   types.NewDate(2024, time.June, 10),
		PaymentMethod: method,
	})
	return decode[models.Payment](s, recorder)
}

func (s *ControllerSuite) TestPaymentUpdatesBalance() {
	student := s.enroll(s.enrollInput(models.StrandSTEM, 10000))

	payment := s.pay(student, 4000, "Cash")
	s.Equal("REC-20240610-0001", payment.ReceiptNumber)
	s.Require().NotNil(payment.RecordedBy)
	s.Equal(s.identity.ID, *payment.RecordedBy)

	recorder := s.request(http.MethodGet, "/v1/students/"+student.ID.String()+"/payment-summary", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	summary := decode[registrar.PaymentSummary](s, recorder)
	s.True(decimal.NewFromInt(4000).Equal(summary.AmountPaid))
	s.True(decimal.NewFromInt(6000).Equal(summary.Balance))
	s.Equal(models.PaymentPartial, summary.PaymentStatus)

	recorder = s.request(http.MethodDelete, "/v1/payments/"+payment.ID.String(), nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusNoContent)

	recorder = s.request(http.MethodGet, "/v1/students/"+student.ID.String()+"/payment-summary", nil)
	summary = decode[registrar.PaymentSummary](s, recorder)
	s.True(decimal.NewFromInt(10000).Equal(summary.Balance))
	s.Equal(models.PaymentPending, summary.PaymentStatus)
}

func (s *ControllerSuite) TestPaymentValidation() {
	student := s.enroll(s.enrollInput(models.StrandSTEM, 10000))

	recorder := s.request(http.MethodPost, "/v1/payments", registrar.PaymentInput{StudentID: student.ID, Amount: decimal.Zero})
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusBadRequest)
	s.Contains(recorder.Body.String(), `"field":"amount"`)
	s.Contains(recorder.Body.String(), `"field":"paymentDate"`)
}

func (s *ControllerSuite) TestPaymentListAndStats() {
	student := s.enroll(s.enrollInput(models.StrandSTEM, 10000))
	s.pay(student, 3000, "Cash")
	s.pay(student, 2000, "GCash")
	s.pay(student, 1000, "Cash")

	recorder := s.request(http.MethodGet, "/v1/payments?dateFrom=2024-06-01&dateTo=2024-06-30", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	payments := decode[[]models.PaymentView](s, recorder)
	s.Len(payments, 3)
	s.Equal(student.FullName, payments[0].StudentName)

	recorder = s.request(http.MethodGet, "/v1/students/"+student.ID.String()+"/payments", nil)
	s.Len(decode[[]models.PaymentView](s, recorder), 3)

	recorder = s.request(http.MethodGet, "/v1/payments/stats", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	stats := decode[registrar.PaymentStats](s, recorder)
	s.True(decimal.NewFromInt(6000).Equal(stats.TotalCollected))
	s.EqualValues(3, stats.TransactionCount)
	s.Require().Len(stats.ByMethod, 2)
	s.Equal("Cash", stats.ByMethod[0].Method)
}

func (s *ControllerSuite) TestPaymentReceipt() {
	student := s.enroll(s.enrollInput(models.StrandSTEM, 10000))
	payment := s.pay(student, 10000, "Cash")

	recorder := s.request(http.MethodGet, "/v1/payments/"+payment.ID.String()+"/receipt?format=json", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)

	document := decode[v1.Document](s, recorder)
	content, err := os.ReadFile(document.Path)
	s.Require().Nil(err)
	s.Contains(string(content), "REC-20240610-0001")
	s.Contains(string(content), "PHP 10,000.00")

	recorder = s.request(http.MethodGet, "/v1/payments/"+payment.ID.String()+"/receipt", nil)
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusOK)
	s.Contains(recorder.Header().Get("Content-Disposition"), "Receipt_REC-20240610-0001.txt")
}

func (s *ControllerSuite) TestPaymentUnknownStudent() {
	recorder := s.request(http.MethodPost, "/v1/payments", registrar.PaymentInput{
		StudentID:   uuid.New(),
		Amount:      decimal.NewFromInt(100),
		PaymentDate: types.NewDate(2024, time.June, 10),
	})
	test.AssertHTTPStatus(s.T(), &recorder, http.StatusNotFound)
}
