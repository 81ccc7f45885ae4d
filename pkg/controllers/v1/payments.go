package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/registrar"
)

// RegisterPaymentRoutes registers the routes for payments with
// the RouterGroup that is passed.
func (co Controller) RegisterPaymentRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetPayments)
		r.POST("", co.CreatePayment)
		r.GET("/stats", co.GetPaymentStats)
	}

	// Payment with ID
	{
		r.GET("/:id", co.GetPayment)
		r.GET("/:id/receipt", co.GetPaymentReceipt)
		r.DELETE("/:id", co.DeletePayment)
	}
}

// GetPayments lists the latest payments, optionally restricted to a
// range of payment dates and the payment status of the student.
func (co Controller) GetPayments(c *gin.Context) {
	var f registrar.PaymentFilter
	if err := httputil.BindQuery(c, &f); err != nil {
		httperrors.Handler(c, err)
		return
	}

	payments, err := co.Registrar.Payments.ListAll(c.Request.Context(), f)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(payments))
}

// CreatePayment records a payment and updates the balance of the student.
func (co Controller) CreatePayment(c *gin.Context) {
	var in registrar.PaymentInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	payment, err := co.Registrar.Payments.AddPayment(c.Request.Context(), in, actor(c))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusCreated, payment)
}

func (co Controller) GetPaymentStats(c *gin.Context) {
	var q QueryAcademicYear
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	stats, err := co.Registrar.Payments.Stats(c.Request.Context(), q.AcademicYearID.Ptr())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, stats)
}

func (co Controller) GetPayment(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	payment, err := co.Registrar.Payments.GetByID(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, payment)
}

// GetPaymentReceipt renders the receipt of a payment and sends the document.
func (co Controller) GetPaymentReceipt(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	data, err := co.Registrar.Payments.Receipt(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	path, err := co.Renderer.Receipt(data)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	sendDocument(c, path)
}

// DeletePayment removes a payment and reverses its effect on the balance.
func (co Controller) DeletePayment(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := co.Registrar.Payments.DeletePayment(c.Request.Context(), id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
