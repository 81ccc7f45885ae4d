package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/registrar"
)

// RegisterStudentRoutes registers the routes for students with
// the RouterGroup that is passed.
func (co Controller) RegisterStudentRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetStudents)
		r.POST("", co.EnrollStudent)
		r.GET("/search", co.SearchStudents)
		r.GET("/filter", co.FilterStudents)
		r.GET("/recent", co.GetRecentEnrollments)
		r.GET("/enrolled", co.GetEnrollmentsByDate)
		r.GET("/stats", co.GetEnrollmentStats)
	}

	// Student with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetStudent)
		r.PATCH("/:id", co.UpdateStudent)
		r.DELETE("/:id", co.DeleteStudent)
		r.GET("/:id/status-history", co.GetStudentStatusHistory)
		r.GET("/:id/section-history", co.GetStudentSectionHistory)
		r.GET("/:id/payments", co.GetStudentPayments)
		r.GET("/:id/payment-summary", co.GetStudentPaymentSummary)
	}
}

// GetStudents lists all enrolled students, the latest enrollment first.
func (co Controller) GetStudents(c *gin.Context) {
	students, err := co.Registrar.Enrollment.ListAll(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(students))
}

// EnrollStudent enrolls a new student. When no sectionId is sent, the
// student is assigned to the section of their strand with the most
// available slots, or to no section if all of them are full.
func (co Controller) EnrollStudent(c *gin.Context) {
	var in registrar.EnrollInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	student, err := co.Registrar.Enrollment.Enroll(c.Request.Context(), in, actor(c))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusCreated, student)
}
// SearchStudents matches the q parameter against name, email and strand.
// SearchStudents matches the q parameter against name, email and LRN.
func (co Controller) SearchStudents(c *gin.Context) {
	var q QuerySearch
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	students, err := co.Registrar.Enrollment.Search(c.Request.Context(), q.Query)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(students))
}

// FilterStudents combines all set filters with AND.
func (co Controller) FilterStudents(c *gin.Context) {
	var f registrar.StudentFilter
	if err := httputil.BindQuery(c, &f); err != nil {
		httperrors.Handler(c, err)
		return
	}

	students, err := co.Registrar.Enrollment.AdvancedSearch(c.Request.Context(), f)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(students))
}

func (co Controller) GetRecentEnrollments(c *gin.Context) {
	var q QueryLimit
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	students, err := co.Registrar.Enrollment.Recent(c.Request.Context(), q.Limit)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(students))
}

// GetEnrollmentsByDate lists enrollments between the from and to dates, both inclusive.
func (co Controller) GetEnrollmentsByDate(c *gin.Context) {
	var q QueryDateRange
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	from, to := q.bounds()
	students, err := co.Registrar.Enrollment.ByDateRange(c.Request.Context(), from, to, q.Limit)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(students))
}

// GetEnrollmentStats returns enrollment and capacity totals per strand.
// With since set, only enrollments from that day on are counted.
func (co Controller) GetEnrollmentStats(c *gin.Context) {
	var q QueryDateRange
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	since, _ := q.bounds()
	stats, err := co.Registrar.Enrollment.Stats(c.Request.Context(), since)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, stats)
}

func (co Controller) GetStudent(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	student, err := co.Registrar.Enrollment.GetByID(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, student)
}

// UpdateStudent changes the fields that are set in the request body.
// Status and section changes are recorded in the student's history.
func (co Controller) UpdateStudent(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var u registrar.StudentUpdate
	if err := httputil.BindData(c, &u); err != nil {
		httperrors.Handler(c, err)
		return
	}

	student, err := co.Registrar.Enrollment.Update(c.Request.Context(), id, u, actor(c))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, student)
}

// DeleteStudent removes the student with all of their payments and history.
func (co Controller) DeleteStudent(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := co.Registrar.Enrollment.Delete(c.Request.Context(), id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (co Controller) GetStudentStatusHistory(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	history, err := co.Registrar.Enrollment.StatusHistory(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(history))
}

func (co Controller) GetStudentSectionHistory(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	history, err := co.Registrar.Enrollment.SectionHistory(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(history))
}

func (co Controller) GetStudentPayments(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	payments, err := co.Registrar.Payments.History(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(payments))
}

// GetStudentPaymentSummary returns fees, amount paid, balance and payment status.
func (co Controller) GetStudentPaymentSummary(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	summary, err := co.Registrar.Payments.Summary(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, summary)
}
