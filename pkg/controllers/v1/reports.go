package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/registrar"
)

// RegisterReportRoutes registers the routes for reports with
// the RouterGroup that is passed.
func (co Controller) RegisterReportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", co.GetReport)
	r.GET("/export", co.ExportReport)
}

// GetReport builds a report. kind is one of total, strand and recent,
// range one of "Today", "Last 7 Days", "Last 30 Days" and "All Time".
func (co Controller) GetReport(c *gin.Context) {
	var q QueryReport
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	report, err := co.Registrar.Reports.Build(c.Request.Context(), registrar.ReportKind(q.Kind), registrar.DateRange(q.Range))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, report)
}

// ExportReport renders a report and sends the document.
func (co Controller) ExportReport(c *gin.Context) {
	var q QueryReport
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	path, err := co.Registrar.Reports.Export(c.Request.Context(), registrar.ReportKind(q.Kind), registrar.DateRange(q.Range), co.Renderer)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	sendDocument(c, path)
}
