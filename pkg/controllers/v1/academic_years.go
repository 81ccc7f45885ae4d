package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/registrar"
)

// RegisterAcademicYearRoutes registers the routes for academic years with
// the RouterGroup that is passed.
func (co Controller) RegisterAcademicYearRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetAcademicYears)
		r.POST("", co.CreateAcademicYear)
		r.GET("/active", co.GetActiveAcademicYear)
	}

	// Academic year with ID
	{
		r.GET("/:id", co.GetAcademicYear)
		r.GET("/:id/stats", co.GetAcademicYearStats)
		r.POST("/:id/activate", co.ActivateAcademicYear)
		r.DELETE("/:id", co.DeleteAcademicYear)
	}
}

func (co Controller) GetAcademicYears(c *gin.Context) {
	years, err := co.Registrar.AcademicYears.List(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(years))
}

// CreateAcademicYear adds an academic year. If it is created as active,
// all other academic years are deactivated.
func (co Controller) CreateAcademicYear(c *gin.Context) {
	var in registrar.AcademicYearInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	year, err := co.Registrar.AcademicYears.Add(c.Request.Context(), in)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusCreated, year)
}

func (co Controller) GetActiveAcademicYear(c *gin.Context) {
	year, err := co.Registrar.AcademicYears.Active(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, year)
}

func (co Controller) GetAcademicYear(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	year, err := co.Registrar.AcademicYears.GetByID(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, year)
}

func (co Controller) GetAcademicYearStats(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	stats, err := co.Registrar.AcademicYears.Stats(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, stats)
}

func (co Controller) ActivateAcademicYear(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	year, err := co.Registrar.AcademicYears.SetActive(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, year)
}

// DeleteAcademicYear deletes an academic year that is neither active nor
// referenced by students.
func (co Controller) DeleteAcademicYear(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := co.Registrar.AcademicYears.Delete(c.Request.Context(), id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
