package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
)

// RegisterSectionRoutes registers the routes for sections with
// the RouterGroup that is passed.
func (co Controller) RegisterSectionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetSections)
		r.POST("", co.CreateSection)
		r.GET("/available", co.GetAvailableSection)
	}

	// Section with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetSection)
		r.GET("/:id/students", co.GetSectionStudents)
		r.PATCH("/:id", co.UpdateSection)
		r.DELETE("/:id", co.DeleteSection)
	}
}

// GetSections lists active sections. With the strand parameter set,
// only sections of that strand and the given status are returned.
func (co Controller) GetSections(c *gin.Context) {
	var q QueryStrand
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	var (
		sections []models.SectionView
		err      error
	)

	if q.Strand == "" {
		sections, err = co.Registrar.Sections.ListActive(c.Request.Context())
	} else {
		sections, err = co.Registrar.Sections.ListByStrand(c.Request.Context(), models.Strand(q.Strand), models.RecordStatus(q.Status))
	}

	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(sections))
}

// GetAvailableSection returns the section of the strand with the most
// available slots. data is null when all sections of the strand are full.
func (co Controller) GetAvailableSection(c *gin.Context) {
	var q QueryStrand
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	section, err := co.Registrar.Sections.FindAvailable(c.Request.Context(), models.Strand(q.Strand))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, section)
}

func (co Controller) CreateSection(c *gin.Context) {
	var in registrar.SectionInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	section, err := co.Registrar.Sections.Add(c.Request.Context(), in)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusCreated, section)
}

func (co Controller) GetSection(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	section, err := co.Registrar.Sections.GetByID(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, section)
}

func (co Controller) GetSectionStudents(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	students, err := co.Registrar.Enrollment.ListBySection(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(students))
}

func (co Controller) UpdateSection(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var in registrar.SectionInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	section, err := co.Registrar.Sections.Update(c.Request.Context(), id, in)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, section)
}

func (co Controller) DeleteSection(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := co.Registrar.Sections.Delete(c.Request.Context(), id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
