package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/registrar"
)

// RegisterTeacherRoutes registers the routes for teachers with
// the RouterGroup that is passed.
func (co Controller) RegisterTeacherRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetTeachers)
		r.POST("", co.CreateTeacher)
		r.GET("/available", co.GetAvailableTeachers)
	}

	// Teacher with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetTeacher)
		r.GET("/:id/sections", co.GetTeacherSections)
		r.PATCH("/:id", co.UpdateTeacher)
		r.DELETE("/:id", co.DeleteTeacher)
	}
}

func (co Controller) GetTeachers(c *gin.Context) {
	teachers, err := co.Registrar.Teachers.ListAll(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(teachers))
}

// GetAvailableTeachers lists active teachers that can be assigned to a section.
func (co Controller) GetAvailableTeachers(c *gin.Context) {
	teachers, err := co.Registrar.Teachers.ListAvailable(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(teachers))
}

func (co Controller) CreateTeacher(c *gin.Context) {
	var in registrar.TeacherInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	teacher, err := co.Registrar.Teachers.Add(c.Request.Context(), in)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusCreated, teacher)
}

func (co Controller) GetTeacher(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	teacher, err := co.Registrar.Teachers.GetByID(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, teacher)
}

// GetTeacherSections lists the sections the teacher handles or advises.
func (co Controller) GetTeacherSections(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	sections, err := co.Registrar.Teachers.Sections(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(sections))
}

func (co Controller) UpdateTeacher(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var in registrar.TeacherInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	teacher, err := co.Registrar.Teachers.Update(c.Request.Context(), id, in)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, teacher)
}

func (co Controller) DeleteTeacher(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := co.Registrar.Teachers.Delete(c.Request.Context(), id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
