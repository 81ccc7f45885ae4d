// Package v1 implements the HTTP handlers of the registrar API.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartenroll/backend/pkg/auth"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/registrar"
	"github.com/smartenroll/backend/pkg/render"
)

// Controller holds the components the handlers delegate to.
type Controller struct {
	Registrar *registrar.Registrar
	Auth      *auth.Authenticator
	Tokens    *auth.TokenIssuer
	Renderer  render.DocumentRenderer
}

// RegisterRoutes registers all routes that need an authenticated user.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	co.RegisterRoomRoutes(r.Group("/rooms"))
	co.RegisterTeacherRoutes(r.Group("/teachers"))
	co.RegisterSectionRoutes(r.Group("/sections"))
	co.RegisterStudentRoutes(r.Group("/students"))
	co.RegisterPaymentRoutes(r.Group("/payments"))
	co.RegisterAcademicYearRoutes(r.Group("/academic-years"))
	co.RegisterReportRoutes(r.Group("/reports"))
	co.RegisterUserRoutes(r.Group("/users"))

	r.GET("/me", co.GetMe)
}

// Response wraps the data of every successful response.
type Response[T any] struct {
	Data T `json:"data"`
}

func respond[T any](c *gin.Context, status int, data T) {
	c.JSON(status, Response[T]{Data: data})
}

// list makes sure that empty lists are rendered as [] instead of null.
func list[T any](items []T) []T {
	if items == nil {
		return make([]T, 0)
	}
	return items
}

// bindID reads the :id segment. On failure, the error response is
// written and false is returned.
func bindID(c *gin.Context) (uuid.UUID, bool) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httperrors.Handler(c, httputil.ErrInvalidUUID)
		return uuid.Nil, false
	}

	return uri.ID.UUID, true
}

// actor returns the ID of the authenticated user, if any.
func actor(c *gin.Context) *uuid.UUID {
	id, ok := CurrentIdentity(c)
	if !ok {
		return nil
	}

	return &id.ID
}

// GetMe returns the authenticated user.
func (co Controller) GetMe(c *gin.Context) {
	id, ok := CurrentIdentity(c)
	if !ok {
		httperrors.Handler(c, auth.ErrInvalidToken)
		return
	}

	respond(c, http.StatusOK, id)
}

// RequireAdmin aborts requests of users without the admin role.
func RequireAdmin(c *gin.Context) {
	id, ok := CurrentIdentity(c)
	if !ok {
		httperrors.Handler(c, auth.ErrInvalidToken)
		return
	}

	if !id.IsAdmin() {
		httperrors.Handler(c, auth.ErrForbidden)
		return
	}

	c.Next()
}
