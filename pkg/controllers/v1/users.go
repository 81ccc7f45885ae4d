package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/auth"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
)

// RegisterUserRoutes registers the routes for users with the RouterGroup
// that is passed. Everything except changing the own password needs admin.
func (co Controller) RegisterUserRoutes(r *gin.RouterGroup) {
	r.PATCH("/me/password", co.UpdateOwnPassword)

	r.GET("", RequireAdmin, co.GetUsers)
	r.POST("", RequireAdmin, co.CreateUser)
	r.PATCH("/:id/password", RequireAdmin, co.ResetPassword)
	r.DELETE("/:id", RequireAdmin, co.DeleteUser)
}

// PasswordChange is the body for changing the own password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" example:"s3cret!"`
	Password        string `json:"password" example:"n3w-s3cret!"`
}

// PasswordReset is the body for setting the password of another user.
type PasswordReset struct {
	Password string `json:"password" example:"n3w-s3cret!"`
}

func (co Controller) GetUsers(c *gin.Context) {
	users, err := co.Auth.ListUsers(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(users))
}

func (co Controller) CreateUser(c *gin.Context) {
	var in auth.UserInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	user, err := co.Auth.CreateUser(c.Request.Context(), in)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusCreated, user)
}

// DeleteUser deletes a user. The last admin cannot be deleted.
func (co Controller) DeleteUser(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := co.Auth.DeleteUser(c.Request.Context(), id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (co Controller) ResetPassword(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var in PasswordReset
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	if err := co.Auth.UpdatePassword(c.Request.Context(), id, in.Password); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateOwnPassword changes the password of the authenticated user
// after checking the current one.
func (co Controller) UpdateOwnPassword(c *gin.Context) {
	me, ok := CurrentIdentity(c)
	if !ok {
		httperrors.Handler(c, auth.ErrInvalidToken)
		return
	}

	var in PasswordChange
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	if _, err := co.Auth.Validate(c.Request.Context(), me.Username, in.CurrentPassword); err != nil {
		httperrors.Handler(c, err)
		return
	}

	if err := co.Auth.UpdatePassword(c.Request.Context(), me.ID, in.Password); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
