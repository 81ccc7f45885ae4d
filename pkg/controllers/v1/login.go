package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/auth"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
)

type Credentials struct {
	Username string `json:"username" example:"registrar"`
	Password string `json:"password" example:"s3cret!"`
}

type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt" example:"2024-06-10T20:00:00Z"`
	User      auth.Identity `json:"user"`
}

// RegisterLoginRoutes registers the login endpoint. It does not need authentication.
func (co Controller) RegisterLoginRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", co.Login)
}

// Login exchanges username and password for a bearer token.
func (co Controller) Login(c *gin.Context) {
	var in Credentials
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	identity, err := co.Auth.Validate(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	token, expires, err := co.Tokens.Issue(*identity)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, Session{Token: token, ExpiresAt: expires, User: *identity})
}
