package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httputil"
)

type Response struct {
	Data Object `json:"data"`
}

type Object struct {
	Version string `json:"version" example:"1.1.0"` // the running version of the SmartEnroll backend
}

// RegisterRoutes registers the version endpoint reporting the given version.
func RegisterRoutes(r *gin.RouterGroup, version string) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{Data: Object{Version: version}})
	})
}
