package httputil

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// Options answers an OPTIONS request with the allowed methods of an endpoint.
func Options(c *gin.Context, methods ...string) {
	c.Header("allow", strings.Join(append([]string{http.MethodOptions}, methods...), ", "))
	c.Render(http.StatusNoContent, render.JSON{})
}

func OptionsGet(c *gin.Context) {
	Options(c, http.MethodGet)
}

func OptionsPost(c *gin.Context) {
	Options(c, http.MethodPost)
}

func OptionsGetPost(c *gin.Context) {
	Options(c, http.MethodGet, http.MethodPost)
}

func OptionsGetPatchDelete(c *gin.Context) {
	Options(c, http.MethodGet, http.MethodPatch, http.MethodDelete)
}
