package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/models"
)

type Response struct {
	Links Links `json:"links"`
}

type Links struct {
	Healthz string `json:"healthz" example:"https://example.com/api/healthz"` // Healthz endpoint
	Version string `json:"version" example:"https://example.com/api/version"` // Endpoint returning the version of the backend
	Metrics string `json:"metrics" example:"https://example.com/api/metrics"` // Endpoint returning Prometheus metrics
	Login   string `json:"login" example:"https://example.com/api/v1/login"`  // Exchanges credentials for a bearer token
	V1      string `json:"v1" example:"https://example.com/api/v1"`           // Endpoints of the registrar API
}

func RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.OPTIONS("", Options)
}

// Get lists the entrypoints of the API.
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Healthz: url + "/healthz",
			Version: url + "/version",
			Metrics: url + "/metrics",
			Login:   url + "/v1/login",
			V1:      url + "/v1",
		},
	})
}

func Options(c *gin.Context) {
	httputil.OptionsGet(c)
}
