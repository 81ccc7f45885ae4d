package healthz

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/models"
	"gorm.io/gorm"
)

// RegisterRoutes registers the health endpoint for the store behind db.
func RegisterRoutes(r *gin.RouterGroup, db *gorm.DB) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", Get(db))
}

// Get returns 204 when the store is reachable and 503 otherwise.
func Get(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := models.Ping(c.Request.Context(), db); err != nil {
			httperrors.Handler(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
