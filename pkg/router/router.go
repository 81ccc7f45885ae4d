package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smartenroll/backend/internal/config"
	"github.com/smartenroll/backend/pkg/controllers/healthz"
	"github.com/smartenroll/backend/pkg/controllers/root"
	v1 "github.com/smartenroll/backend/pkg/controllers/v1"
	"github.com/smartenroll/backend/pkg/controllers/version"
	"github.com/smartenroll/backend/pkg/httperrors"
	"gorm.io/gorm"
)

// Routes holds everything the API is served from.
type Routes struct {
	Controller  v1.Controller
	DB          *gorm.DB
	Registry    *prometheus.Registry
	Version     string
	EnablePprof bool
}

// Config sets up the engine with all middlewares.
func Config(cfg config.Config, reg prometheus.Registerer) (*gin.Engine, error) {
	url := cfg.URL()

	// Set up the router and middlewares
	r := gin.New()

	// Don’t process X-Forwarded-For header as we do not do anything with
	// client IPs
	r.ForwardedByClientIP = false

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	if err := registerPrometheusMetrics(reg); err != nil {
		return nil, err
	}

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(URLMiddleware(url))
	r.Use(MetricsMiddleware())
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, httperrors.HTTPError{
			Error: "this HTTP method is not allowed for the endpoint you called",
		})
	})
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, logger zerolog.Logger) zerolog.Logger {
			return logger.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Int("size", c.Writer.Size()).
				Str("user-agent", c.Request.UserAgent()).
				Logger()
		})))

	if len(cfg.CORSAllowOrigins) > 0 {
		log.Debug().Strs("CORS Allowed Origins", cfg.CORSAllowOrigins).Msg("Router")

		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowOrigins,
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}

	// Don’t trust any proxy. We do not process any client IPs,
	// therefore we don’t need to trust anyone here.
	_ = r.SetTrustedProxies([]string{})

	log.Debug().Str("API Base URL", url.String()).Str("Host", url.Host).Str("Path", url.Path).Msg("Router")

	return r, nil
}

// AttachRoutes attaches the API routes to the router group that is passed in.
func AttachRoutes(group *gin.RouterGroup, routes Routes) {
	root.RegisterRoutes(group.Group(""))
	version.RegisterRoutes(group.Group("/version"), routes.Version)
	healthz.RegisterRoutes(group.Group("/healthz"), routes.DB)
	group.GET("/metrics", gin.WrapH(promhttp.HandlerFor(routes.Registry, promhttp.HandlerOpts{})))

	// pprof performance profiles
	if routes.EnablePprof {
		pprof.RouteRegister(group, "debug/pprof")
	}

	routes.Controller.RegisterLoginRoutes(group.Group("/v1/login"))

	authenticated := group.Group("/v1", Authenticate(routes.Controller.Tokens))
	routes.Controller.RegisterRoutes(authenticated)
}
