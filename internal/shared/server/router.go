package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/services/health"
	"promotore-backend/internal/shared/config"
	"promotore-backend/internal/shared/metrics"
	"promotore-backend/internal/shared/server/middleware"
	"promotore-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a package's handlers to a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// PageHandler serves the login flow and HTML pages.
type PageHandler interface {
	RegisterPublicRoutes(rg *gin.RouterGroup)
	RegisterPageRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the already-built handlers. Nil entries are skipped.
type RouterDeps struct {
	Config    config.Config
	Sessions  middleware.TokenVerifier
	Pages     PageHandler
	API       []RouteRegistrar
	Health    *health.Service
	LoginPath string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(deps.Sessions),
	)

	r.GET("/health", healthHandler(deps.Health))
	r.GET("/metrics", metrics.Handler())

	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	if deps.Pages != nil {
		deps.Pages.RegisterPublicRoutes(&r.RouterGroup)
		pages := r.Group("/", middleware.RequirePage(loginPath))
		deps.Pages.RegisterPageRoutes(pages)
	}

	api := r.Group("/", middleware.RequireAPI())
	for _, h := range deps.API {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := svc.Status(c.Request.Context())
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, payload)
			return
		}
		respond.JSON(c, http.StatusOK, payload)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
