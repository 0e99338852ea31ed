package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "seoblog-backend/internal/auth"
	"seoblog-backend/internal/blogs"
	"seoblog-backend/internal/documents"
	"seoblog-backend/internal/grammar"
	"seoblog-backend/internal/shared/config"
	"seoblog-backend/internal/shared/metrics"
	"seoblog-backend/internal/shared/server/middleware"
	"seoblog-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config          config.Config
	DocumentHandler *documents.Handler
	BlogHandler     *blogs.Handler
	GrammarHandler  *grammar.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	api.Use(middleware.Auth())
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			generateRateGroup: {Rate: 0.5, Burst: 5},
		},
		GroupFor: generateGroupFor,
	}))
	registerMeRoutes(api)
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.BlogHandler != nil {
		deps.BlogHandler.RegisterRoutes(api)
	}
	if deps.GrammarHandler != nil {
		deps.GrammarHandler.RegisterRoutes(api)
	}

	return r
}

const generateRateGroup = "GENERATE"

// generateGroupFor throttles the endpoints that trigger an LLM call.
func generateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch c.FullPath() {
	case "/api/v1/blogs", "/api/v1/blogs/:id/regenerate":
		return generateRateGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
