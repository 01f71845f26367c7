package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"NewsPipeline/internal/interfaces/http/handler"
	"NewsPipeline/internal/logging"
)

// RouteRegistrar mounts a set of routes on a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// New builds the gin engine with request logging, recovery and all API routes.
func New(mode string, logger *zap.Logger, registrars ...RouteRegistrar) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(logging.RequestID(), logging.GinMiddleware(logger), logging.Recovery(logger))

	engine.GET("/healthz", handler.Health)
	api := engine.Group("/api")
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return engine
}
