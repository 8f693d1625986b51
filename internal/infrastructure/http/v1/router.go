// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arpscout/internal/core/apperror"
	"arpscout/internal/domain/arp"
	"arpscout/internal/domain/supplier"
	"arpscout/internal/infrastructure/cache"
	"arpscout/internal/infrastructure/http/proxy"
	"arpscout/internal/infrastructure/http/v1/handlers"
	"arpscout/internal/infrastructure/http/v1/middleware"
	"arpscout/internal/infrastructure/metrics"
	"arpscout/internal/upstream"
	"arpscout/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	Upstreams *upstream.Router
	Search    *arp.Service
	Suppliers *supplier.Resolver
	Sessions  *cache.SessionCache

	// Proxy serves /api/*; nil disables it.
	Proxy *proxy.Proxy

	// Metrics exposes /metrics; nil disables it.
	Metrics *metrics.Registry
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// Agreement numbers and tax ids may carry an encoded "/".
	router.UseRawPath = true
	router.UnescapePathValues = true

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Upstreams, cfg.Sessions)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	baseHandler := handlers.NewBaseHandler()
	v1 := router.Group("/v1")
	{
		search := v1.Group("/search")
		search.Use(middleware.Session(cfg.Sessions))
		handlers.NewSearchHandler(baseHandler).RegisterRoutes(search, middleware.StartSession(cfg.Sessions))

		handlers.NewLookupHandler(baseHandler, cfg.Search, cfg.Suppliers).RegisterRoutes(v1)
	}

	if cfg.Proxy != nil {
		cfg.Proxy.Register(router)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": apperror.CodeNotFound, "message": "route not found"})
	})

	return router
}
