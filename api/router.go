// Package api wires the HTTP routes and middleware for hotelscout.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/umerzulfiqar021/Puppeteer/api/handler"
	"github.com/umerzulfiqar021/Puppeteer/api/middleware"
	"github.com/umerzulfiqar021/Puppeteer/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(svc handler.Service, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(svc, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/search", handler.Search(svc))
	protected.POST("/hotel", handler.Detail(svc))

	return r
}
