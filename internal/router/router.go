// Package router wires middleware and routes onto a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ad-tracker/video-harm-classifier-go/internal/handler"
	"github.com/ad-tracker/video-harm-classifier-go/internal/metrics"
	"github.com/ad-tracker/video-harm-classifier-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Analyze *handler.AnalyzeHandler
	Health  *handler.HealthHandler
}

// New builds the engine with the middleware stack and every route.
// A nil Metrics skips request instrumentation but still serves /metrics.
func New(h *Handlers, corsOrigins string, m *metrics.Metrics) *gin.Engine {
	r := gin.New()

	// Middleware stack (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.NewCORS(corsOrigins))
	r.Use(m.Middleware())

	r.GET("/health/live", h.Health.LivenessProbe)
	r.GET("/health/ready", h.Health.ReadinessProbe)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/analyze_batch", h.Analyze.HandleAnalyzeBatch)

	return r
}
