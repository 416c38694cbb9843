// Package http exposes the extraction pipeline as a gin service: one
// document-processing endpoint, liveness/readiness probes, and the
// prometheus scrape endpoint.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/prometheus"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Processor DocumentProcessor
	Checkers  []HealthChecker
	Metrics   *prometheus.AppMetrics
	// MetricsHandler serves GET /metrics; nil disables the route.
	MetricsHandler http.Handler
	Log            logging.Logger
	MaxBodyBytes   int64
	Version        string
}

// NewRouter assembles the gin engine with middleware and routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Log == nil {
		cfg.Log = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = prometheus.NewNopAppMetrics()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(cfg.Log), Metrics(cfg.Metrics))

	extract := NewExtractHandler(cfg.Processor, cfg.MaxBodyBytes, cfg.Log)
	health := NewHealthHandler(cfg.Version, cfg.Checkers...)

	r.POST("/process", extract.Process)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
	return r
}
