package api

import (
	"github.com/Conceptual-Machines/jazz-grammar/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/jazz-grammar/internal/api/middleware"
	"github.com/Conceptual-Machines/jazz-grammar/internal/config"
	"github.com/Conceptual-Machines/jazz-grammar/internal/metrics"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP API. cw may be nil when CloudWatch is not configured.
func SetupRouter(cfg *config.Config, cw *metrics.Client, version string) *gin.Engine {
	router := gin.New()
	recorder := &metrics.Recorder{
		Sentry:     metrics.NewSentryMetrics(),
		CloudWatch: cw,
		Prometheus: metrics.NewPrometheus(),
	}

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(recorder))

	router.Use(apimiddleware.CORS(cfg))

	healthHandler := handlers.NewHealthHandler(version)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/metrics", gin.WrapH(recorder.Prometheus.Handler()))

	metricsHandler := handlers.NewMetricsHandler(version, cfg)
	grammarHandler := handlers.NewGrammarHandler(cfg, recorder)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.HealthCheck)
		api.GET("/metrics", metricsHandler.GetMetrics)
		api.GET("/rules", grammarHandler.Rules)
		api.POST("/parse", grammarHandler.Parse)
		api.POST("/suggest", grammarHandler.Suggest)
	}

	return router
}
