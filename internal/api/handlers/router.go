package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter assembles the gin engine with CORS, request logging and
// all API routes. ledgerHandler may be nil when no warehouse is
// configured; its routes are then omitted.
func NewRouter(analytics *AnalyticsHandler, jobsHandler *JobsHandler, ledgerHandler *LedgerHandler, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/transactions/raw", analytics.NormalizeRaw)
		api.POST("/transactions/purchases", analytics.NormalizePurchases)
		api.POST("/transactions/sync", analytics.ApplySync)
		api.POST("/summary", analytics.Summarize)
		api.POST("/recommendations", analytics.Recommend)
		api.POST("/scenario", analytics.Scenario)
		api.POST("/treemap", analytics.Treemap)
		api.GET("/demo/summary", analytics.DemoSummary)

		if jobsHandler != nil {
			api.POST("/batches", jobsHandler.UploadBatch)
			api.POST("/jobs/analyze", jobsHandler.EnqueueAnalyze)
			api.GET("/jobs", jobsHandler.ListJobs)
			api.GET("/jobs/:id", jobsHandler.GetJob)
		}

		if ledgerHandler != nil {
			api.GET("/transactions", ledgerHandler.ListTransactions)
		}
	}

	return router
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.ClientIP()).
			Msg("HTTP request")
	}
}
