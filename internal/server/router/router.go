package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted on the engine.
type Handlers struct {
	Herd    *handlers.HerdHandler
	Reports *handlers.ReportHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/feedings", h.Herd.RecordFeeding)
		api.GET("/feedings", h.Herd.ListFeedings)

		api.GET("/animals", h.Herd.ListAnimals)
		api.POST("/animals", h.Herd.RegisterAnimal)
		api.PATCH("/animals/:id", h.Herd.UpdateAnimal)
		api.POST("/admin/reset", h.Herd.Reset)

		api.GET("/reports/costs", h.Reports.Costs)
		api.GET("/reports/export.csv", h.Reports.ExportCSV)
		api.GET("/advisory", h.Reports.Advisory)
		api.GET("/reference", h.Reports.Reference)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
