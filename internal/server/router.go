package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"BlogEngine/internal/ports"
	"BlogEngine/internal/usecase"
)

// NewRouter wires the HTTP surface over the generation engine.
func NewRouter(engine *usecase.Engine, storage ports.Storage, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))

	handler := newHandler(engine, storage, log)

	router.GET("/health", healthCheck)

	v1 := router.Group("/v1")
	{
		clients := v1.Group("/clients/:client_id")
		{
			clients.POST("/generate", handler.generateArticle)
			clients.POST("/keywords/:keyword_id/generate", handler.generateFromKeyword)
			clients.POST("/research", handler.researchKeywords)
		}

		posts := v1.Group("/posts/:post_id")
		{
			posts.GET("", handler.getPost)
			posts.GET("/audits", handler.getAudits)
		}
	}

	return router
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func recoveryMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered", "error", err, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

func loggingMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= 500:
			log.Error("request completed", attrs...)
		case status >= 400:
			log.Warn("request completed", attrs...)
		default:
			log.Info("request completed", attrs...)
		}
	}
}
