package handlers

import (
	"context"
	"net/http"

	"whale-watcher/agent/internal/services"
	"whale-watcher/shared/logger"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, appLogger *logger.Logger) {
	router.GET("/", func(c *gin.Context) {
		appLogger.Info("Root endpoint accessed")
		c.JSON(http.StatusOK, gin.H{"message": "API is running. Whale watcher active!"})
	})
}

func RegisterAPIRoutes(router *gin.Engine, appLogger *logger.Logger, orchestrator *services.Orchestrator) {
	apiGroup := router.Group("/api/v1")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "API Service is running"})
		})

		apiGroup.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, orchestrator.Stats())
		})

		// Manual trigger for one poll cycle. The overlap guard makes this
		// a no-op while a cycle is already running.
		apiGroup.POST("/cycle/run", func(c *gin.Context) {
			appLogger.Info("Manual cycle trigger via API")
			go orchestrator.RunCycle(context.Background())
			c.JSON(http.StatusAccepted, gin.H{"status": "cycle triggered"})
		})
	}
}
