package agent

import (
	"github.com/gin-gonic/gin"
	"github.com/okmesh/agentmesh/internal/middleware"
)

func NewRouter(a *Agent) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	if a.config.APIKey != "" {
		router.Use(middleware.APIKeyMiddleware(a.config.APIKey))
	}

	router.POST("/execute", a.handleExecute)
	router.GET("/capabilities", a.handleCapabilities)
	router.GET("/health", a.handleHealth)
	router.POST("/a2a/message", a.handleA2AMessage)
	router.GET("/spec", a.handleSpec)

	return router
}
