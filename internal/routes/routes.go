package routes

import (
	"github.com/gin-gonic/gin"

	"schoolpay_backend/internal/handlers"
	"schoolpay_backend/internal/logger"
	"schoolpay_backend/internal/middleware"
	"schoolpay_backend/ws"
)

// AppHandlers collects every HTTP handler for registration.
type AppHandlers struct {
	AuthHandler       *handlers.AuthHandler
	MessagingHandler  *handlers.MessagingHandler
	PreferenceHandler *handlers.PreferenceHandler
	AlertHandler      *handlers.AlertHandler
}

// RegisterRoutes wires all HTTP and websocket routes.
func RegisterRoutes(router *gin.Engine, appHandlers *AppHandlers, wsHandler *ws.Handler) {
	api := router.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.MessagingHandler.RegisterRoutes(api)
		appHandlers.PreferenceHandler.RegisterRoutes(api)
		appHandlers.AlertHandler.RegisterRoutes(api)
	}

	wsGroup := router.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware())
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("Routes registered")
}
