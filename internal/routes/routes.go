package routes

import (
	"auxchat_backend/internal/handlers"
	"auxchat_backend/internal/logger"
	"auxchat_backend/pkg/apperrors"
	"auxchat_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	guards handlers.Guards,
	wsHandler *ws.WebSocketHandler,
) {
	ginRouter.HandleMethodNotAllowed = true
	ginRouter.NoMethod(func(c *gin.Context) {
		apperrors.HandleError(c, apperrors.ErrMethodNotAllowed)
	})
	ginRouter.NoRoute(func(c *gin.Context) {
		apperrors.HandleError(c, apperrors.ErrRouteNotFound)
	})

	appHandlers.HealthHandler.RegisterRoutes(ginRouter)

	api := ginRouter.Group("/api/v1")
	appHandlers.RegisterAPI(api, guards)

	// токен для WebSocket можно передать в ?token=
	wsGroup := api.Group("/ws")
	wsGroup.Use(guards.Auth)
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /api/v1/ws registered")
}
