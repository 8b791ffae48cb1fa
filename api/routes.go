package api

import (
	"time"

	"github.com/SlpAus/lifesim-backend/internal/game"
	"github.com/SlpAus/lifesim-backend/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter 创建gin引擎，挂载CORS中间件和所有路由
func NewRouter(cfg config.ServerConfig, gameHandler *game.Handler, healthHandler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(cfg.Mode)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	SetupRoutes(router, gameHandler, healthHandler)
	return router
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, gameHandler *game.Handler, healthHandler gin.HandlerFunc) {
	router.GET("/health", healthHandler)

	gameRoutes := router.Group("/game")
	{
		gameRoutes.POST("", gameHandler.StartGame)
		gameRoutes.GET("/:game_id", gameHandler.GetState)
		gameRoutes.DELETE("/:game_id", gameHandler.DeleteGame)
		gameRoutes.POST("/:game_id/choice", gameHandler.MakeChoice)
		gameRoutes.GET("/:game_id/days", gameHandler.GetHistory)
		gameRoutes.GET("/:game_id/event", gameHandler.GetEvent)
	}
}
