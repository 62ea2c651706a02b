package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "userapp/docs"
	"userapp/internal/adapter/http/handler"
	"userapp/internal/adapter/http/helper"
	"userapp/internal/adapter/http/middleware"
	"userapp/internal/core/apperror"
	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
	"userapp/pkg/logger"
	"userapp/pkg/middlewares"
)

type HandlersConfig struct {
	UserHandler *handler.UserHandler
	HomeHandler *handler.HomeHandler
	Responder   *helper.Responder
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, log *logger.Logger, cfg *config.AppConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(handlers.Responder))

	middlewares.SetupGinMiddlewareWithConfig(router, cfg, metrics, log)

	// Runs after otelgin so the trace id is known.
	router.Use(middleware.CurrentMiddleware())

	router.Use(corsMiddleware())

	router.NoRoute(func(c *gin.Context) {
		handlers.Responder.SendError(c, apperror.NotFound(fmt.Sprintf("%s %s not found", c.Request.Method, c.Request.URL.Path)))
	})

	if handlers.HomeHandler != nil {
		setupPublicRoutes(router, handlers.HomeHandler)
	}

	if handlers.UserHandler != nil {
		setupUserRoutes(router, handlers.UserHandler)
	}

	return router
}

func setupPublicRoutes(router *gin.Engine, homeHandler *handler.HomeHandler) {
	router.GET("/", homeHandler.Home)
	router.GET("/health", homeHandler.Health)

	router.GET("/docs/v1", homeHandler.Docs)
	router.GET("/docs/v1/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/v1/doc.json"))))
}

func setupUserRoutes(router *gin.Engine, userHandler *handler.UserHandler) {
	users := router.Group("/api/v1/users")
	{
		users.GET("", userHandler.GetUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUserByID)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Query-Warnings")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
