package routes

import (
	"distributed-lru-cache/internal/handlers"
	"distributed-lru-cache/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the store API onto a fresh engine. Everything
// under /api/store requires a bearer token from /api/token.
func SetupRoutes(api *handlers.API) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for browser-based clients)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Cache store server is running",
		})
	})

	// Public routes (no authentication required)
	apiGroup := ginRouter.Group("/api")
	{
		// Token exchange endpoint
		apiGroup.POST("/token", api.Token)
	}

	// Protected routes (authentication required)
	protectedRoutes := apiGroup.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Key endpoints
		protectedRoutes.GET("/store/keys/:key", api.GetKey)
		protectedRoutes.PUT("/store/keys/:key", api.SetKey)
		protectedRoutes.DELETE("/store/keys/:key", api.DeleteKey)
		protectedRoutes.GET("/store/keys/:key/exists", api.ExistsKey)
		// List endpoints
		protectedRoutes.GET("/store/lists/:key", api.ListRange)
		protectedRoutes.GET("/store/lists/:key/index/:index", api.ListIndex)
		protectedRoutes.POST("/store/lists/:key/remove", api.ListRemove)
		protectedRoutes.POST("/store/lists/:key/push", api.ListPush)
		// Counter endpoints
		protectedRoutes.POST("/store/counters/:key/incr", api.IncrCounter)
		protectedRoutes.POST("/store/counters/:key/decr", api.DecrCounter)
		// Batch endpoint
		protectedRoutes.POST("/store/pipeline", api.ExecutePipeline)
		// Mutation event feed
		protectedRoutes.GET("/ws/events", api.Events)
	}

	return ginRouter
}
