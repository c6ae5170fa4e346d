package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"demographics-api/internal/middleware"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Dispatcher *Dispatcher
	// AuthService protects the API routes when set
	AuthService *middleware.AuthService
	Logger      *logrus.Logger
	RateLimit   float64
	RateBurst   int
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	demographicsHandler := NewDemographicsHandler(config.Dispatcher)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "demographics-api",
			"version": "1.0.0",
		})
	})

	protected := []gin.HandlerFunc{}
	if config.AuthService != nil {
		protected = append(protected, middleware.Authentication(config.AuthService, config.Logger))
	}

	// Raw event invocation, mirrors the Lambda entry point
	router.POST("/invoke", append(protected, demographicsHandler.Invoke)...)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(protected...)
	{
		demographics := v1.Group("/demographics")
		{
			demographics.GET("", demographicsHandler.ListDemographics)
			demographics.POST("", demographicsHandler.UpdateDemographics)
			demographics.PUT("", demographicsHandler.CreateDemographics)
			demographics.DELETE("/:zip_code", demographicsHandler.DeleteDemographics)
		}
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.CORS())

	// Request size limit (1MB)
	router.Use(middleware.RequestSizeLimit(1 << 20))
	router.Use(middleware.ContentTypeValidation())
	router.Use(middleware.RateLimiter(config.RateLimit, config.RateBurst, config.Logger))
	router.Use(middleware.StructuredLogger(config.Logger))
}

// SetupDevelopmentRoutes adds development-only routes
func SetupDevelopmentRoutes(router *gin.Engine, config *RouterConfig) {
	if config.AuthService == nil {
		return
	}

	dev := router.Group("/dev")
	{
		// Generate demo token for testing
		dev.POST("/token", func(c *gin.Context) {
			token, err := config.AuthService.GenerateToken("dev-user")
			if err != nil {
				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Failed to generate token",
					Message: err.Error(),
				})
				return
			}
			c.JSON(http.StatusOK, gin.H{"token": token})
		})
	}
}
