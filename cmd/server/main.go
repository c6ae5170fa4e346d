// Command server runs the demographics handlers behind a local HTTP gateway.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"demographics-api/internal/config"
	"demographics-api/internal/handlers"
	"demographics-api/internal/middleware"
	"demographics-api/pkg/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize dependencies
	container, err := server.NewContainer(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	logger := container.Logger

	// Local engines start empty
	if cfg.Table.Backend != "dynamodb" {
		if err := container.Repository.EnsureTable(context.Background()); err != nil {
			logger.WithError(err).Warn("Table not created")
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	routerConfig := &handlers.RouterConfig{
		Dispatcher: handlers.NewDispatcher(container.Repository, handlers.MasterRoutes(), logger),
		Logger:     logger,
		RateLimit:  cfg.RateLimit.RequestsPerSecond,
		RateBurst:  cfg.RateLimit.Burst,
	}
	if cfg.JWT.Secret != "" {
		routerConfig.AuthService = middleware.NewAuthService(&middleware.AuthConfig{JWTSecret: cfg.JWT.Secret})
	}

	router := gin.New()
	handlers.SetupMiddleware(router, routerConfig)
	handlers.SetupRoutes(router, routerConfig)
	if cfg.Environment != "production" {
		handlers.SetupDevelopmentRoutes(router, routerConfig)
	}

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":    cfg.Port,
		"backend": cfg.Table.Backend,
		"auth":    routerConfig.AuthService != nil,
	}).Info("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
