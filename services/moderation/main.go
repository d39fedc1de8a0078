package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nrw/pkg/config"
	"nrw/pkg/contentfilter"
	"nrw/pkg/database"
	"nrw/pkg/jwt"
	"nrw/pkg/logger"
	"nrw/pkg/middleware"
	"nrw/pkg/models"
	"nrw/pkg/queue"
	"nrw/services/moderation/handlers"
	"nrw/services/moderation/repository"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	// Auto migrate
	if err := db.AutoMigrate(&models.Post{}); err != nil {
		log.Error("Failed to migrate database: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("RabbitMQ unavailable, review decisions not published: %v", err)
		queueClient = nil
	}

	jwtService := jwt.NewService(cfg.JWTSecret)
	filter := contentfilter.Default()

	moderationRepo := repository.NewModerationRepository(db)
	moderationHandler := handlers.NewModerationHandler(moderationRepo, filter, queueClient, log)

	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RequireRole(string(models.RoleModerator)))
	{
		api.GET("/moderation/pending", moderationHandler.GetPendingPosts)
		api.POST("/moderation/posts/:post_id/review", moderationHandler.ReviewPost)
		api.POST("/moderation/check", moderationHandler.CheckText)
		api.GET("/moderation/blocklist", moderationHandler.GetBlocklist)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Moderation service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down moderation service...")

	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Moderation service exited")
}
