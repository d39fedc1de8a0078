package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nrw/pkg/config"
	"nrw/pkg/contentfilter"
	"nrw/pkg/jwt"
	"nrw/pkg/logger"
	"nrw/pkg/middleware"
	"nrw/pkg/queue"
	"nrw/pkg/s3"
	postHTTP "nrw/services/post/internal/controller/http"
	"nrw/services/post/internal/media"
	"nrw/services/post/internal/repo/persistent"
	"nrw/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "nrw/services/post/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("RabbitMQ unavailable, moderation events disabled: %v", err)
		queueClient = nil
	}

	// Initialize repositories
	postRepo := persistent.NewPostRepository(db)

	// Initialize use cases
	encoder := media.NewFFmpegEncoder(cfg.FFmpegPath, cfg.MediaEncodeTimeout)
	upload := func(ctx context.Context, key string, data []byte, contentType string, onProgress func(uploaded, total int64)) (string, error) {
		return s3Client.Upload(ctx, key, data, contentType, onProgress)
	}
	postUseCase := usecase.NewPostUseCase(postRepo, contentfilter.Default(), encoder, upload, redisClient, queueClient, log)

	// Initialize HTTP handlers
	postHandler := postHTTP.NewPostHandler(postUseCase, log)

	// Setup router
	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(redisClient, "post", 100, time.Minute))

	// Reads allow anonymous viewers.
	reads := api.Group("")
	reads.Use(middleware.OptionalAuthMiddleware(jwtService))
	{
		reads.GET("/posts", postHandler.ListPosts)
		reads.GET("/posts/:id", postHandler.GetPost)
	}

	// Writes require authentication.
	writes := api.Group("")
	writes.Use(middleware.AuthMiddleware(jwtService))
	{
		writes.POST("/posts", postHandler.CreatePost)
		writes.DELETE("/posts/:id", postHandler.DeletePost)
		writes.POST("/posts/:id/like", postHandler.LikePost)
		writes.GET("/submissions/:id", postHandler.GetSubmission)
		writes.PUT("/profile", postHandler.UpdateProfile)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Post service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down post service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
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

	log.Info("Post service exited")
}
