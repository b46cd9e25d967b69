package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/cache"
	"torrent-catalog/pkg/config"
	"torrent-catalog/pkg/database"
	"torrent-catalog/pkg/jwt"
	"torrent-catalog/pkg/logger"
	"torrent-catalog/pkg/queue"
	"torrent-catalog/pkg/telemetry"
	authHTTP "torrent-catalog/services/auth/internal/controller/http"
	"torrent-catalog/services/auth/internal/repo/persistent"
	"torrent-catalog/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "torrent-catalog/services/auth/docs" // Swagger docs
)

type App struct {
	cfg               *config.Config
	log               *logger.Logger
	db                *gorm.DB
	redisClient       *redis.Client
	jwtService        *jwt.Service
	queueClient       *queue.Client
	httpServer        *http.Server
	telemetryShutdown func(context.Context) error
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	shutdown, err := telemetry.Setup(context.Background(), cfg, "auth-service")
	if err != nil {
		log.Warn("Tracing disabled: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		// Redis is optional for auth service
		redisClient = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}

	return &App{
		cfg:               cfg,
		log:               log,
		db:                db,
		redisClient:       redisClient,
		jwtService:        jwt.NewService(cfg.JWTSecret, jwt.WithTTL(cfg.TokenTTL)),
		queueClient:       queueClient,
		telemetryShutdown: shutdown,
	}, nil
}

func (a *App) Run() error {
	gin.SetMode(gin.ReleaseMode)

	userRepo := persistent.NewUserRepository(a.db)
	credentials := auth.NewGormCredentialStore(a.db)

	var notifier usecase.Notifier
	if a.queueClient != nil {
		notifier = a.queueClient
	}

	authUseCase := usecase.NewAuthUseCase(userRepo, credentials, a.jwtService, notifier, a.log)
	authHandler := authHTTP.NewAuthHandler(authUseCase, a.log)
	resolver := auth.NewResolver(a.jwtService, credentials, a.log)

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: NewRouter(resolver, a.redisClient, authHandler),
	}

	go func() {
		a.log.Info("Auth service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down auth service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if a.queueClient != nil {
		a.queueClient.Close()
	}

	if a.telemetryShutdown != nil {
		if err := a.telemetryShutdown(ctx); err != nil {
			a.log.Error("Error flushing traces: %v", err)
		}
	}

	a.log.Info("Auth service exited")
	return nil
}
