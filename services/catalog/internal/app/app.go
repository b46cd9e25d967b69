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
	"torrent-catalog/pkg/s3"
	"torrent-catalog/pkg/telemetry"
	catalogHTTP "torrent-catalog/services/catalog/internal/controller/http"
	ratingcache "torrent-catalog/services/catalog/internal/repo/cache"
	"torrent-catalog/services/catalog/internal/repo/persistent"
	"torrent-catalog/services/catalog/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "torrent-catalog/services/catalog/docs" // Swagger docs
)

type App struct {
	cfg               *config.Config
	log               *logger.Logger
	db                *gorm.DB
	redisClient       *redis.Client
	s3Client          *s3.Client
	queueClient       *queue.Client
	jwtService        *jwt.Service
	httpServer        *http.Server
	telemetryShutdown func(context.Context) error
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	shutdown, err := telemetry.Setup(context.Background(), cfg, "catalog-service")
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
		log.Warn("Failed to connect to redis: %v (rating cache and rate limit disabled)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Warn("Failed to create S3 client: %v (torrent file uploads disabled)", err)
		s3Client = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ: %v (continuing without notifications)", err)
		queueClient = nil
	}

	return &App{
		cfg:               cfg,
		log:               log,
		db:                db,
		redisClient:       redisClient,
		s3Client:          s3Client,
		queueClient:       queueClient,
		jwtService:        jwt.NewService(cfg.JWTSecret, jwt.WithTTL(cfg.TokenTTL)),
		telemetryShutdown: shutdown,
	}, nil
}

func (a *App) Run() error {
	gin.SetMode(gin.ReleaseMode)

	// Repositories
	torrentRepo := persistent.NewTorrentRepository(a.db)
	commentRepo := persistent.NewCommentRepository(a.db)
	ratings := ratingcache.NewRatingCache(a.redisClient)

	// Optional collaborators stay untyped nil when their client is missing.
	var storage usecase.FileStorage
	if a.s3Client != nil {
		storage = a.s3Client
	}
	var notifier usecase.Notifier
	if a.queueClient != nil {
		notifier = a.queueClient
	}

	// Use cases
	aggregator := usecase.NewRatingAggregator(commentRepo, torrentRepo, ratings, a.log)
	torrentUseCase := usecase.NewTorrentUseCase(torrentRepo, storage, ratings, a.cfg.RatingCacheTTL, a.log)
	commentUseCase := usecase.NewCommentUseCase(commentRepo, torrentRepo, aggregator, notifier, a.log)

	resolver := auth.NewResolver(a.jwtService, auth.NewGormCredentialStore(a.db), a.log)

	r := NewRouter(RouterDeps{
		Resolver:        resolver,
		RedisClient:     a.redisClient,
		TorrentHandler:  catalogHTTP.NewTorrentHandler(torrentUseCase, a.log),
		CommentHandler:  catalogHTTP.NewCommentHandler(commentUseCase, a.log),
		CommentRateMax:  a.cfg.CommentRateMax,
		CommentRateSpan: a.cfg.CommentRateSpan,
	})

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Catalog service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down catalog service...")
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

	a.log.Info("Catalog service exited")
	return nil
}
