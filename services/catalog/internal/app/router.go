package app

import (
	"time"

	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/middleware"
	catalogHTTP "torrent-catalog/services/catalog/internal/controller/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Resolver        *auth.Resolver
	RedisClient     *redis.Client
	TorrentHandler  *catalogHTTP.TorrentHandler
	CommentHandler  *catalogHTTP.CommentHandler
	CommentRateMax  int
	CommentRateSpan time.Duration
}

// NewRouter wires the catalog routes. Reads are public; every mutation goes
// through RequireRole before its handler runs.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	health := func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
	r.GET("/health", health)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/health", health)
	api.Use(middleware.AuthMiddleware(deps.Resolver))

	th := deps.TorrentHandler
	ch := deps.CommentHandler
	{
		api.GET("/torrents", th.ListTorrents)
		api.GET("/torrents/:id", th.GetTorrent)
		api.GET("/torrents/:id/rating", th.GetRatingSummary)
		api.GET("/torrents/:id/comments", ch.ListComments)

		api.POST("/torrents", middleware.RequireRole(auth.RoleUser), th.CreateTorrent)
		api.PUT("/torrents/:id", middleware.RequireRole(auth.RoleUser), th.UpdateTorrent)
		api.DELETE("/torrents/:id", middleware.RequireRole(auth.RoleModerator), th.DeleteTorrent)

		api.POST("/torrents/:id/comments",
			middleware.RequireRole(auth.RoleUser),
			middleware.RateLimitMiddleware(deps.RedisClient, deps.CommentRateMax, deps.CommentRateSpan),
			ch.CreateComment,
		)
		api.PUT("/comments/:id", middleware.RequireRole(auth.RoleUser), ch.UpdateComment)
		api.DELETE("/comments/:id", middleware.RequireRole(auth.RoleUser), ch.DeleteComment)
	}

	return r
}
