package app

import (
	"time"

	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/middleware"
	authHTTP "torrent-catalog/services/auth/internal/controller/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(resolver *auth.Resolver, redisClient *redis.Client, authHandler *authHTTP.AuthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	health := func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
	r.GET("/health", health)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/health", health)
	api.Use(middleware.AuthMiddleware(resolver))
	{
		// 10 attempts per minute per IP
		credentials := middleware.RateLimitMiddleware(redisClient, 10, time.Minute)
		api.POST("/register", credentials, authHandler.Register)
		api.POST("/login", credentials, authHandler.Login)

		api.GET("/me", middleware.RequireRole(auth.RoleUser), authHandler.Me)

		admin := api.Group("/admin/users")
		admin.POST("/:id/ban", middleware.RequireRole(auth.RoleModerator), authHandler.BanUser)
		admin.POST("/:id/unban", middleware.RequireRole(auth.RoleModerator), authHandler.UnbanUser)
		admin.PUT("/:id/role", middleware.RequireRole(auth.RoleAdmin), authHandler.SetRole)
	}

	return r
}
