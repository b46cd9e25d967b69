package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the placeholder secret; services refuse to start with it.
const DefaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"torrents"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// RabbitMQ
	RabbitMQHost     string `env:"RABBITMQ_HOST" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUser     string `env:"RABBITMQ_USER" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`

	// JWT
	JWTSecret string        `env:"JWT_SECRET" envDefault:"your-secret-key-change-in-production"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"4h"`

	// AWS S3
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpoint        string `env:"AWS_ENDPOINT"`
	S3UseSSL           string `env:"S3_USE_SSL" envDefault:"true"`
	S3BucketName       string `env:"S3_BUCKET_NAME" envDefault:"torrent-files"`

	// Catalog
	RatingCacheTTL  time.Duration `env:"RATING_CACHE_TTL" envDefault:"5m"`
	CommentRateMax  int           `env:"COMMENT_RATE_LIMIT" envDefault:"30"`
	CommentRateSpan time.Duration `env:"COMMENT_RATE_WINDOW" envDefault:"1m"`

	// Tracing
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
	OTELEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`

	// Services URLs
	AuthServiceURL    string `env:"AUTH_SERVICE_URL" envDefault:"http://localhost:8001"`
	CatalogServiceURL string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8002"`
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// DSN builds the postgres connection string shared by gorm and goose.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
	)
}

// HasProductionSecret reports whether JWT_SECRET was set to something other
// than the placeholder.
func (c *Config) HasProductionSecret() bool {
	return c.JWTSecret != "" && c.JWTSecret != DefaultJWTSecret
}
