package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvConfig struct {
	Postgres struct {
		Host     string
		Database string
		Username string
		Password string
		Port     string
	}
	JWT struct {
		SecretKey string
		Expire    int
	}
	CORS struct {
		AllowDomains string
	}
	Redis struct {
		Password string
		Database int
		Host     string
		Port     string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
		UseSSL       bool
		Bucket       string
		PublicBase   string
	}
	Upload struct {
		BufferThreshold int64 // below or equal: buffered transfer
		PartSize        int64 // streamed transfer part size
		MaxVideoSize    int64
		MaxAudioSize    int64
		MaxDocSize      int64
		MaxImageSize    int64
		VideoDeadline   time.Duration
		AudioDeadline   time.Duration
		SmallDeadline   time.Duration // documents and images
	}
	SignedURL struct {
		Window        time.Duration
		RefreshPeriod time.Duration
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
	Port string
}

const (
	MiB = int64(1024 * 1024)
	GiB = int64(1024 * 1024 * 1024)
)

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.Host = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	if val := os.Getenv("JWT_EXPIRE"); val != "" {
		config.JWT.Expire, _ = strconv.Atoi(val)
	} else {
		config.JWT.Expire = 3600 * 24 * 7
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	// Redis
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.Host = os.Getenv("REDIS_HOST")
	config.Redis.Port = os.Getenv("REDIS_PORT")
	if config.Redis.Port == "" {
		config.Redis.Port = "6379"
	}

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// MinIO
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"
	config.Minio.Bucket = os.Getenv("MINIO_BUCKET")
	if config.Minio.Bucket == "" {
		config.Minio.Bucket = "media-assets"
	}
	config.Minio.PublicBase = os.Getenv("MINIO_PUBLIC_BASE")
	if config.Minio.PublicBase == "" {
		scheme := "http"
		if config.Minio.UseSSL {
			scheme = "https"
		}
		config.Minio.PublicBase = scheme + "://" + config.Minio.Endpoint
	}

	// Upload limits
	config.Upload.BufferThreshold = envInt64("UPLOAD_BUFFER_THRESHOLD", 10*MiB)
	config.Upload.PartSize = envInt64("UPLOAD_PART_SIZE", 8*MiB)
	config.Upload.MaxVideoSize = envInt64("UPLOAD_MAX_VIDEO_SIZE", 5*GiB)
	config.Upload.MaxAudioSize = envInt64("UPLOAD_MAX_AUDIO_SIZE", 500*MiB)
	config.Upload.MaxDocSize = envInt64("UPLOAD_MAX_DOC_SIZE", 100*MiB)
	config.Upload.MaxImageSize = envInt64("UPLOAD_MAX_IMAGE_SIZE", 10*MiB)
	config.Upload.VideoDeadline = envDuration("UPLOAD_VIDEO_DEADLINE", 2*time.Hour)
	config.Upload.AudioDeadline = envDuration("UPLOAD_AUDIO_DEADLINE", time.Hour)
	config.Upload.SmallDeadline = envDuration("UPLOAD_SMALL_DEADLINE", 15*time.Minute)

	// Signed URLs
	config.SignedURL.Window = envDuration("SIGNED_URL_WINDOW", 7*24*time.Hour)
	config.SignedURL.RefreshPeriod = envDuration("SIGNED_URL_REFRESH_PERIOD", 24*time.Hour)

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	grafanaEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	grafanaEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	config.Grafana.OTLPEndpoint = grafanaEndpoint
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "media-asset-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	return &config
}

func envInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
