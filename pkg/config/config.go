package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	DatabaseURL    string
	DBMaxOpenConns int

	FirebaseProject            string
	FirebaseServiceAccountPath string
	FirebaseServiceAccountJSON string

	ImageStorage    string
	StorageBucket   string
	ImageFolder     string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	PublicCacheTTL time.Duration

	FreeListingLimit      int
	MaxListingImages      int
	ChatPollInterval      time.Duration
	ChatMessagesPerMinute int

	NotifyWorkers   int
	NotifyQueueSize int
	NotifyTimeout   time.Duration

	MetricsNamespace string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),

		ImageStorage:    getEnv("IMAGE_STORAGE", "gcs"),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		ImageFolder:     getEnv("IMAGE_FOLDER", "flip-earn"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		PublicCacheTTL: getEnvAsDuration("PUBLIC_CACHE_TTL", time.Minute),

		FreeListingLimit:      getEnvAsInt("FREE_LISTING_LIMIT", 5),
		MaxListingImages:      getEnvAsInt("MAX_LISTING_IMAGES", 5),
		ChatPollInterval:      getEnvAsDuration("CHAT_POLL_INTERVAL", 10*time.Second),
		ChatMessagesPerMinute: getEnvAsInt("CHAT_MESSAGES_PER_MINUTE", 30),

		NotifyWorkers:   getEnvAsInt("NOTIFY_WORKERS", 2),
		NotifyQueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 100),
		NotifyTimeout:   getEnvAsDuration("NOTIFY_TIMEOUT", 15*time.Second),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "flipearn"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.ImageStorage {
	case "gcs", "s3":
	default:
		return fmt.Errorf("IMAGE_STORAGE must be gcs or s3, got %q", c.ImageStorage)
	}
	if c.StorageBucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	if c.FreeListingLimit < 1 {
		return fmt.Errorf("FREE_LISTING_LIMIT must be positive")
	}
	if c.MaxListingImages < 1 {
		return fmt.Errorf("MAX_LISTING_IMAGES must be positive")
	}
	if c.NotifyWorkers < 1 || c.NotifyQueueSize < 1 {
		return fmt.Errorf("NOTIFY_WORKERS and NOTIFY_QUEUE_SIZE must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
