// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Redis       RedisConfig
	Directory   DirectoryConfig
	Signing     SigningConfig
	Feed        FeedConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
	RateLimit       int
	RateLimitWindow time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver       string // postgres or memory
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
	EnsureSchema bool
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	PlacesTopic    string
	PhotoSubject   string
}

// RedisConfig holds the directory cache connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

// DirectoryConfig holds the external POI directory client configuration
type DirectoryConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RetryMax     int
	CacheTTL     time.Duration
	RefreshOnUse bool
}

// SigningConfig holds blob storage URL signing configuration
type SigningConfig struct {
	BaseURL string
	Bucket  string
	Secret  string
	TTL     time.Duration
}

// FeedConfig holds feed engine tuning
type FeedConfig struct {
	DiscoveryRadius       float64
	LookBack              time.Duration
	HistoricalConcurrency int
	MaxTrailPoints        int
	FriendsWindow         time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
			RateLimit:       getEnvAsInt("SERVER_RATE_LIMIT", 120),
			RateLimitWindow: getEnvAsDuration("SERVER_RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("STORE_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "geosnap"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			EnsureSchema: getEnvAsBool("DB_ENSURE_SCHEMA", true),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", true),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			PlacesTopic:    getEnv("NATS_PLACES_TOPIC", "places"),
			PhotoSubject:   getEnv("NATS_PHOTO_UPLOADED_SUBJECT", "photos.uploaded"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},
		Directory: DirectoryConfig{
			BaseURL:      getEnv("DIRECTORY_BASE_URL", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
			APIKey:       getEnv("DIRECTORY_API_KEY", ""),
			Timeout:      getEnvAsDuration("DIRECTORY_TIMEOUT", 5*time.Second),
			RetryMax:     getEnvAsInt("DIRECTORY_RETRY_MAX", 2),
			CacheTTL:     getEnvAsDuration("DIRECTORY_CACHE_TTL", 6*time.Hour),
			RefreshOnUse: getEnvAsBool("FEED_REFRESH_POIS_ON_DISCOVERY", false),
		},
		Signing: SigningConfig{
			BaseURL: getEnv("SIGNING_BASE_URL", "http://localhost:9000/blobs"),
			Bucket:  getEnv("SIGNING_BUCKET", "photos"),
			Secret:  getEnv("SIGNING_SECRET", "dev-signing-secret"),
			TTL:     getEnvAsDuration("SIGNING_TTL", 15*time.Minute),
		},
		Feed: FeedConfig{
			DiscoveryRadius:       getEnvAsFloat("FEED_DISCOVERY_RADIUS", 500),
			LookBack:              getEnvAsDuration("FEED_LOOK_BACK", 5*time.Hour),
			HistoricalConcurrency: getEnvAsInt("FEED_HISTORICAL_CONCURRENCY", 8),
			MaxTrailPoints:        getEnvAsInt("FEED_MAX_TRAIL_POINTS", 2000),
			FriendsWindow:         getEnvAsDuration("FEED_FRIENDS_WINDOW", 7*24*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Signing.Secret == "dev-signing-secret" && config.Environment != "development" {
		return fmt.Errorf("signing secret must be set in non-development environments")
	}

	switch config.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", config.Database.Driver)
	}

	if config.Feed.DiscoveryRadius <= 0 {
		return fmt.Errorf("discovery radius must be positive")
	}

	if config.Feed.HistoricalConcurrency < 1 {
		return fmt.Errorf("historical concurrency must be at least 1")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
