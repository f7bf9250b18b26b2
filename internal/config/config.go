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
	Redis       RedisConfig
	NATS        NATSConfig
	Identity    IdentityConfig
	Zone        ZoneConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
	Moderation  ModerationConfig
	Cleanup     CleanupConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// IdentityConfig holds identity collaborator configuration
type IdentityConfig struct {
	AdminToken string
}

// ZoneConfig holds geofence configuration
type ZoneConfig struct {
	MatchToleranceMeters float64
	CacheTTL             time.Duration
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	TTL             time.Duration
	BlockThreshold  int
	SilenceDuration time.Duration
	MinAge          int
	MaxAge          int
}

// RateLimitConfig holds per-session send limits and the feed read cap
type RateLimitConfig struct {
	MessageLimit    int
	TextCooldown    time.Duration
	StickerCooldown time.Duration
	GifCooldown     time.Duration
	AudioCooldown   time.Duration
	MaxAudioSeconds int
	FetchLimit      int
}

// ModerationConfig holds moderation rule configuration
type ModerationConfig struct {
	RulesPath string
}

// CleanupConfig holds the janitor schedule
type CleanupConfig struct {
	Interval time.Duration
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
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "zonechat"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Identity: IdentityConfig{
			AdminToken: getEnv("IDENTITY_ADMIN_TOKEN", "dev-admin-token"),
		},
		Zone: ZoneConfig{
			MatchToleranceMeters: getEnvAsFloat("ZONE_MATCH_TOLERANCE_METERS", 10.0),
			CacheTTL:             getEnvAsDuration("ZONE_CACHE_TTL", 60*time.Second),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			BlockThreshold:  getEnvAsInt("SESSION_BLOCK_THRESHOLD", 5),
			SilenceDuration: getEnvAsDuration("SESSION_SILENCE_DURATION", 1*time.Hour),
			MinAge:          getEnvAsInt("SESSION_MIN_AGE", 13),
			MaxAge:          getEnvAsInt("SESSION_MAX_AGE", 120),
		},
		RateLimit: RateLimitConfig{
			MessageLimit:    getEnvAsInt("RATE_MESSAGE_LIMIT", 100),
			TextCooldown:    getEnvAsDuration("RATE_TEXT_COOLDOWN", 9*time.Second),
			StickerCooldown: getEnvAsDuration("RATE_STICKER_COOLDOWN", 24*time.Second),
			GifCooldown:     getEnvAsDuration("RATE_GIF_COOLDOWN", 24*time.Second),
			AudioCooldown:   getEnvAsDuration("RATE_AUDIO_COOLDOWN", 30*time.Second),
			MaxAudioSeconds: getEnvAsInt("RATE_MAX_AUDIO_SECONDS", 30),
			FetchLimit:      getEnvAsInt("RATE_FETCH_LIMIT", 200),
		},
		Moderation: ModerationConfig{
			RulesPath: getEnv("MODERATION_RULES_PATH", ""),
		},
		Cleanup: CleanupConfig{
			Interval: getEnvAsDuration("CLEANUP_INTERVAL", 10*time.Minute),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Identity.AdminToken == "dev-admin-token" && config.Environment != "development" {
		return fmt.Errorf("admin token must be set in non-development environments")
	}

	if config.Session.BlockThreshold <= 0 {
		return fmt.Errorf("block threshold must be positive")
	}

	if config.RateLimit.MessageLimit <= 0 {
		return fmt.Errorf("message limit must be positive")
	}

	for name, d := range map[string]time.Duration{
		"text":    config.RateLimit.TextCooldown,
		"sticker": config.RateLimit.StickerCooldown,
		"gif":     config.RateLimit.GifCooldown,
		"audio":   config.RateLimit.AudioCooldown,
	} {
		if d <= 0 {
			return fmt.Errorf("%s cooldown must be positive", name)
		}
	}

	if config.Session.MinAge <= 0 || config.Session.MaxAge <= config.Session.MinAge {
		return fmt.Errorf("age bounds are inconsistent")
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
