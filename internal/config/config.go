package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the server configuration
type Config struct {
	MongoURI string
	MongoDB  string
	RedisURI string
	Port     string

	JWTSecret         string
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	CatalogCacheTTL time.Duration
	AnswerCacheTTL  time.Duration

	SessionFetchConcurrency int
	SessionIdleTTL          time.Duration

	CORSAllowedOrigins string
}

// Load reads an optional .env file, then the environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "surveyflow"),
		RedisURI: getEnv("REDIS_URI", "localhost:6379"),
		Port:     getEnv("PORT", "8080"),

		JWTSecret:         getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "password123"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		AnswerCacheTTL:  getDuration("ANSWER_CACHE_TTL", 24*time.Hour),

		SessionFetchConcurrency: getInt("SESSION_FETCH_CONCURRENCY", 8),
		SessionIdleTTL:          getDuration("SESSION_IDLE_TTL", 30*time.Minute),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

// RedisAddr strips an optional redis:// scheme
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURI, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, val, defaultVal)
		return defaultVal
	}
	return d
}

func getInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, val, defaultVal)
		return defaultVal
	}
	return n
}
