package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Port          string
	RedisURL      string
	APIBaseURL    string
	ClientTimeout time.Duration
	CartTTL       time.Duration
	TokenTTL      time.Duration
}

// Load reads configuration from the environment, with .env as a fallback.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8088"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:4000/api"),
		ClientTimeout: getDuration("CLIENT_TIMEOUT", 15*time.Second),
		CartTTL:       time.Hour * 24 * 30,
		TokenTTL:      time.Hour * 24 * 30,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
