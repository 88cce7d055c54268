package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	StorageBucket   string
	Environment     string

	// Message rate limiting (per sender)
	MessageRateLimit  int
	MessageRateWindow time.Duration

	// Cache freshness per module
	FavoritesCacheTTL time.Duration
	UsersCacheTTL     time.Duration
	MessagesCacheTTL  time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		FirebaseProject:   getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBucket:     getEnv("STORAGE_BUCKET", ""),
		Environment:       getEnv("ENVIRONMENT", "development"),
		MessageRateLimit:  getEnvAsInt("MESSAGE_RATE_LIMIT", 10),
		MessageRateWindow: time.Duration(getEnvAsInt("MESSAGE_RATE_WINDOW_SECONDS", 60)) * time.Second,
		FavoritesCacheTTL: 5 * time.Minute,
		UsersCacheTTL:     5 * time.Minute,
		MessagesCacheTTL:  2 * time.Minute,
	}

	return config, nil
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
