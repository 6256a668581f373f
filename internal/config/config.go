package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Redis   RedisConfig
	Storage StorageConfig
	Content ContentConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig holds the SQLite catalog configuration
type StorageConfig struct {
	SQLitePath string
}

// ContentConfig points at the on-disk content used to seed the catalog
type ContentConfig struct {
	LevelDir    string
	EnemyDir    string
	QuestionDir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			SQLitePath: os.Getenv("CATALOG_SQLITE_PATH"),
		},
		Content: ContentConfig{
			LevelDir:    getEnvOrDefault("LEVEL_DIR", "data/levels"),
			EnemyDir:    getEnvOrDefault("ENEMY_DIR", "data/enemies"),
			QuestionDir: getEnvOrDefault("QUESTION_DIR", "data/questions"),
		},
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
