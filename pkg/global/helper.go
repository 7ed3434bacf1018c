package global

import (
	"fmt"
	"os"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetPostgresDSN assembles the connection string from POSTGRES_* variables.
func GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		GetEnvOrDefault("POSTGRES_HOST", "localhost"),
		GetEnvOrDefault("POSTGRES_PORT", "5432"),
		GetEnvOrDefault("POSTGRES_USER", "postgres"),
		GetEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
		GetEnvOrDefault("POSTGRES_DB", "lumenshop"),
		GetEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	)
}

func GetMigrationsDir() string {
	return GetEnvOrDefault("MIGRATIONS_DIR", "migrations")
}
