// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	Addr         string
	DatabasePath string
	LogLevel     string
}

// Load reads the .env file if present, then the environment. Missing
// values fall back to development defaults.
func Load() Config {
	// A missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	return Config{
		Addr:         getEnv("ADDR", ":8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/fulfillment.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
