package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Receipt analysis. Empty model disables the feature; the API key is
	// read by the GenAI client from GOOGLE_API_KEY / GEMINI_API_KEY.
	ReceiptModel string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "pennypilot"),
		DBPassword: getEnv("DB_PASSWORD", "pennypilot"),
		DBName:     getEnv("DB_NAME", "pennypilot"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		ReceiptModel: getEnv("RECEIPT_MODEL", "gemini-2.0-flash"),
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
