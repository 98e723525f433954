package utils

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFile returns the .env path to load, honoring ENV_FILE
func EnvFile() string {
	return GetEnvWithDefault("ENV_FILE", ".env")
}

// LoadEnv loads environment variables from .env files and returns the resulting environment.
// Variables already set in the process win over file values; missing files are skipped.
func LoadEnv(files ...string) map[string]string {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Printf("[UTILS]: Warning, could not load %s: %v", file, err)
		}
	}

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
			env[key] = value
		}
	}
	return env
}

// GetEnvWithDefault returns an environment variable value or a default if not set
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
