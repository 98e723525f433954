package utils

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
)

// Config keys read by the commands
const (
	KeyAPIURL      = "SYMPTOM_API_URL"      // Dialogue service root
	KeyUserID      = "SYMPTOM_USER_ID"      // Stable user id; generated when empty
	KeyAge         = "SYMPTOM_AGE"          // Optional age sent with the initial message
	KeySex         = "SYMPTOM_SEX"          // Optional sex sent with the initial message
	KeyAPIPort     = "API_PORT"             // Stub service port
	KeyCORSOrigins = "CORS_ALLOWED_ORIGINS" // Stub service CORS origins, comma separated
	KeyStubScript  = "STUB_SCRIPT"          // Stub service interview script (YAML)
)

// DefaultAPIURL is where the dialogue service is expected when none is configured
const DefaultAPIURL = "http://localhost:5000"

// Config is a thread-safe view over configuration values loaded from the environment
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewConfig creates a new Config instance with the provided key-value pairs
func NewConfig(values map[string]string) *Config {
	config := &Config{
		values: make(map[string]string),
	}

	maps.Copy(config.values, values)

	return config
}

// NewConfigFromEnv loads the given .env files into the process environment and snapshots it
func NewConfigFromEnv(files ...string) *Config {
	return NewConfig(LoadEnv(files...))
}

// Get retrieves a configuration value by key, or "" when unset
func (c *Config) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimSpace(c.values[key])
}

// GetWithDefault retrieves a configuration value by key with a fallback for unset or empty values
func (c *Config) GetWithDefault(key, defaultValue string) string {
	if value := c.Get(key); value != "" {
		return value
	}
	return defaultValue
}

// GetInt retrieves a configuration value as an integer, falling back when unset.
// A set but malformed value is an error rather than a silent default.
func (c *Config) GetInt(key string, defaultValue int) (int, error) {
	value := c.Get(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return parsed, nil
}

// GetOptionalInt retrieves an integer that may be absent
func (c *Config) GetOptionalInt(key string) (*int, error) {
	if c.Get(key) == "" {
		return nil, nil
	}

	parsed, err := c.GetInt(key, 0)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// GetList splits a comma separated value, dropping empty items
func (c *Config) GetList(key string, defaultValue ...string) []string {
	value := c.Get(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Set modifies a configuration value; command-line flags use it to override the environment
func (c *Config) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}
