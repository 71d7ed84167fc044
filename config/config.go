package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sniper-dashboard/models"
)

// Config holds application configuration
type Config struct {
	// Backend (decision + simulation services)
	Backend BackendConfig

	// Dashboard engine
	Dashboard DashboardConfig

	// Local API
	APIPort string

	// Database configuration
	DatabaseEnabled  bool
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisEnabled  bool
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// Webhook targets for simulation status changes
	WebhookURLs []string

	// Logging
	Log LogConfig
}

// BackendConfig holds the remote service settings
type BackendConfig struct {
	URL        string
	Timeout    time.Duration
	RetryCount int
}

// DashboardConfig holds polling engine settings
type DashboardConfig struct {
	PollInterval   time.Duration
	InitialMode    string
	InitialBalance float64
}

// LogConfig holds logger settings
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Backend: BackendConfig{
			URL:        getEnvOrDefault("BACKEND_URL", "http://localhost:8000/api"),
			Timeout:    getEnvDuration("BACKEND_TIMEOUT", 8*time.Second),
			RetryCount: getEnvInt("BACKEND_RETRY_COUNT", 1),
		},

		Dashboard: DashboardConfig{
			PollInterval:   getEnvDuration("DASHBOARD_POLL_INTERVAL", 2*time.Second),
			InitialMode:    getEnvOrDefault("DASHBOARD_INITIAL_MODE", string(models.ModeAuto)),
			InitialBalance: getEnvFloat("DASHBOARD_INITIAL_BALANCE", models.DefaultInitialBalance),
		},

		APIPort: getEnvOrDefault("API_PORT", "8080"),

		// Database configuration
		DatabaseEnabled:  getEnvBool("DB_ENABLED", false),
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "sniper_dashboard"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "sniper"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", ""),

		// Redis configuration
		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		WebhookURLs: getEnvList("WEBHOOK_URLS"),

		Log: LogConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			File:       getEnvOrDefault("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		},
	}
}

// Validate checks the settings the engine cannot start without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" {
		return fmt.Errorf("BACKEND_URL must not be empty")
	}
	if c.Dashboard.PollInterval <= 0 {
		return fmt.Errorf("DASHBOARD_POLL_INTERVAL must be positive, got %s", c.Dashboard.PollInterval)
	}
	if _, err := models.ParsePollMode(c.Dashboard.InitialMode); err != nil {
		return fmt.Errorf("DASHBOARD_INITIAL_MODE: %w", err)
	}
	if c.APIPort == "" {
		return fmt.Errorf("API_PORT must not be empty")
	}
	return nil
}

// InitialMode returns the parsed initial poll mode, defaulting to AUTO
func (c *Config) InitialMode() models.PollMode {
	mode, err := models.ParsePollMode(c.Dashboard.InitialMode)
	if err != nil {
		return models.ModeAuto
	}
	return mode
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvDuration accepts Go duration strings ("2s") or plain seconds ("2")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	var seconds int
	if _, err := fmt.Sscanf(value, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

// getEnvBool treats "true" and "1" as true
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
