package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"harvest/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken  string
	DefaultPrefix string  // Prefix used when a guild has none configured
	OwnerIDs      []int64 // Discord IDs allowed to use owner-only features
	PrimaryColor  int     // Embed color for every reply

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration // Sliding expiry for cached wallets and settings

	// Write-behind persistence
	PersistWorkers   int
	PersistQueueSize int

	// NATS configuration (optional, events are only forwarded when set)
	NATSServers string

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		DefaultPrefix: getEnvWithDefault("DEFAULT_PREFIX", ";"),
		PrimaryColor:  0x2B2D31,

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Redis
		RedisAddr:     getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      3600 * time.Second,

		// Write-behind
		PersistWorkers:   4,
		PersistQueueSize: 1024,

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "harvest"),
		OTelExportIntervalMillis: 30000,

		// Logging
		LogLevel: getEnvWithDefault("LOG_LEVEL", "debug"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if db := os.Getenv("REDIS_DB"); db != "" {
		if parsed, err := strconv.Atoi(db); err == nil {
			config.RedisDB = parsed
		}
	}
	if ttl := os.Getenv("CACHE_TTL_SECONDS"); ttl != "" {
		if parsed, err := strconv.Atoi(ttl); err == nil && parsed > 0 {
			config.CacheTTL = time.Duration(parsed) * time.Second
		}
	}
	if workers := os.Getenv("PERSIST_WORKERS"); workers != "" {
		if parsed, err := strconv.Atoi(workers); err == nil && parsed > 0 {
			config.PersistWorkers = parsed
		}
	}
	if size := os.Getenv("PERSIST_QUEUE_SIZE"); size != "" {
		if parsed, err := strconv.Atoi(size); err == nil && parsed > 0 {
			config.PersistQueueSize = parsed
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}
	if color := os.Getenv("PRIMARY_COLOR"); color != "" {
		if parsed, err := strconv.ParseInt(strings.TrimPrefix(color, "#"), 16, 32); err == nil {
			config.PrimaryColor = int(parsed)
		}
	}

	// Parse owner Discord IDs
	if ownerIDs := os.Getenv("OWNER_IDS"); ownerIDs != "" {
		for _, idStr := range strings.Split(ownerIDs, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.OwnerIDs = append(config.OwnerIDs, id)
				}
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if strings.TrimSpace(config.DefaultPrefix) == "" {
			return nil, fmt.Errorf("DEFAULT_PREFIX cannot be blank")
		}
	}

	return config, nil
}

// IsOwner reports whether the Discord ID belongs to a configured bot owner
func (c *Config) IsOwner(discordID int64) bool {
	for _, id := range c.OwnerIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		DiscordToken:     "test-token",
		DefaultPrefix:    ";",
		PrimaryColor:     0x2B2D31,
		CacheTTL:         3600 * time.Second,
		PersistWorkers:   1,
		PersistQueueSize: 16,
		OTelExporterType: "none",
		OTelServiceName:  "harvest-test",
		LogLevel:         "debug",
	}
}
