package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	// MinDrawCount and MaxDrawCount bound the number of prizes in one draw
	MinDrawCount = 1
	MaxDrawCount = 100

	// DefaultSuspenseDelay is how long a high-rank reveal waits after the tap
	DefaultSuspenseDelay = 500 * time.Millisecond

	// DefaultLowStockThreshold triggers the "only N left" warning
	DefaultLowStockThreshold = 50
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Draw configuration
	DefaultDrawCount  int
	DisplayMode       string        // "rank", "prize" or "both"
	SuspenseDelay     time.Duration // delay between a high-rank tap and its reveal
	LowStockThreshold int

	// Discord IDs allowed to run draws and change draw settings
	AdminDiscordIDs []int64

	// Observability
	MetricsAddr string
	LogLevel    string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables, reading a .env file first if present
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to read .env file: %v", err)
	}
	return loadFromEnv()
}

func loadFromEnv() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Draw settings with defaults
		DefaultDrawCount:  1,
		DisplayMode:       "both",
		SuspenseDelay:     DefaultSuspenseDelay,
		LowStockThreshold: DefaultLowStockThreshold,

		MetricsAddr: os.Getenv("METRICS_ADDR"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if count := os.Getenv("DEFAULT_DRAW_COUNT"); count != "" {
		if parsed, err := strconv.Atoi(count); err == nil {
			config.DefaultDrawCount = ClampDrawCount(parsed)
		}
	}
	if mode := os.Getenv("DISPLAY_MODE"); mode != "" {
		config.DisplayMode = mode
	}
	if delay := os.Getenv("SUSPENSE_DELAY_MS"); delay != "" {
		if parsed, err := strconv.Atoi(delay); err == nil && parsed >= 0 {
			config.SuspenseDelay = time.Duration(parsed) * time.Millisecond
		}
	}
	if threshold := os.Getenv("LOW_STOCK_THRESHOLD"); threshold != "" {
		if parsed, err := strconv.Atoi(threshold); err == nil && parsed >= 0 {
			config.LowStockThreshold = parsed
		}
	}

	// Parse admin Discord IDs
	if adminIDs := os.Getenv("ADMIN_DISCORD_IDS"); adminIDs != "" {
		idStrings := strings.Split(adminIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.AdminDiscordIDs = append(config.AdminDiscordIDs, id)
				}
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	switch config.DisplayMode {
	case "rank", "prize", "both":
	default:
		return nil, fmt.Errorf("DISPLAY_MODE must be one of rank, prize, both (got %q)", config.DisplayMode)
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// ClampDrawCount bounds a requested draw count to the supported range
func ClampDrawCount(n int) int {
	if n < MinDrawCount {
		return MinDrawCount
	}
	if n > MaxDrawCount {
		return MaxDrawCount
	}
	return n
}
