package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries all process configuration, resolved once at startup and
// passed explicitly to the components that need it.
type AppConfig struct {
	// BotToken authenticates against the chat transport. Required.
	BotToken string

	// OpenMeteoBaseURL overrides the forecast endpoint, mainly for tests.
	OpenMeteoBaseURL string

	// HTTPTimeout bounds one outbound fetch; a single fetch is a single
	// attempt, so this is the only bound on how long it may block.
	HTTPTimeout time.Duration

	// TextLimit is the rendered-table length above which replies switch
	// from inline text to a CSV file with a preview.
	TextLimit int

	// PreviewRows is how many rows the large-table preview shows.
	PreviewRows int

	// HealthPort serves the operational health endpoint.
	HealthPort string

	// Debug switches the logger to development output.
	Debug bool
}

// Load reads configuration from the environment with sensible defaults.
// A missing bot token is an error: the process must not start without it.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.BotToken = os.Getenv("BOT_TOKEN")
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}

	cfg.OpenMeteoBaseURL = os.Getenv("OPENMETEO_BASE_URL")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.TextLimit = getenvInt("TEXT_LIMIT", 3800)
	cfg.PreviewRows = getenvInt("PREVIEW_ROWS", 20)
	cfg.HealthPort = getenvDefault("HEALTH_PORT", "8080")
	cfg.Debug = os.Getenv("DEBUG") != ""

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
