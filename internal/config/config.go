package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Backend selection: memory, sheets, sqlite
	DataBackend string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleWorksheetName string

	// SQLite mirror
	SQLiteDBPath string

	// AMQP sync
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Pipeline tuning
	CacheTTL             time.Duration
	RetryMaxAttempts     int
	RetryInitialDelay    time.Duration
	RecentCount          int
	PrizePoolRefreshEach time.Duration

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// Event metadata shown by the UI
	EventTitle           string
	EventDate            string
	EventLocation        string
	VenmoHandle          string
	MinimumDonationCents int64
	DefaultDonationCents int64
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleWorksheetName: getEnv("GOOGLE_WORKSHEET_NAME", "Sheet1"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/climbreg.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "climbreg"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_registrations"),

		CacheTTL:             getEnvDuration("CACHE_TTL", 60*time.Second),
		RetryMaxAttempts:     getEnvInt("RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay:    getEnvDuration("RETRY_INITIAL_DELAY", 1*time.Second),
		RecentCount:          getEnvInt("RECENT_REGISTRATIONS_COUNT", 10),
		PrizePoolRefreshEach: getEnvDuration("PRIZE_POOL_REFRESH_INTERVAL", 60*time.Second),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		EventTitle:           getEnv("EVENT_TITLE", "Climb4Good"),
		EventDate:            getEnv("EVENT_DATE", "April 10-12, 2026"),
		EventLocation:        getEnv("EVENT_LOCATION", "Shelf Road - The Banks"),
		VenmoHandle:          getEnv("VENMO_HANDLE", "@Evan-Komp"),
		MinimumDonationCents: getEnvCents("MINIMUM_DONATION", 2000),
		DefaultDonationCents: getEnvCents("DEFAULT_DONATION", 2000),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sheets", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [memory sheets sqlite]", c.DataBackend))
	}

	if c.DataBackend == "sheets" && c.GoogleSpreadsheetID == "" {
		errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be positive", c.CacheTTL))
	}
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("invalid retry attempts %d: must be at least 1", c.RetryMaxAttempts))
	}
	if c.RetryInitialDelay <= 0 {
		errs = append(errs, fmt.Sprintf("invalid retry initial delay %v: must be positive", c.RetryInitialDelay))
	}
	if c.RecentCount < 1 {
		errs = append(errs, fmt.Sprintf("invalid recent registrations count %d: must be at least 1", c.RecentCount))
	}
	if c.PrizePoolRefreshEach < time.Second {
		errs = append(errs, fmt.Sprintf("invalid prize pool refresh interval %v: must be at least 1 second", c.PrizePoolRefreshEach))
	}
	if c.MinimumDonationCents < 0 {
		errs = append(errs, fmt.Sprintf("invalid minimum donation %d: must not be negative", c.MinimumDonationCents))
	}

	if c.SyncBatchSize < 1 || c.SyncBatchSize > 1000 {
		errs = append(errs, fmt.Sprintf("invalid sync batch size %d: must be between 1 and 1000", c.SyncBatchSize))
	}
	if c.SyncInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvCents reads a whole-dollar env value into cents.
func getEnvCents(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if d, err := strconv.ParseInt(value, 10, 64); err == nil {
			return d * 100
		}
	}
	return defaultValue
}
