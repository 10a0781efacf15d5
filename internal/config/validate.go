package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCalendar(); err != nil {
		return err
	}
	if err := c.validateWindows(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateRun checks the settings a batch or incremental run depends on that
// plain inspection commands do not.
func (c *Config) ValidateRun() error {
	if strings.TrimSpace(c.Calendar.ICSURL) == "" {
		return fmt.Errorf("calendar.ics_url is required. Set LASTSEEN_ICS_URL or edit %s (create with 'lastseen config init')", displayConfigPath())
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY or edit %s", displayConfigPath())
	}
	return nil
}

func (c *Config) validateCalendar() error {
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("calendar.timezone %q: %w", c.Calendar.Timezone, err)
	}
	if c.Calendar.MaxResults <= 0 {
		return errors.New("calendar.max_results must be positive")
	}
	return nil
}

func (c *Config) validateWindows() error {
	if c.Windows.LookaheadHours <= 0 {
		return errors.New("windows.lookahead_hours must be positive")
	}
	if c.Windows.LookbackHours <= 0 {
		return errors.New("windows.lookback_hours must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Dir == "" {
			return errors.New("store.dir must be set for the file backend")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path must be set for the sqlite backend")
		}
	case BackendS3:
		if c.Store.S3Bucket == "" {
			return errors.New("store.s3_bucket must be set for the s3 backend (or AWS_S3_BUCKET)")
		}
	default:
		return fmt.Errorf("store.backend %q is not one of file, sqlite, s3", c.Store.Backend)
	}
	if c.Store.CacheKey == c.Store.StatusKey {
		return errors.New("store.cache_key and store.status_key must differ")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func displayConfigPath() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}
