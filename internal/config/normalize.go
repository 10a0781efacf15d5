package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeCalendar()
	c.normalizeLLM()
	c.normalizeGeocoding()
	c.normalizeHeuristics()
	if c.Pipeline.Concurrency <= 0 {
		c.Pipeline.Concurrency = defaultConcurrency
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeCalendar() {
	c.Calendar.ICSURL = strings.TrimSpace(c.Calendar.ICSURL)
	if c.Calendar.ICSURL == "" {
		c.Calendar.ICSURL = envValue("LASTSEEN_ICS_URL")
	}
	c.Calendar.Timezone = strings.TrimSpace(c.Calendar.Timezone)
	if c.Calendar.Timezone == "" {
		c.Calendar.Timezone = envValue("TZ")
	}
	if c.Calendar.Timezone == "" {
		c.Calendar.Timezone = defaultTimezone
	}
	if c.Calendar.MaxResults <= 0 {
		c.Calendar.MaxResults = defaultMaxResults
	}
	if c.Calendar.RequestTimeout <= 0 {
		c.Calendar.RequestTimeout = defaultCalendarTimeout
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = envValue("OPENAI_API_KEY", "OPENROUTER_API_KEY")
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	}
	if c.LLM.RequestsPerMinute < 0 {
		c.LLM.RequestsPerMinute = 0
	}
}

func (c *Config) normalizeGeocoding() {
	c.Geocoding.APIKey = strings.TrimSpace(c.Geocoding.APIKey)
	if c.Geocoding.APIKey == "" {
		c.Geocoding.APIKey = envValue("GOOGLE_MAPS_API_KEY")
	}
	c.Geocoding.BaseURL = strings.TrimRight(strings.TrimSpace(c.Geocoding.BaseURL), "/")
	if c.Geocoding.BaseURL == "" {
		c.Geocoding.BaseURL = defaultGeocodingBaseURL
	}
	if c.Geocoding.TimeoutSeconds <= 0 {
		c.Geocoding.TimeoutSeconds = defaultGeocodingTimeout
	}
	if c.Geocoding.MaxRetries < 0 {
		c.Geocoding.MaxRetries = 0
	}
	if c.Geocoding.RequestsPerSecond < 0 {
		c.Geocoding.RequestsPerSecond = 0
	}
}

func (c *Config) normalizeHeuristics() {
	c.Heuristics.DenyKeywords = normalizeWordList(c.Heuristics.DenyKeywords)
	c.Heuristics.VirtualMarkers = normalizeWordList(c.Heuristics.VirtualMarkers)
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	var err error
	if strings.TrimSpace(c.Store.Dir) == "" {
		c.Store.Dir = defaultStoreDir
	}
	if c.Store.Dir, err = expandPath(c.Store.Dir); err != nil {
		return fmt.Errorf("store.dir: %w", err)
	}
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = defaultSQLitePath
	}
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	if strings.TrimSpace(c.Store.LockPath) == "" {
		c.Store.LockPath = defaultLockPath
	}
	if c.Store.LockPath, err = expandPath(c.Store.LockPath); err != nil {
		return fmt.Errorf("store.lock_path: %w", err)
	}
	c.Store.S3Bucket = strings.TrimSpace(c.Store.S3Bucket)
	if c.Store.S3Bucket == "" {
		c.Store.S3Bucket = envValue("AWS_S3_BUCKET")
	}
	c.Store.S3Region = strings.TrimSpace(c.Store.S3Region)
	if c.Store.S3Region == "" {
		c.Store.S3Region = envValue("AWS_S3_REGION", "AWS_REGION")
	}
	c.Store.S3Prefix = strings.Trim(strings.TrimSpace(c.Store.S3Prefix), "/")
	c.Store.CacheKey = strings.TrimSpace(c.Store.CacheKey)
	if c.Store.CacheKey == "" {
		c.Store.CacheKey = defaultCacheKey
	}
	c.Store.StatusKey = strings.TrimSpace(c.Store.StatusKey)
	if c.Store.StatusKey == "" {
		c.Store.StatusKey = defaultStatusKey
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "text":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	var err error
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func normalizeWordList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func envValue(names ...string) string {
	for _, name := range names {
		if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
