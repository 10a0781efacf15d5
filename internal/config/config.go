package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Calendar contains the event source settings.
type Calendar struct {
	// ICSURL is an http(s) URL or local path of the iCalendar feed.
	ICSURL         string `toml:"ics_url"`
	Timezone       string `toml:"timezone"`
	MaxResults     int    `toml:"max_results"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Windows controls the time spans enumerated by each run.
type Windows struct {
	LookaheadHours int `toml:"lookahead_hours"`
	LookbackHours  int `toml:"lookback_hours"`
}

// LLM contains the classification oracle connection settings.
type LLM struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	Referer           string `toml:"referer"`
	Title             string `toml:"title"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxRetries        int    `toml:"max_retries"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// Geocoding contains the Places API settings. An empty APIKey puts the place
// normalizer in pass-through mode.
type Geocoding struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxRetries        int     `toml:"max_retries"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Heuristics contains the pre-oracle rejection policy.
type Heuristics struct {
	DenyKeywords   []string `toml:"deny_keywords"`
	VirtualMarkers []string `toml:"virtual_markers"`
	RejectPrivate  bool     `toml:"reject_private"`
}

// Pipeline contains decision pipeline tuning.
type Pipeline struct {
	Concurrency         int  `toml:"concurrency"`
	IncrementalAllowLLM bool `toml:"incremental_allow_llm"`
}

// Store selects and configures the blob store backing the verdict cache and
// the published status document.
type Store struct {
	Backend    string `toml:"backend"` // file, sqlite, or s3
	Dir        string `toml:"dir"`
	SQLitePath string `toml:"sqlite_path"`
	S3Bucket   string `toml:"s3_bucket"`
	S3Region   string `toml:"s3_region"`
	S3Prefix   string `toml:"s3_prefix"`
	CacheKey   string `toml:"cache_key"`
	StatusKey  string `toml:"status_key"`
	LockPath   string `toml:"lock_path"`
}

// Publish contains status document policy.
type Publish struct {
	// Placeholder, when set, is published as the place whenever an incremental
	// run finds no qualifying event. Empty leaves the previous document alone.
	Placeholder string `toml:"placeholder"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for lastseen.
//
// Configuration sections by subsystem:
//   - Calendar: iCalendar feed location, display timezone, listing cap
//   - Windows: batch lookahead and incremental lookback spans
//   - LLM: classification oracle connection
//   - Geocoding: place normalizer connection
//   - Heuristics: deterministic pre-oracle rejection policy
//   - Pipeline: decision concurrency and incremental oracle gating
//   - Store: blob store backend, document keys, run lock
//   - Publish: status document policy
//   - Logging: log format, level, and file directory
type Config struct {
	Calendar   Calendar   `toml:"calendar"`
	Windows    Windows    `toml:"windows"`
	LLM        LLM        `toml:"llm"`
	Geocoding  Geocoding  `toml:"geocoding"`
	Heuristics Heuristics `toml:"heuristics"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Store      Store      `toml:"store"`
	Publish    Publish    `toml:"publish"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lastseen.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the configured backend writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Store.LockPath)}
	switch c.Store.Backend {
	case BackendFile:
		dirs = append(dirs, c.Store.Dir)
	case BackendSQLite:
		dirs = append(dirs, filepath.Dir(c.Store.SQLitePath))
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Location resolves the calendar display timezone. All-day events are
// anchored to this zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Lookahead returns the batch enumeration span.
func (c *Config) Lookahead() time.Duration {
	return time.Duration(c.Windows.LookaheadHours) * time.Hour
}

// Lookback returns the incremental enumeration and selection span.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Windows.LookbackHours) * time.Hour
}

// GeocodingEnabled reports whether the place normalizer should call out.
func (c *Config) GeocodingEnabled() bool {
	return strings.TrimSpace(c.Geocoding.APIKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
