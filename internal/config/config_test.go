package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lastseen/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "OPENROUTER_API_KEY", "GOOGLE_MAPS_API_KEY",
		"LASTSEEN_ICS_URL", "AWS_S3_BUCKET", "AWS_S3_REGION", "AWS_REGION", "TZ",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LASTSEEN_ICS_URL", "https://example.test/basic.ics")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".local", "share", "lastseen", "store"); cfg.Store.Dir != want {
		t.Fatalf("store dir = %q, want %q", cfg.Store.Dir, want)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("expected llm key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Calendar.ICSURL != "https://example.test/basic.ics" {
		t.Fatalf("expected ics url from env, got %q", cfg.Calendar.ICSURL)
	}
	if cfg.Windows.LookaheadHours != 36 || cfg.Windows.LookbackHours != 12 {
		t.Fatalf("unexpected windows: %+v", cfg.Windows)
	}
	if cfg.Pipeline.IncrementalAllowLLM {
		t.Fatal("expected incremental oracle calls disabled by default")
	}
	if cfg.Store.CacheKey != "normalized-cache.json" || cfg.Store.StatusKey != "last-seen.json" {
		t.Fatalf("unexpected store keys: %+v", cfg.Store)
	}
	if cfg.GeocodingEnabled() {
		t.Fatal("expected geocoding disabled without key")
	}
	if err := cfg.ValidateRun(); err != nil {
		t.Fatalf("ValidateRun: %v", err)
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[calendar]
ics_url = "/tmp/cal.ics"
timezone = "America/New_York"

[windows]
lookahead_hours = 48

[heuristics]
deny_keywords = ["  Gym ", "gym", "Spa"]
reject_private = true

[store]
backend = "SQLite"
sqlite_path = "~/data/ls.db"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if got := cfg.Location().String(); got != "America/New_York" {
		t.Fatalf("location = %q", got)
	}
	if cfg.Lookahead().Hours() != 48 {
		t.Fatalf("lookahead = %v", cfg.Lookahead())
	}
	if strings.Join(cfg.Heuristics.DenyKeywords, ",") != "gym,spa" {
		t.Fatalf("deny keywords = %v", cfg.Heuristics.DenyKeywords)
	}
	if len(cfg.Heuristics.VirtualMarkers) == 0 {
		t.Fatal("expected default virtual markers retained")
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Store.SQLitePath != filepath.Join(tempHome, "data", "ls.db") {
		t.Fatalf("sqlite path = %q", cfg.Store.SQLitePath)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if err := cfg.ValidateRun(); err == nil || !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("expected llm.api_key error, got %v", err)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"timezone", func(c *config.Config) { c.Calendar.Timezone = "Mars/Olympus" }, "calendar.timezone"},
		{"lookback", func(c *config.Config) { c.Windows.LookbackHours = 0 }, "windows.lookback_hours"},
		{"backend", func(c *config.Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"s3 bucket", func(c *config.Config) { c.Store.Backend = config.BackendS3 }, "store.s3_bucket"},
		{"same keys", func(c *config.Config) { c.Store.StatusKey = c.Store.CacheKey }, "must differ"},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func TestEnsureDirectoriesCreatesStoreDirs(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	t.Setenv("HOME", base)
	cfg, _, _, err := config.Load(filepath.Join(base, "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Logging.Dir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Store.Dir, filepath.Dir(cfg.Store.LockPath), cfg.Logging.Dir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
