package testsupport

import (
	"path/filepath"
	"testing"

	"lastseen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// API keys are set so ValidateRun passes; geocoding stays unconfigured.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Calendar.ICSURL = filepath.Join(base, "calendar.ics")
	cfgVal.Calendar.Timezone = "America/Los_Angeles"
	cfgVal.LLM.APIKey = "test"
	cfgVal.Geocoding.APIKey = ""
	cfgVal.Store.Dir = filepath.Join(base, "store")
	cfgVal.Store.SQLitePath = filepath.Join(base, "lastseen.db")
	cfgVal.Store.LockPath = filepath.Join(base, "run.lock")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithBackend selects the store backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
	}
}

// WithLLMEndpoint points the oracle at a test server.
func WithLLMEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
		b.cfg.LLM.MaxRetries = 1
	}
}

// WithPlaceholder enables the placeholder publish policy.
func WithPlaceholder(place string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.Placeholder = place
	}
}

// BaseDir returns the temp directory backing cfg's paths.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Store.LockPath)
}
