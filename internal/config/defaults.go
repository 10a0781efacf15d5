package config

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

const (
	defaultConfigPath           = "~/.config/lastseen/config.toml"
	defaultTimezone             = "America/Los_Angeles"
	defaultMaxResults           = 100
	defaultCalendarTimeout      = 15
	defaultLookaheadHours       = 36
	defaultLookbackHours        = 12
	defaultLLMBaseURL           = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel             = "gpt-4o-mini"
	defaultLLMTitle             = "lastseen"
	defaultLLMTimeoutSeconds    = 30
	defaultLLMMaxRetries        = 4
	defaultLLMRequestsPerMinute = 60
	defaultGeocodingBaseURL     = "https://places.googleapis.com/v1"
	defaultGeocodingTimeout     = 10
	defaultGeocodingMaxRetries  = 3
	defaultGeocodingRPS         = 5
	defaultConcurrency          = 1
	defaultStoreBackend         = BackendFile
	defaultStoreDir             = "~/.local/share/lastseen/store"
	defaultSQLitePath           = "~/.local/share/lastseen/lastseen.db"
	defaultCacheKey             = "normalized-cache.json"
	defaultStatusKey            = "last-seen.json"
	defaultLockPath             = "~/.local/share/lastseen/run.lock"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// DefaultDenyKeywords lists words that mark a location as private or
// sensitive. They are matched as whole words across summary, description, and
// location.
var DefaultDenyKeywords = []string{
	"doctor", "dentist", "clinic", "hospital", "therapy", "therapist", "optometry", "dermatology",
	"attorney", "law", "court", "notary",
	"home", "apartment", "condo", "residence", "unit", "suite", "ste",
	"office", "hq", "headquarters",
}

// DefaultVirtualMarkers lists phrases that mark a location as a remote meeting.
var DefaultVirtualMarkers = []string{
	"zoom", "zoom.us", "google meet", "meet.google", "teams", "webex", "whereby", "facetime",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Calendar: Calendar{
			Timezone:       defaultTimezone,
			MaxResults:     defaultMaxResults,
			RequestTimeout: defaultCalendarTimeout,
		},
		Windows: Windows{
			LookaheadHours: defaultLookaheadHours,
			LookbackHours:  defaultLookbackHours,
		},
		LLM: LLM{
			BaseURL:           defaultLLMBaseURL,
			Model:             defaultLLMModel,
			Title:             defaultLLMTitle,
			TimeoutSeconds:    defaultLLMTimeoutSeconds,
			MaxRetries:        defaultLLMMaxRetries,
			RequestsPerMinute: defaultLLMRequestsPerMinute,
		},
		Geocoding: Geocoding{
			BaseURL:           defaultGeocodingBaseURL,
			TimeoutSeconds:    defaultGeocodingTimeout,
			MaxRetries:        defaultGeocodingMaxRetries,
			RequestsPerSecond: defaultGeocodingRPS,
		},
		Heuristics: Heuristics{
			DenyKeywords:   append([]string(nil), DefaultDenyKeywords...),
			VirtualMarkers: append([]string(nil), DefaultVirtualMarkers...),
		},
		Pipeline: Pipeline{
			Concurrency: defaultConcurrency,
		},
		Store: Store{
			Backend:    defaultStoreBackend,
			Dir:        defaultStoreDir,
			SQLitePath: defaultSQLitePath,
			CacheKey:   defaultCacheKey,
			StatusKey:  defaultStatusKey,
			LockPath:   defaultLockPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
