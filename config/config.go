package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once at process
// start and passed down explicitly — nothing below config/ reads the
// environment.
type Config struct {
	Server     ServerConfig
	Backends   BackendConfig
	AntiDetect AntiDetectConfig
	Scraper    ScraperConfig
	Validation ValidationConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Cache      CacheConfig
	Log        LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BackendConfig decides which rendering backends are available. Credentials
// are opaque to the core: a backend is configured when its fields are
// non-empty, and that is the only interpretation applied.
type BackendConfig struct {
	// CloudWSURL is the websocket endpoint of an externally hosted browser
	// (Chrome DevTools protocol). The cloud backend is enabled when set.
	CloudWSURL string

	// LocalEnabled launches a headless browser process per request.
	LocalEnabled bool

	// BrowserBin overrides the browser binary path for the local backend.
	BrowserBin string

	// Headless controls whether local browsers run headless.
	Headless bool // default: true

	// NoSandbox disables the browser sandbox (needed in containers).
	NoSandbox bool // default: false

	// ServerlessBin is the path to a minimal bundled browser binary
	// (headless-shell). The serverless backend is enabled when set.
	ServerlessBin string

	// RenderAPIURL / RenderAPIKey configure the remote render-as-HTML
	// service. Enabled when both are set.
	RenderAPIURL string
	RenderAPIKey string

	// CountryHint is an optional geolocation hint forwarded to the
	// render API (two-letter country code).
	CountryHint string
}

// AntiDetectConfig controls the anti-detection behaviors applied by the
// browser-driven backends. Each behavior is independently toggleable.
type AntiDetectConfig struct {
	RotateUserAgent bool // default: true
	SeedIdentity    bool // seed cookies/headers mimicking a returning visitor; default: true
	BlockResources  bool // default: true
	HumanizeDelays  bool // default: true
	DismissConsent  bool // default: true
	TriggerLazyLoad bool // default: true

	// BlockedResourceTypes lists resource types to block when
	// BlockResources is on. default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// MinDelay/MaxDelay bound the randomized pauses injected before
	// navigation and between interaction steps.
	MinDelay time.Duration // default: 250ms
	MaxDelay time.Duration // default: 1200ms

	// ScrollSteps is the number of fixed viewport increments used to
	// trigger lazy-loaded sections.
	ScrollSteps int // default: 4

	// HydrationSelector is the DOM fragment whose children indicate the
	// page has hydrated; HydrationMinItems is the threshold.
	HydrationSelector string // default: '[data-testid="property-card"]'
	HydrationMinItems int    // default: 3
	HydrationTimeout  time.Duration // default: 6s
}

// ScraperConfig controls the orchestration pipeline.
type ScraperConfig struct {
	// RenderTimeout bounds one backend attempt end to end.
	RenderTimeout time.Duration // default: 45s

	// NavigationTimeout bounds the top-level navigation alone; exceeding
	// it aborts the attempt and triggers fail-over evaluation.
	NavigationTimeout time.Duration // default: 20s

	// DisableFailover globally suppresses the fail-over retry.
	DisableFailover bool // default: false
}

// ValidationConfig tunes the block-detection heuristics. These are
// approximate signals that steer fail-over, not hard contracts.
type ValidationConfig struct {
	// MinContentLength below which a rendered page is considered suspect.
	MinContentLength int // default: 20000

	// BlockedTitleMarkers are lowercase substrings of page titles that
	// indicate access denial.
	BlockedTitleMarkers []string

	// RobotTextMarkers are lowercase substrings of page bodies that
	// indicate an interstitial robot check.
	RobotTextMarkers []string

	// ErrorURLMarkers are substrings of final URLs that indicate a
	// redirect to a search-failed or error page.
	ErrorURLMarkers []string
}

// AuthConfig controls API key authentication on the façade.
type AuthConfig struct {
	Enabled bool
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 2
	Burst             int     // default: 5
}

// CacheConfig controls the search response cache.
type CacheConfig struct {
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from a .env file (if present) and the
// environment, with sane defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment")
	}

	return &Config{
		Server: ServerConfig{
			Host: envOr("HOTELSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("HOTELSCOUT_PORT", 8080),
			Mode: envOr("HOTELSCOUT_MODE", "release"),
		},
		Backends: BackendConfig{
			CloudWSURL:    os.Getenv("HOTELSCOUT_CLOUD_WS_URL"),
			LocalEnabled:  envBoolOr("HOTELSCOUT_LOCAL_BROWSER", true),
			BrowserBin:    os.Getenv("HOTELSCOUT_BROWSER_BIN"),
			Headless:      envBoolOr("HOTELSCOUT_HEADLESS", true),
			NoSandbox:     envBoolOr("HOTELSCOUT_NO_SANDBOX", false),
			ServerlessBin: os.Getenv("HOTELSCOUT_SERVERLESS_BIN"),
			RenderAPIURL:  os.Getenv("HOTELSCOUT_RENDER_API_URL"),
			RenderAPIKey:  os.Getenv("HOTELSCOUT_RENDER_API_KEY"),
			CountryHint:   envOr("HOTELSCOUT_COUNTRY_HINT", "us"),
		},
		AntiDetect: AntiDetectConfig{
			RotateUserAgent: envBoolOr("HOTELSCOUT_ROTATE_UA", true),
			SeedIdentity:    envBoolOr("HOTELSCOUT_SEED_IDENTITY", true),
			BlockResources:  envBoolOr("HOTELSCOUT_BLOCK_RESOURCES", true),
			HumanizeDelays:  envBoolOr("HOTELSCOUT_HUMANIZE_DELAYS", true),
			DismissConsent:  envBoolOr("HOTELSCOUT_DISMISS_CONSENT", true),
			TriggerLazyLoad: envBoolOr("HOTELSCOUT_TRIGGER_LAZY", true),
			BlockedResourceTypes: envSliceOr("HOTELSCOUT_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			MinDelay:          envDurationOr("HOTELSCOUT_MIN_DELAY", 250*time.Millisecond),
			MaxDelay:          envDurationOr("HOTELSCOUT_MAX_DELAY", 1200*time.Millisecond),
			ScrollSteps:       envIntOr("HOTELSCOUT_SCROLL_STEPS", 4),
			HydrationSelector: envOr("HOTELSCOUT_HYDRATION_SELECTOR", `[data-testid="property-card"]`),
			HydrationMinItems: envIntOr("HOTELSCOUT_HYDRATION_MIN_ITEMS", 3),
			HydrationTimeout:  envDurationOr("HOTELSCOUT_HYDRATION_TIMEOUT", 6*time.Second),
		},
		Scraper: ScraperConfig{
			RenderTimeout:     envDurationOr("HOTELSCOUT_RENDER_TIMEOUT", 45*time.Second),
			NavigationTimeout: envDurationOr("HOTELSCOUT_NAV_TIMEOUT", 20*time.Second),
			DisableFailover:   envBoolOr("HOTELSCOUT_DISABLE_FAILOVER", false),
		},
		Validation: ValidationConfig{
			MinContentLength: envIntOr("HOTELSCOUT_MIN_CONTENT_LENGTH", 20000),
			BlockedTitleMarkers: envSliceOr("HOTELSCOUT_BLOCKED_TITLES", []string{
				"access denied", "attention required", "just a moment", "robot check",
			}),
			RobotTextMarkers: envSliceOr("HOTELSCOUT_ROBOT_MARKERS", []string{
				"verify you are a human", "are you a robot", "captcha",
			}),
			ErrorURLMarkers: envSliceOr("HOTELSCOUT_ERROR_URLS", []string{
				"searchresults_error", "/errors/", "error.html",
			}),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("HOTELSCOUT_AUTH_ENABLED", false),
			APIKeys: envSliceOr("HOTELSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("HOTELSCOUT_RATE_RPS", 2.0),
			Burst:             envIntOr("HOTELSCOUT_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("HOTELSCOUT_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("HOTELSCOUT_LOG_LEVEL", "info"),
			Format: envOr("HOTELSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
