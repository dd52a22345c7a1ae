// Package config provides configuration management for the notfollowingback service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names understood by APP_ENV.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Desktop Chrome 122 user agents. The Linux one matches what container
// deployments actually run; the Windows one is used for local runs.
const (
	UserAgentLinux   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	UserAgentWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// budgetSafetyMargin is left free for login and response assembly when the
// scrape budget is clamped to REQUEST_MAX_DURATION.
const budgetSafetyMargin = 10 * time.Second

// Config holds all configuration for the service.
type Config struct {
	// Server settings
	Port      int
	LogLevel  string
	LogFormat string // text, json or "" for TTY detection
	Env       string

	// Browser settings
	Headless             bool
	ChromePath           string
	ProxyServer          string
	UserAgent            string
	WindowWidth          int
	WindowHeight         int
	BrowserMaxIdle       time.Duration // force recycle on acquire
	BrowserIdleRecycle   time.Duration // recycle from the background sweep
	BrowserSweepInterval time.Duration
	LeaseWaitTimeout     time.Duration

	// Login settings
	ChallengeWait time.Duration

	// Scrape settings
	ScrapeTimeBudget      time.Duration
	ScrapeMaxIterations   int
	ScrapeSaturationLimit int
	ScrapeRichRows        bool
	RequestMaxDuration    time.Duration

	// Pacing
	RequestDelayMin time.Duration
	RequestDelayMax time.Duration
	ScrollDelayMin  time.Duration
	ScrollDelayMax  time.Duration

	// Not enforced unless > 0
	MaxRequestsPerHour int

	// Authentication
	APIJWTSecret         string
	AllowUnauthenticated bool

	// Run journal
	RunDBPath string

	// Debugging
	DebugScreenshots bool
}

// Load creates a Config from environment variables with sensible defaults.
func Load() *Config {
	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))
	prod := env == EnvProduction

	defaultUA := UserAgentWindows
	defaultBudget := 300 * time.Second
	defaultChallengeWait := 180 * time.Second
	if prod {
		defaultUA = UserAgentLinux
		defaultBudget = 600 * time.Second
		defaultChallengeWait = 30 * time.Second
	}

	return &Config{
		Port:                  getEnvInt("PORT", 3000),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", ""),
		Env:                   env,
		Headless:              getEnvBool("HEADLESS", prod),
		ChromePath:            getEnv("CHROME_PATH", ""),
		ProxyServer:           getEnv("PROXY_SERVER", ""),
		UserAgent:             getEnv("USER_AGENT", defaultUA),
		WindowWidth:           getEnvInt("WINDOW_WIDTH", 1920),
		WindowHeight:          getEnvInt("WINDOW_HEIGHT", 1080),
		BrowserMaxIdle:        getEnvDuration("BROWSER_MAX_IDLE", 3*time.Hour),
		BrowserIdleRecycle:    getEnvDuration("BROWSER_IDLE_RECYCLE", 30*time.Minute),
		BrowserSweepInterval:  getEnvDuration("BROWSER_SWEEP_INTERVAL", 5*time.Minute),
		LeaseWaitTimeout:      getEnvDuration("LEASE_WAIT_TIMEOUT", 2*time.Minute),
		ChallengeWait:         getEnvDuration("CHALLENGE_WAIT", defaultChallengeWait),
		ScrapeTimeBudget:      getEnvDuration("SCRAPE_TIME_BUDGET", defaultBudget),
		ScrapeMaxIterations:   getEnvInt("SCRAPE_MAX_ITERATIONS", 300),
		ScrapeSaturationLimit: getEnvInt("SCRAPE_SATURATION_LIMIT", 5),
		ScrapeRichRows:        getEnvBool("SCRAPE_RICH_ROWS", false),
		RequestMaxDuration:    getEnvDuration("REQUEST_MAX_DURATION", 0),
		RequestDelayMin:       getEnvDuration("REQUEST_DELAY_MIN", time.Second),
		RequestDelayMax:       getEnvDuration("REQUEST_DELAY_MAX", 2*time.Second),
		ScrollDelayMin:        getEnvDuration("SCROLL_DELAY_MIN", 200*time.Millisecond),
		ScrollDelayMax:        getEnvDuration("SCROLL_DELAY_MAX", 400*time.Millisecond),
		MaxRequestsPerHour:    getEnvInt("MAX_REQUESTS_PER_HOUR", 0),
		APIJWTSecret:          getEnv("API_JWT_SECRET", ""),
		AllowUnauthenticated:  getEnvBool("ALLOW_UNAUTHENTICATED", false),
		RunDBPath:             getEnv("RUN_DB_PATH", ""),
		DebugScreenshots:      getEnvBool("DEBUG_SCREENSHOTS", false),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// EffectiveScrapeBudget returns the wall-clock budget for one check.
// A declared REQUEST_MAX_DURATION caps it so hosted-function deployments
// return before the platform kills the request.
func (c *Config) EffectiveScrapeBudget() time.Duration {
	budget := c.ScrapeTimeBudget
	if c.RequestMaxDuration > 0 {
		limit := c.RequestMaxDuration - budgetSafetyMargin
		if limit <= 0 {
			limit = c.RequestMaxDuration / 2
		}
		if budget <= 0 || budget > limit {
			budget = limit
		}
	}
	return budget
}

// HandlerTimeout is the per-request deadline applied by the router.
func (c *Config) HandlerTimeout() time.Duration {
	if c.RequestMaxDuration > 0 {
		return c.RequestMaxDuration
	}
	// login (navigation + verification) plus both list scrapes
	return c.ScrapeTimeBudget + c.ChallengeWait + 3*time.Minute
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
