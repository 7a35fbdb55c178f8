package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Engine names for FETCH_ENGINE and MEASURE_ENGINE.
const (
	EngineChrome    = "chrome"
	EngineStatic    = "static"
	EnginePageSpeed = "pagespeed"
)

// LLM providers for LLM_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config holds application configuration
type Config struct {
	// Server
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string

	// API docs
	APITitle       string
	APIDescription string
	APIVersion     string

	// Engines
	FetchEngine    string
	MeasureEngine  string
	FetchTimeout   time.Duration
	MeasureTimeout time.Duration

	// Browser
	ChromePath      string
	BrowserHeadless bool
	BrowserTabRate  float64
	UserAgent       string

	// PageSpeed Insights
	PageSpeedURL      string
	PageSpeedAPIKey   string
	PageSpeedStrategy string

	// LLM
	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	LLMTimeout   time.Duration

	// Logging
	LogLevel string
}

// NewConfig creates a new configuration from environment variables
func NewConfig() *Config {
	return &Config{
		// Server
		Port:         getEnv("PORT", "8000"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		ReadTimeout:  getEnvSeconds("READ_TIMEOUT", 10),
		WriteTimeout: getEnvSeconds("WRITE_TIMEOUT", 120),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),

		APITitle:       getEnv("API_TITLE", "CRO Optimizer API"),
		APIDescription: getEnv("API_DESCRIPTION", "Conversion rate optimization and performance scoring for web pages"),
		APIVersion:     getEnv("API_VERSION", "1.0.0"),

		// Engines
		FetchEngine:    strings.ToLower(getEnv("FETCH_ENGINE", EngineChrome)),
		MeasureEngine:  strings.ToLower(getEnv("MEASURE_ENGINE", EngineChrome)),
		FetchTimeout:   getEnvSeconds("FETCH_TIMEOUT", 15),
		MeasureTimeout: getEnvSeconds("MEASURE_TIMEOUT", 30),

		// Browser
		ChromePath:      getEnv("CHROME_PATH", ""),
		BrowserHeadless: getEnvBool("BROWSER_HEADLESS", true),
		BrowserTabRate:  getEnvFloat("BROWSER_TAB_RATE", 4),
		UserAgent:       getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),

		// PageSpeed
		PageSpeedURL:      getEnv("PAGESPEED_URL", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"),
		PageSpeedAPIKey:   getEnv("PAGESPEED_API_KEY", ""),
		PageSpeedStrategy: strings.ToLower(getEnv("PAGESPEED_STRATEGY", "desktop")),

		// LLM
		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:   getEnvSeconds("LLM_TIMEOUT", 20),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("port must be numeric: %q", c.Port)
	}
	if c.FetchEngine != EngineChrome && c.FetchEngine != EngineStatic {
		return fmt.Errorf("fetch engine must be chrome or static, got %q", c.FetchEngine)
	}
	switch c.MeasureEngine {
	case EngineChrome, EngineStatic, EnginePageSpeed:
	default:
		return fmt.Errorf("measure engine must be chrome, static or pagespeed, got %q", c.MeasureEngine)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.MeasureTimeout <= 0 {
		return fmt.Errorf("measure timeout must be positive")
	}
	if c.BrowserTabRate <= 0 {
		return fmt.Errorf("browser tab rate must be positive")
	}
	if c.PageSpeedStrategy != "desktop" && c.PageSpeedStrategy != "mobile" {
		return fmt.Errorf("pagespeed strategy must be desktop or mobile")
	}
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("llm provider must be gemini, openai or none, got %q", c.LLMProvider)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// UsesChrome reports whether any engine needs a local browser.
func (c *Config) UsesChrome() bool {
	return c.FetchEngine == EngineChrome || c.MeasureEngine == EngineChrome
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ParseLevel converts LOG_LEVEL into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log level must be debug, info, warn or error, got %q", s)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	seconds, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		seconds = defaultValue
	}
	return time.Duration(seconds) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
