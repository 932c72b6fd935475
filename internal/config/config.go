package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. It is loaded once at startup,
// validated, and passed read-only to each component at construction time.
type Config struct {
	// GCP / Gemini credentials.
	ProjectID    string
	Location     string
	UseVertexAI  bool
	GeminiAPIKey string

	// Bucket is the default bucket for destination uploads and the startup
	// accessibility probe. Source URIs carry their own bucket.
	Bucket string

	Model       string
	Development bool
	Address     string

	// Pipeline limits.
	MaxPages        int
	RenderDPI       float64
	PageConcurrency int
	MaxRetries      int

	// CallTimeout bounds each external call (storage download, one page
	// inference attempt). RequestTimeout bounds the whole pipeline run.
	CallTimeout    time.Duration
	RequestTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored for local development but is never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ProjectID:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		Location:     getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		UseVertexAI:  getEnvBool("GOOGLE_GENAI_USE_VERTEXAI", true),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		Bucket:       getEnv("GOOGLE_CLOUD_BUCKET", ""),
		Model:        getEnv("GOOGLE_GEMINI_MODEL", "gemini-2.0-flash"),
		Development:  getEnvBool("DEVELOPMENT", false),
		Address:      getEnv("ADDRESS", ":8080"),

		MaxPages:        getEnvInt("MAX_PDF_PAGES", 300),
		RenderDPI:       getEnvFloat("RENDER_DPI", 150),
		PageConcurrency: getEnvInt("PAGE_CONCURRENCY", 8),
		MaxRetries:      getEnvInt("EXTRACT_MAX_RETRIES", 4),

		CallTimeout:    getEnvDuration("CALL_TIMEOUT", 2*time.Minute),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("GOOGLE_CLOUD_BUCKET environment variable must be set")
	}
	if c.UseVertexAI && c.ProjectID == "" {
		return fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable must be set when GOOGLE_GENAI_USE_VERTEXAI is enabled")
	}
	if !c.UseVertexAI && c.GeminiAPIKey == "" {
		return fmt.Errorf("either GOOGLE_GENAI_USE_VERTEXAI must be enabled or GEMINI_API_KEY must be set")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("MAX_PDF_PAGES must be at least 1, got %d", c.MaxPages)
	}
	if c.PageConcurrency < 1 {
		return fmt.Errorf("PAGE_CONCURRENCY must be at least 1, got %d", c.PageConcurrency)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("EXTRACT_MAX_RETRIES must be at least 1, got %d", c.MaxRetries)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
