package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
// The service is stateless: every request carries its own progression.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	CloudWatchEnabled bool   // Overrides the production-only default for CloudWatch metrics

	// HTTP
	AllowedOrigins []string // CORS origins, "*" allows all

	// Grammar
	DefaultBeatsPerBar  int  // Beats per bar when the request omits it
	MaxGridSubdivisions int  // Chords allowed inside one grid beat
	MaxGridBars         int  // Longest rendered grid, in bars
	MaxSlots            int  // Longest progression a request may carry
	MaxDepth            int  // Upper bound on generations per suggest request
	ParallelRules       bool // Evaluate rules concurrently
}

const (
	defaultBeatsPerBar         = 4
	defaultMaxGridSubdivisions = 4
	defaultMaxGridBars         = 64
	defaultMaxSlots            = 32
	defaultMaxDepth            = 3
)

func Load() *Config {
	return &Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		Port:                getEnv("PORT", "8080"),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		CloudWatchEnabled:   getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "*")),
		DefaultBeatsPerBar:  getEnvInt("DEFAULT_BEATS_PER_BAR", defaultBeatsPerBar),
		MaxGridSubdivisions: getEnvInt("MAX_GRID_SUBDIVISIONS", defaultMaxGridSubdivisions),
		MaxGridBars:         getEnvInt("MAX_GRID_BARS", defaultMaxGridBars),
		MaxSlots:            getEnvInt("MAX_SLOTS", defaultMaxSlots),
		MaxDepth:            getEnvInt("MAX_DEPTH", defaultMaxDepth),
		ParallelRules:       getEnv("PARALLEL_RULES", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to the default for unset, malformed, or non-positive values.
func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowsAllOrigins is true when CORS is left open.
func (c *Config) AllowsAllOrigins() bool {
	return len(c.AllowedOrigins) == 0 || (len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*")
}
