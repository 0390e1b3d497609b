// Package config loads pagemerge settings from the environment.
// Command-line flags override these values in package cmd.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/pagemerge/core/similarity"
)

// Config holds all application configuration.
type Config struct {
	OutputDir   string
	DBPath      string
	TrackJobs   bool
	Scorer      string
	PageWindow  int
	Concurrency int
	Title       string
	Log         LogConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		OutputDir:   getEnv("PAGEMERGE_OUTPUT_DIR", ""),
		DBPath:      getEnv("PAGEMERGE_DB", "pagemerge.db"),
		TrackJobs:   getEnvAsBool("PAGEMERGE_TRACK_JOBS", true),
		Scorer:      getEnv("PAGEMERGE_SCORER", similarity.NameSequence),
		PageWindow:  getEnvAsInt("PAGEMERGE_PAGE_WINDOW", 0),
		Concurrency: getEnvAsInt("PAGEMERGE_CONCURRENCY", 4),
		Title:       getEnv("PAGEMERGE_TITLE", "Merged Document"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if _, err := similarity.New(c.Scorer); err != nil {
		return fmt.Errorf("PAGEMERGE_SCORER: %w", err)
	}
	if c.PageWindow < 0 {
		return fmt.Errorf("PAGEMERGE_PAGE_WINDOW must be >= 0 (got %d)", c.PageWindow)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("PAGEMERGE_CONCURRENCY must be >= 1 (got %d)", c.Concurrency)
	}
	if c.TrackJobs && c.DBPath == "" {
		return fmt.Errorf("PAGEMERGE_DB is required when job tracking is enabled")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json (got %q)", c.Log.Format)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
