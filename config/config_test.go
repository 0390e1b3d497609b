package config

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"PAGEMERGE_OUTPUT_DIR", "PAGEMERGE_DB", "PAGEMERGE_TRACK_JOBS", "PAGEMERGE_SCORER",
		"PAGEMERGE_PAGE_WINDOW", "PAGEMERGE_CONCURRENCY", "PAGEMERGE_TITLE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.DBPath != "pagemerge.db" {
		t.Errorf("Expected default DB path, got %q", cfg.DBPath)
	}
	if !cfg.TrackJobs {
		t.Error("Expected job tracking on by default")
	}
	if cfg.Scorer != "sequence" || cfg.PageWindow != 0 || cfg.Concurrency != 4 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAGEMERGE_SCORER", "levenshtein")
	t.Setenv("PAGEMERGE_PAGE_WINDOW", "3")
	t.Setenv("PAGEMERGE_CONCURRENCY", "8")
	t.Setenv("PAGEMERGE_TRACK_JOBS", "false")
	t.Setenv("PAGEMERGE_TITLE", "Annual Report")
	t.Setenv("LOG_FORMAT", "json")

	cfg := Load()
	if cfg.Scorer != "levenshtein" || cfg.PageWindow != 3 || cfg.Concurrency != 8 {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	if cfg.TrackJobs {
		t.Error("Expected job tracking disabled")
	}
	if cfg.Title != "Annual Report" || cfg.Log.Format != "json" {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("PAGEMERGE_CONCURRENCY", "many")
	if got := Load().Concurrency; got != 4 {
		t.Errorf("Expected fallback to 4, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "unknown scorer", mutate: func(c *Config) { c.Scorer = "jaccard" }, wantErr: "PAGEMERGE_SCORER"},
		{name: "negative window", mutate: func(c *Config) { c.PageWindow = -1 }, wantErr: "PAGEMERGE_PAGE_WINDOW"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: "PAGEMERGE_CONCURRENCY"},
		{name: "tracking without db", mutate: func(c *Config) { c.DBPath = "" }, wantErr: "PAGEMERGE_DB"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "LOG_LEVEL"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				DBPath: "x.db", TrackJobs: true, Scorer: "sequence", Concurrency: 1,
				Log: LogConfig{Level: "info", Format: "text"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger() returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "pages", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected info record to be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"pages":3`) {
		t.Errorf("Expected JSON warn record, got %q", out)
	}
}
