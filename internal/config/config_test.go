package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	// Run from an empty directory so no stray config.yaml is picked up.
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v, want defaults", err)
	}

	if cfg.Dataset.APIURL != "https://data.gov.tw/api/v2/rest/dataset/14718" {
		t.Errorf("Dataset.APIURL = %q", cfg.Dataset.APIURL)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("Output.Dir = %q, want output", cfg.Output.Dir)
	}
	if cfg.Output.LatestFile != "taiwan_gov_calendar_no_weekend.ics" {
		t.Errorf("Output.LatestFile = %q", cfg.Output.LatestFile)
	}
	if cfg.Calendar.Timezone != "Asia/Taipei" {
		t.Errorf("Calendar.Timezone = %q, want Asia/Taipei", cfg.Calendar.Timezone)
	}
	if got := cfg.Dataset.GetHTTPTimeout(); got != 30*time.Second {
		t.Errorf("GetHTTPTimeout() = %v, want 30s", got)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
dataset:
  api_url: https://example.gov.tw/api/dataset/1
  http_timeout: 5s
output:
  dir: /tmp/cal-out
calendar:
  name: test calendar
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dataset.APIURL != "https://example.gov.tw/api/dataset/1" {
		t.Errorf("Dataset.APIURL = %q", cfg.Dataset.APIURL)
	}
	if got := cfg.Dataset.GetHTTPTimeout(); got != 5*time.Second {
		t.Errorf("GetHTTPTimeout() = %v, want 5s", got)
	}
	if cfg.Output.Dir != "/tmp/cal-out" {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
	// Unset values keep their defaults.
	if cfg.Output.LatestFile != "taiwan_gov_calendar_no_weekend.ics" {
		t.Errorf("Output.LatestFile = %q, want default", cfg.Output.LatestFile)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with explicit missing path succeeded, want error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Valid defaults", func(c *Config) {}, false},
		{"Missing API URL", func(c *Config) { c.Dataset.APIURL = "" }, true},
		{"Negative rate limit", func(c *Config) { c.Dataset.RateLimitQPS = -1 }, true},
		{"Missing output dir", func(c *Config) { c.Output.Dir = "" }, true},
		{"Bad timeout", func(c *Config) { c.Dataset.HTTPTimeout = "soon" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Dataset: DatasetConfig{
					APIURL:       "https://data.gov.tw/api/v2/rest/dataset/14718",
					HTTPTimeout:  "30s",
					RateLimitQPS: 2,
				},
				Output:   OutputConfig{Dir: "output", LatestFile: "latest.ics"},
				Calendar: CalendarConfig{Name: "cal", Timezone: "Asia/Taipei"},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
