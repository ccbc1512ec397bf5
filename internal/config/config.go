package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Output   OutputConfig   `mapstructure:"output"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatasetConfig represents the data.gov.tw dataset source
type DatasetConfig struct {
	APIURL       string  `mapstructure:"api_url"`
	HTTPTimeout  string  `mapstructure:"http_timeout"`
	RateLimitQPS float64 `mapstructure:"rate_limit_qps"`
}

// OutputConfig represents where generated calendar files land
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	LatestFile string `mapstructure:"latest_file"` // top-level "current year" copy
}

// CalendarConfig represents document-level properties of emitted calendars
type CalendarConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Timezone    string `mapstructure:"timezone"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file. A missing config file is not an
// error: the tool runs on defaults with zero configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.twgov-calendar")
		v.AddConfigPath("/etc/twgov-calendar")
	}

	// Read environment variables
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.api_url", "https://data.gov.tw/api/v2/rest/dataset/14718")
	v.SetDefault("dataset.http_timeout", "30s")
	v.SetDefault("dataset.rate_limit_qps", 2.0)
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.latest_file", "taiwan_gov_calendar_no_weekend.ics")
	v.SetDefault("calendar.name", "台灣政府行事曆（移除例假日）")
	v.SetDefault("calendar.description", "台灣政府行政機關辦公日曆，已移除例假日")
	v.SetDefault("calendar.timezone", "Asia/Taipei")
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Dataset.APIURL == "" {
		return fmt.Errorf("dataset.api_url is required")
	}
	if c.Dataset.RateLimitQPS < 0 {
		return fmt.Errorf("dataset.rate_limit_qps must not be negative")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Output.LatestFile == "" {
		return fmt.Errorf("output.latest_file is required")
	}
	if c.Calendar.Name == "" {
		return fmt.Errorf("calendar.name is required")
	}
	if _, err := time.ParseDuration(c.Dataset.HTTPTimeout); c.Dataset.HTTPTimeout != "" && err != nil {
		return fmt.Errorf("dataset.http_timeout is not a duration: %w", err)
	}
	return nil
}

// GetHTTPTimeout returns the dataset HTTP timeout duration
func (c *DatasetConfig) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return duration
}
