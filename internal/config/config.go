// Package config loads tool configuration from file, environment, and
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration surface.
type Config struct {
	// OCR provider
	APIKey       string  `mapstructure:"api_key" yaml:"api_key"`
	Model        string  `mapstructure:"model" yaml:"model"`
	BaseURL      string  `mapstructure:"base_url" yaml:"base_url"`
	RateLimitRPM int     `mapstructure:"rate_limit_rpm" yaml:"rate_limit_rpm"`

	// Download
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	DownloadDir     string `mapstructure:"download_dir" yaml:"download_dir"`

	// Batch orchestration
	MaxConcurrentFiles int     `mapstructure:"max_concurrent_files" yaml:"max_concurrent_files"`
	MaxRetries         int     `mapstructure:"max_retries" yaml:"max_retries"`
	RetryBaseDelay     float64 `mapstructure:"retry_base_delay" yaml:"retry_base_delay"`
	RetryBackoffFactor float64 `mapstructure:"retry_backoff_factor" yaml:"retry_backoff_factor"`
	MaxRetryDelay      float64 `mapstructure:"max_retry_delay" yaml:"max_retry_delay"`
	JitterFraction     float64 `mapstructure:"jitter_fraction" yaml:"jitter_fraction"`

	// Output
	OutputFile string `mapstructure:"output_file" yaml:"output_file"`
	Quiet      bool   `mapstructure:"quiet" yaml:"quiet"`
}

// Load reads configuration from the given file (or the default search
// path when empty), environment variables with the PASSTRACT prefix, and
// built-in defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	// Keys without a non-zero default still need one registered, or
	// AutomaticEnv will not surface their PASSTRACT_* values during
	// Unmarshal.
	v.SetDefault("api_key", "")
	v.SetDefault("credentials_file", "")
	v.SetDefault("quiet", false)
	v.SetDefault("model", defaults.Model)
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("rate_limit_rpm", defaults.RateLimitRPM)
	v.SetDefault("download_dir", defaults.DownloadDir)
	v.SetDefault("max_concurrent_files", defaults.MaxConcurrentFiles)
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("retry_base_delay", defaults.RetryBaseDelay)
	v.SetDefault("retry_backoff_factor", defaults.RetryBackoffFactor)
	v.SetDefault("max_retry_delay", defaults.MaxRetryDelay)
	v.SetDefault("jitter_fraction", defaults.JitterFraction)
	v.SetDefault("output_file", defaults.OutputFile)

	v.SetEnvPrefix("PASSTRACT")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.passtract")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// An explicit --config path that doesn't exist is an error;
			// a missing default config file is not.
			if cfgFile != "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The original tool's env var still works as a fallback.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key not set (use PASSTRACT_API_KEY or GEMINI_API_KEY)")
	}
	if c.MaxConcurrentFiles <= 0 {
		return fmt.Errorf("max_concurrent_files must be positive, got %d", c.MaxConcurrentFiles)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry_base_delay must be positive, got %v", c.RetryBaseDelay)
	}
	if c.RetryBackoffFactor < 1 {
		return fmt.Errorf("retry_backoff_factor must be at least 1, got %v", c.RetryBackoffFactor)
	}
	if c.MaxRetryDelay < c.RetryBaseDelay {
		return fmt.Errorf("max_retry_delay must be at least retry_base_delay")
	}
	if c.JitterFraction < 0 || c.JitterFraction > 1 {
		return fmt.Errorf("jitter_fraction must be in [0, 1], got %v", c.JitterFraction)
	}
	return nil
}

// RetryBaseDelayDuration returns the base delay as a duration.
func (c *Config) RetryBaseDelayDuration() time.Duration {
	return time.Duration(c.RetryBaseDelay * float64(time.Second))
}

// MaxRetryDelayDuration returns the delay cap as a duration.
func (c *Config) MaxRetryDelayDuration() time.Duration {
	return time.Duration(c.MaxRetryDelay * float64(time.Second))
}
