package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:              "gemini-2.0-flash",
		BaseURL:            "https://generativelanguage.googleapis.com/v1beta/openai/",
		RateLimitRPM:       60,
		DownloadDir:        "downloads",
		MaxConcurrentFiles: 3,
		MaxRetries:         3,
		RetryBaseDelay:     1.0,
		RetryBackoffFactor: 2.0,
		MaxRetryDelay:      60.0,
		JitterFraction:     0.25,
		OutputFile:         "ocr_results.json",
	}
}

// WriteDefault writes the default configuration as a yaml file. It
// refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
