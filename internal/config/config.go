package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "fitreport.yaml"

// Config holds all fitreport configuration. It is loaded once and passed
// explicitly to the components that need it.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Text generation service
	Generation GenerationConfig `yaml:"generation"`

	// Google Fit source and credentials
	Fit FitConfig `yaml:"fit"`

	// Report defaults
	Report ReportConfig `yaml:"report"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "fitreport",
		Version: "0.3.0",

		Generation: GenerationConfig{
			Provider:        "gemini",
			Model:           "gemini-2.5-flash",
			Temperature:     0.4,
			MaxOutputTokens: 2048,
			Timeout:         "60s",
		},

		Fit: FitConfig{
			TokenFile: "token.json",
			Timeout:   "30s",
		},

		Report: ReportConfig{
			DefaultDays:      7,
			IncludeHeartRate: true,
			UsageFile:        "usage.json",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file. The file may hold secrets, so it
// is written owner-only.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generation.APIKey = key
		c.Generation.Provider = "gemini"
	}
	if model := os.Getenv("FITREPORT_MODEL"); model != "" {
		c.Generation.Model = model
	}

	if path := os.Getenv("FITREPORT_TOKEN_FILE"); path != "" {
		c.Fit.TokenFile = path
	}
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		c.Fit.ClientID = id
	}
	if secret := os.Getenv("GOOGLE_CLIENT_SECRET"); secret != "" {
		c.Fit.ClientSecret = secret
	}

	if level := os.Getenv("FITREPORT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetGenerationTimeout returns the text generation timeout as a duration.
func (c *Config) GetGenerationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Generation.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// GetFitTimeout returns the per-query Fit timeout as a duration.
func (c *Config) GetFitTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fit.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ValidProviders lists the supported text generation providers.
var ValidProviders = []string{"gemini"}

// Validate validates the configuration needed to build a report.
func (c *Config) Validate() error {
	if c.Generation.APIKey == "" {
		return fmt.Errorf("generation API key not configured (set GEMINI_API_KEY or run `fitreport config init`)")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.Generation.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid generation provider: %s (valid: %v)", c.Generation.Provider, ValidProviders)
	}

	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation temperature %.2f out of range [0, 2]", c.Generation.Temperature)
	}
	if c.Fit.TokenFile == "" {
		return fmt.Errorf("fit token file not configured (set fit.token_file or FITREPORT_TOKEN_FILE)")
	}
	if c.Report.DefaultDays < 1 {
		return fmt.Errorf("report default_days must be at least 1, got %d", c.Report.DefaultDays)
	}

	return nil
}
