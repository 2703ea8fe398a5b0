package config

// FitConfig configures the Google Fit source and the stored OAuth token.
type FitConfig struct {
	// TokenFile holds the token bundle written after the OAuth consent flow.
	TokenFile string `yaml:"token_file"`
	// ClientID and ClientSecret are only needed to refresh expired tokens.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// Endpoint overrides the REST base URL.
	Endpoint string `yaml:"endpoint,omitempty"`
	Timeout  string `yaml:"timeout"`
}

// ReportConfig holds report defaults.
type ReportConfig struct {
	// DefaultDays is the window length used when no start date is given.
	DefaultDays int `yaml:"default_days"`
	// IncludeHeartRate adds daily heart-rate summaries to activity reports.
	IncludeHeartRate bool `yaml:"include_heart_rate"`
	// UsageFile records generation token usage. Empty disables tracking.
	UsageFile string `yaml:"usage_file"`
}
