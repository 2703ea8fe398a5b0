package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv keeps the developer's environment out of the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "FITREPORT_MODEL", "FITREPORT_TOKEN_FILE",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "FITREPORT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "fitreport", cfg.Name)
	assert.Equal(t, "gemini", cfg.Generation.Provider)
	assert.Equal(t, 7, cfg.Report.DefaultDays)
	assert.Equal(t, 60*time.Second, cfg.GetGenerationTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetFitTimeout())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_MissingFileStillAppliesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Generation.APIKey)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "fitreport.yaml")

	cfg := DefaultConfig()
	cfg.Generation.APIKey = "sk-test"
	cfg.Fit.TokenFile = "/secrets/token.json"
	cfg.Logging.Categories = map[string]bool{"fitness": false}
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "fitreport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generation:\n  model: gemini-2.5-pro\n  timeout: 90s\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.Generation.Model)
	assert.Equal(t, 90*time.Second, cfg.GetGenerationTimeout())
	assert.Equal(t, "gemini", cfg.Generation.Provider)
	assert.Equal(t, "token.json", cfg.Fit.TokenFile)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "fitreport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generation: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("FITREPORT_MODEL", "gemini-2.5-pro")
	t.Setenv("FITREPORT_TOKEN_FILE", "/tmp/tok.json")
	t.Setenv("GOOGLE_CLIENT_ID", "cid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "csecret")
	t.Setenv("FITREPORT_LOG_LEVEL", "debug")

	cfg := &Config{Generation: GenerationConfig{Provider: "other"}}
	cfg.applyEnvOverrides()

	assert.Equal(t, "gem-key", cfg.Generation.APIKey)
	assert.Equal(t, "gemini", cfg.Generation.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Generation.Model)
	assert.Equal(t, "/tmp/tok.json", cfg.Fit.TokenFile)
	assert.Equal(t, "cid", cfg.Fit.ClientID)
	assert.Equal(t, "csecret", cfg.Fit.ClientSecret)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generation.Timeout = "soon"
	cfg.Fit.Timeout = "-5s"
	assert.Equal(t, 60*time.Second, cfg.GetGenerationTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetFitTimeout())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Generation.APIKey = "key"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing key", func(c *Config) { c.Generation.APIKey = "" }, "API key not configured"},
		{"bad provider", func(c *Config) { c.Generation.Provider = "zai" }, "invalid generation provider"},
		{"bad temperature", func(c *Config) { c.Generation.Temperature = 3 }, "temperature"},
		{"no token file", func(c *Config) { c.Fit.TokenFile = "" }, "token file"},
		{"zero days", func(c *Config) { c.Report.DefaultDays = 0 }, "default_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoggingConfig_Options(t *testing.T) {
	opts := LoggingConfig{Level: "warn", Format: "json", File: "x.log", Categories: map[string]bool{"audit": false}}.Options()
	assert.Equal(t, "warn", opts.Level)
	assert.Equal(t, "x.log", opts.File)
	assert.False(t, opts.Categories["audit"])
}
