package config

// GenerationConfig configures the text generation client.
type GenerationConfig struct {
	Provider        string  `yaml:"provider"` // gemini
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	Timeout         string  `yaml:"timeout"` // bounds one generation call
}
