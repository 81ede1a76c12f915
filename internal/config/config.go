package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding,omitempty"`
	Generation GenerationConfig `yaml:"generation,omitempty"`
	Coherence  CoherenceConfig  `yaml:"coherence,omitempty"`
	Research   ResearchConfig   `yaml:"research,omitempty"`
	Search     SearchConfig     `yaml:"search,omitempty"`
	Export     ExportConfig     `yaml:"export,omitempty"`
}

// EmbeddingConfig holds embedding backend configuration
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "local" | "openai" | "volcengine"

	// VolcEngine specific
	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`

	// OpenAI specific
	OpenAIAPIKey string `yaml:"openai_api_key,omitempty"`
	OpenAIModel  string `yaml:"openai_model,omitempty"`

	// Embedding parameters
	Dimensions int `yaml:"dimensions,omitempty"`
	BatchSize  int `yaml:"batch_size,omitempty"`
}

// GenerationConfig holds text-generation backend configuration.
// Providers lists backends in fallback order; each entry is
// "claude", "gemini" or "ark".
type GenerationConfig struct {
	Providers      []string  `yaml:"providers,omitempty"`
	ClaudeBin      string    `yaml:"claude_bin,omitempty"`
	GeminiBin      string    `yaml:"gemini_bin,omitempty"`
	MaxTokens      int       `yaml:"max_tokens,omitempty"`
	TimeoutSeconds int       `yaml:"timeout_seconds,omitempty"`
	Ark            ArkConfig `yaml:"ark,omitempty"`
}

// ArkConfig holds the HTTP chat-completions provider configuration
type ArkConfig struct {
	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// CoherenceConfig bounds the cross-chapter context assembly
type CoherenceConfig struct {
	MaxContextChapters int `yaml:"max_context_chapters,omitempty"` // Chapters quoted per prompt
	MaxContextChars    int `yaml:"max_context_chars,omitempty"`    // Upper bound on context block size
	MaxEmbedChars      int `yaml:"max_embed_chars,omitempty"`      // Content excerpt length for embedding
	SynopsisSentences  int `yaml:"synopsis_sentences,omitempty"`   // Sentences kept per chapter synopsis
}

// ResearchConfig holds literature search configuration
type ResearchConfig struct {
	ArxivEndpoint string `yaml:"arxiv_endpoint,omitempty"`
	MaxResults    int    `yaml:"max_results,omitempty"`
}

// SearchConfig holds manuscript search configuration
type SearchConfig struct {
	DefaultTopK   int     `yaml:"default_top_k,omitempty"`
	VectorWeight  float32 `yaml:"vector_weight,omitempty"`
	KeywordWeight float32 `yaml:"keyword_weight,omitempty"`
}

// ExportConfig holds manuscript export configuration
type ExportConfig struct {
	PandocBin string `yaml:"pandoc_bin,omitempty"`
	PDFEngine string `yaml:"pdf_engine,omitempty"`
}

// Default returns a configuration with all defaults applied.
// The default embedding provider is the local hashing encoder, so the
// tool is usable without any API keys.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the default config file.
// Default location: ~/.bookforge/config/bookforge.yaml.
// A missing default config is not an error: defaults apply.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".bookforge", "config", "bookforge.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(configPath)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			homeDir, _ := os.UserHomeDir()
			defaultPath := filepath.Join(homeDir, ".bookforge", "config", "bookforge.yaml")
			return nil, &ConfigNotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigNotFoundError is returned when an explicitly requested config file
// is not found
type ConfigNotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag\n"+
		"  3. Run without a config file to use the built-in defaults",
		e.RequestedPath, e.DefaultPath)
}

// IsConfigNotFound checks if error is config not found
func IsConfigNotFound(err error) bool {
	_, ok := err.(*ConfigNotFoundError)
	return ok
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.Dimensions == 0 {
		if c.Embedding.Provider == "local" {
			c.Embedding.Dimensions = 512
		} else {
			c.Embedding.Dimensions = 1536
		}
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 10
	}

	if len(c.Generation.Providers) == 0 {
		c.Generation.Providers = []string{"claude", "gemini"}
	}
	if c.Generation.ClaudeBin == "" {
		c.Generation.ClaudeBin = "claude"
	}
	if c.Generation.GeminiBin == "" {
		c.Generation.GeminiBin = "gemini"
	}
	if c.Generation.MaxTokens == 0 {
		c.Generation.MaxTokens = 8000
	}
	if c.Generation.TimeoutSeconds == 0 {
		c.Generation.TimeoutSeconds = 120
	}
	if c.Generation.Ark.Endpoint == "" {
		c.Generation.Ark.Endpoint = "https://ark.cn-beijing.volces.com/api/v3/chat/completions"
	}
	if c.Generation.Ark.Model == "" {
		c.Generation.Ark.Model = "doubao-1-5-pro-32k-250115"
	}

	if c.Coherence.MaxContextChapters == 0 {
		c.Coherence.MaxContextChapters = 3
	}
	if c.Coherence.MaxContextChars == 0 {
		c.Coherence.MaxContextChars = 2400
	}
	if c.Coherence.MaxEmbedChars == 0 {
		c.Coherence.MaxEmbedChars = 6000
	}
	if c.Coherence.SynopsisSentences == 0 {
		c.Coherence.SynopsisSentences = 3
	}

	if c.Research.ArxivEndpoint == "" {
		c.Research.ArxivEndpoint = "https://export.arxiv.org/api/query"
	}
	if c.Research.MaxResults == 0 {
		c.Research.MaxResults = 25
	}

	if c.Search.DefaultTopK == 0 {
		c.Search.DefaultTopK = 10
	}
	if c.Search.VectorWeight == 0 && c.Search.KeywordWeight == 0 {
		c.Search.VectorWeight = 0.6
		c.Search.KeywordWeight = 0.4
	}

	if c.Export.PandocBin == "" {
		c.Export.PandocBin = "pandoc"
	}
	if c.Export.PDFEngine == "" {
		c.Export.PDFEngine = "xelatex"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "local":
		// No credentials required
	case "volcengine":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("volcengine embedding provider requires api_key")
		}
	case "openai":
		if c.Embedding.OpenAIAPIKey == "" {
			return fmt.Errorf("openai embedding provider requires openai_api_key")
		}
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got: %d", c.Embedding.Dimensions)
	}

	if len(c.Generation.Providers) == 0 {
		return fmt.Errorf("generation requires at least one provider")
	}
	for _, p := range c.Generation.Providers {
		switch strings.TrimSpace(p) {
		case "claude", "gemini":
		case "ark":
			if c.Generation.Ark.APIKey == "" {
				return fmt.Errorf("ark generation provider requires ark.api_key")
			}
		default:
			return fmt.Errorf("unsupported generation provider: %s", p)
		}
	}

	return nil
}

// SaveToFile saves the configuration to a specific file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

const defaultConfigTemplate = `# bookforge configuration
#
# Copy and edit this file for your environment.
# Default location: $HOME/.bookforge/config/bookforge.yaml

embedding:
  # Provider: "local" (no API key needed), "openai" or "volcengine"
  provider: local
  dimensions: 512

  # OpenAI configuration (alternative)
  # provider: openai
  # openai_api_key: your-openai-api-key
  # openai_model: text-embedding-3-small
  # dimensions: 1536

generation:
  # Fallback order: first provider that succeeds wins
  providers: [claude, gemini]
  max_tokens: 8000
  timeout_seconds: 120

  # HTTP chat-completions provider (alternative to the CLIs)
  # providers: [ark]
  # ark:
  #   api_key: your-ark-api-key
  #   model: doubao-1-5-pro-32k-250115
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
