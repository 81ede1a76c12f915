package internal

import (
	"fmt"
	"os"

	"github.com/bookforge/bookforge/internal/config"
)

// LoadConfig reads the tool configuration, from an explicit path when
// one was given and the default location otherwise
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// PrintConfigExample writes a starter configuration to stderr
func PrintConfigExample() {
	homeDir, _ := os.UserHomeDir()
	configPath := fmt.Sprintf("%s/.bookforge/config/bookforge.yaml", homeDir)

	fmt.Fprintf(os.Stderr, `Create a configuration file at %s:

embedding:
  # Provider: "local" (no API key needed), "openai" or "volcengine"
  provider: local
  dimensions: 512

generation:
  # Fallback order: first provider that succeeds wins
  providers: [claude, gemini]
  max_tokens: 8000
  timeout_seconds: 120

Usage:
  1. Create the config file (or run without one for defaults)
  2. Scaffold a project: bookforge init -title "Your Book"
  3. Draft: bookforge write-chapter -chapter 1 -title "..." -outline outline.md
`, configPath)
}
