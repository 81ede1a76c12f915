// Package project manages the on-disk layout of a book project: the
// book_config.yaml, the manuscript skeleton, and the output directories
// the other commands write into.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BookConfigName is the per-project configuration file name
const BookConfigName = "book_config.yaml"

// BookConfig is the per-project configuration stored at the book root
type BookConfig struct {
	Book        BookMeta         `yaml:"book"`
	Research    ResearchPlan     `yaml:"research"`
	Benchmarks  []string         `yaml:"benchmarks"`
	Experiments ExperimentLedger `yaml:"experiments"`
	Writing     WritingStyle     `yaml:"writing"`
	Citations   CitationRules    `yaml:"citations"`
	Validation  ValidationRules  `yaml:"validation"`
}

// BookMeta describes the book itself
type BookMeta struct {
	Title          string `yaml:"title"`
	Subtitle       string `yaml:"subtitle"`
	Author         string `yaml:"author"`
	Topic          string `yaml:"topic"`
	TargetWords    int    `yaml:"target_words"`
	TargetPages    int    `yaml:"target_pages"`
	TargetChapters int    `yaml:"target_chapters"`
}

// ResearchPlan lists the literature databases and keywords to search
type ResearchPlan struct {
	Databases []string `yaml:"databases"`
	Keywords  []string `yaml:"keywords"`
}

// ExperimentLedger tracks planned and completed experiments
type ExperimentLedger struct {
	Planned   []string `yaml:"planned"`
	Completed []string `yaml:"completed"`
}

// WritingStyle controls chapter voice
type WritingStyle struct {
	Tone    string       `yaml:"tone"`
	Style   string       `yaml:"style"`
	Balance StyleBalance `yaml:"balance"`
}

// StyleBalance is the technical/narrative split in percent
type StyleBalance struct {
	Technical int `yaml:"technical"`
	Narrative int `yaml:"narrative"`
}

// CitationRules sets the citation format requirements
type CitationRules struct {
	Style         string `yaml:"style"`
	MinPerChapter int    `yaml:"min_per_chapter"`
}

// ValidationRules controls the argument validator
type ValidationRules struct {
	CheckLogicalFallacies  bool `yaml:"check_logical_fallacies"`
	RequireEvidence        bool `yaml:"require_evidence"`
	FlagAbsoluteStatements bool `yaml:"flag_absolute_statements"`
}

// LoadBookConfig reads the project configuration from a book directory
func LoadBookConfig(bookDir string) (*BookConfig, error) {
	path := filepath.Join(bookDir, BookConfigName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found in %s (run 'bookforge init' first)", BookConfigName, bookDir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg BookConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes the project configuration to a book directory
func (c *BookConfig) Save(bookDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal book config: %w", err)
	}

	path := filepath.Join(bookDir, BookConfigName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (c *BookConfig) applyDefaults() {
	if c.Book.TargetWords == 0 {
		c.Book.TargetWords = 75000
	}
	if c.Book.TargetChapters == 0 {
		c.Book.TargetChapters = 12
	}
	if c.Writing.Balance.Technical == 0 && c.Writing.Balance.Narrative == 0 {
		c.Writing.Balance = StyleBalance{Technical: 60, Narrative: 40}
	}
	if c.Citations.Style == "" {
		c.Citations.Style = "apa"
	}
	if c.Citations.MinPerChapter == 0 {
		c.Citations.MinPerChapter = 10
	}
}
