package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitOptions configures project scaffolding
type InitOptions struct {
	Dir         string
	Title       string
	Author      string
	Topic       string
	TargetPages int
	// Keywords extend the topic preset's research keywords
	Keywords []string
}

// outputDirs are created relative to the book root
var outputDirs = []string{
	"outputs",
	"outputs/research",
	"outputs/experiment_design",
	"outputs/data_analysis",
	"outputs/figures",
	"outputs/chapters",
	"experiments",
	"data",
	"references",
	"assets",
}

// topicPreset carries topic-specific research keywords and comparable
// published books
type topicPreset struct {
	keywords   []string
	benchmarks []string
}

var topicPresets = map[string]topicPreset{
	"productivity": {
		keywords: []string{
			"developer productivity",
			"software engineering effectiveness",
			"cognitive load programming",
			"deep work developers",
			"focus and flow state",
		},
		benchmarks: []string{
			"Deep Work by Cal Newport",
			"Agilmente by Estanislao Bachrach",
			"Thinking, Fast and Slow by Daniel Kahneman",
		},
	},
	"architecture": {
		keywords: []string{
			"software architecture patterns",
			"system design principles",
			"architectural decision making",
			"technical debt management",
		},
		benchmarks: []string{
			"Clean Architecture by Robert Martin",
			"Domain-Driven Design by Eric Evans",
			"Software Architecture in Practice",
		},
	},
	"ai": {
		keywords: []string{
			"AI-assisted development",
			"developer productivity AI",
			"code generation effectiveness",
			"AI pair programming",
		},
		benchmarks: []string{
			"AI-Augmented Development (emerging topic)",
			"The Pragmatic Programmer",
			"Accelerate by Nicole Forsgren",
		},
	},
	"philosophy": {
		keywords: []string{
			"philosophy of software",
			"ethics in system design",
			"ontology software systems",
			"stoicism for engineers",
		},
		benchmarks: []string{
			"The Tao of Programming",
			"Zen and the Art of Motorcycle Maintenance",
			"Meditations by Marcus Aurelius",
		},
	},
}

// Topics lists the supported topic presets
func Topics() []string {
	return []string{"productivity", "architecture", "ai", "philosophy"}
}

// Initialize scaffolds a new book project: directory tree, project
// configuration, manuscript skeleton, experiment tracker and README.
// It refuses to overwrite an existing project.
func Initialize(opts InitOptions) error {
	if opts.Title == "" {
		return fmt.Errorf("book title is required")
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Author == "" {
		opts.Author = "Unknown Author"
	}
	if opts.TargetPages <= 0 {
		opts.TargetPages = 250
	}

	configPath := filepath.Join(opts.Dir, BookConfigName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in %s", BookConfigName, opts.Dir)
	}

	for _, dir := range outputDirs {
		if err := os.MkdirAll(filepath.Join(opts.Dir, dir), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	preset, ok := topicPresets[opts.Topic]
	if !ok {
		preset = topicPresets["productivity"]
	}
	keywords := append(append([]string(nil), preset.keywords...), opts.Keywords...)

	cfg := &BookConfig{
		Book: BookMeta{
			Title:          opts.Title,
			Subtitle:       "Evidence-Based Insights for Software Engineers",
			Author:         opts.Author,
			Topic:          opts.Topic,
			TargetWords:    75000,
			TargetPages:    opts.TargetPages,
			TargetChapters: 12,
		},
		Research: ResearchPlan{
			Databases: []string{"arxiv", "google_scholar", "acm_digital_library"},
			Keywords:  keywords,
		},
		Benchmarks: preset.benchmarks,
		Writing: WritingStyle{
			Tone:    "accessible_expert",
			Style:   "evidence_based",
			Balance: StyleBalance{Technical: 60, Narrative: 40},
		},
		Citations: CitationRules{Style: "apa", MinPerChapter: 10},
		Validation: ValidationRules{
			CheckLogicalFallacies:  true,
			RequireEvidence:        true,
			FlagAbsoluteStatements: true,
		},
	}
	if err := cfg.Save(opts.Dir); err != nil {
		return err
	}

	files := map[string]string{
		"manuscript.md":          manuscriptTemplate(opts),
		"experiments/tracker.md": trackerTemplate,
		"PROJECT_README.md":      readmeTemplate(opts),
	}
	for name, content := range files {
		path := filepath.Join(opts.Dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	return nil
}
