// Package experiment turns a hypothesis into a runnable experimental
// protocol: the design document, a machine-readable config, and a data
// collection template.
package experiment

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bookforge/bookforge/internal/aiclient"
)

// Design is the structured experiment protocol
type Design struct {
	Hypothesis            string          `yaml:"hypothesis"`
	Participants          int             `yaml:"participants"`
	DurationWeeks         int             `yaml:"duration_weeks"`
	DesignType            string          `yaml:"design_type"`
	NullHypothesis        string          `yaml:"null_hypothesis"`
	AlternativeHypothesis string          `yaml:"alternative_hypothesis"`
	IndependentVariables  []Variable      `yaml:"independent_variables"`
	DependentVariables    []Metric        `yaml:"dependent_variables"`
	Timeline              []TimelineEntry `yaml:"timeline"`
	Statistics            StatisticsPlan  `yaml:"statistical_analysis"`
}

// Variable is a manipulated experimental factor
type Variable struct {
	Name   string   `yaml:"name"`
	Levels []string `yaml:"levels"`
}

// Metric is a measured outcome
type Metric struct {
	Name        string `yaml:"name"`
	Measurement string `yaml:"measurement"`
	Unit        string `yaml:"unit"`
}

// TimelineEntry is one scheduled activity
type TimelineEntry struct {
	Week     int    `yaml:"week"`
	Activity string `yaml:"activity"`
}

// StatisticsPlan names the planned analysis
type StatisticsPlan struct {
	Test  string  `yaml:"test"`
	Alpha float64 `yaml:"alpha"`
	Power float64 `yaml:"power"`
}

// Designer produces experiment protocols, with an AI-written design
// when a provider is available and a template otherwise
type Designer struct {
	provider aiclient.Provider
	opts     aiclient.Options
}

// NewDesigner creates a designer. provider may be nil.
func NewDesigner(provider aiclient.Provider, opts aiclient.Options) *Designer {
	return &Designer{provider: provider, opts: opts}
}

// Result reports the written protocol files
type Result struct {
	Design       *Design
	ProtocolPath string
	ConfigPath   string
	TemplatePath string
	// FromTemplate is true when the design is the non-AI fallback
	FromTemplate bool
	// RawResponse holds the full AI answer when one was produced
	RawResponse string
}

// Run designs the experiment and writes the protocol files under
// <book>/outputs/experiment_design/.
func (d *Designer) Run(ctx context.Context, bookDir, hypothesis string, participants, durationWeeks int) (*Result, error) {
	if strings.TrimSpace(hypothesis) == "" {
		return nil, fmt.Errorf("hypothesis is required")
	}
	if participants <= 0 {
		participants = 20
	}
	if durationWeeks <= 0 {
		durationWeeks = 4
	}

	result := &Result{}
	result.Design = d.generate(ctx, hypothesis, participants, durationWeeks, result)

	outDir := filepath.Join(bookDir, "outputs", "experiment_design")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create experiment dir: %w", err)
	}

	designYAML, err := yaml.Marshal(result.Design)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal design: %w", err)
	}

	var protocol strings.Builder
	fmt.Fprintf(&protocol, "# Experimental Protocol\n\n**Generated:** %s\n\n**Hypothesis:** %s\n\n---\n\n",
		time.Now().Format("2006-01-02 15:04"), hypothesis)
	if result.RawResponse != "" {
		protocol.WriteString(result.RawResponse)
		protocol.WriteString("\n")
	} else {
		fmt.Fprintf(&protocol, "```yaml\n%s```\n", designYAML)
	}

	result.ProtocolPath = filepath.Join(outDir, "protocol.md")
	if err := os.WriteFile(result.ProtocolPath, []byte(protocol.String()), 0644); err != nil {
		return nil, fmt.Errorf("failed to write protocol: %w", err)
	}

	result.ConfigPath = filepath.Join(outDir, "experiment_config.yaml")
	if err := os.WriteFile(result.ConfigPath, designYAML, 0644); err != nil {
		return nil, fmt.Errorf("failed to write experiment config: %w", err)
	}

	result.TemplatePath = filepath.Join(outDir, "data_template.csv")
	if err := os.WriteFile(result.TemplatePath, []byte(DataTemplate(result.Design)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write data template: %w", err)
	}

	return result, nil
}

func (d *Designer) generate(ctx context.Context, hypothesis string, participants, durationWeeks int, result *Result) *Design {
	if d.provider == nil {
		result.FromTemplate = true
		return TemplateDesign(hypothesis, participants, durationWeeks)
	}

	prompt := buildDesignPrompt(hypothesis, participants, durationWeeks)
	response, err := d.provider.Generate(ctx, prompt, d.opts)
	if err != nil || strings.TrimSpace(response) == "" {
		log.Printf("Warning: AI experiment design unavailable (%v), using template", err)
		result.FromTemplate = true
		return TemplateDesign(hypothesis, participants, durationWeeks)
	}
	result.RawResponse = response

	// Prefer the structured YAML when the model produced parseable output
	design := &Design{}
	cleaned := aiclient.StripCodeFence(response)
	if yamlErr := yaml.Unmarshal([]byte(cleaned), design); yamlErr != nil || design.Hypothesis == "" {
		design = TemplateDesign(hypothesis, participants, durationWeeks)
	}
	return design
}

// TemplateDesign is the fallback A/B-test protocol used when no AI
// provider responds
func TemplateDesign(hypothesis string, participants, durationWeeks int) *Design {
	return &Design{
		Hypothesis:            hypothesis,
		Participants:          participants,
		DurationWeeks:         durationWeeks,
		DesignType:            "A/B Test",
		NullHypothesis:        "There is no difference between control and treatment groups",
		AlternativeHypothesis: hypothesis,
		IndependentVariables: []Variable{
			{Name: "intervention", Levels: []string{"control", "treatment"}},
		},
		DependentVariables: []Metric{
			{Name: "primary_outcome", Measurement: "To be defined", Unit: "To be defined"},
		},
		Timeline: []TimelineEntry{
			{Week: 1, Activity: "Baseline measurements"},
			{Week: 2, Activity: "Begin intervention"},
			{Week: durationWeeks, Activity: "Final measurements"},
		},
		Statistics: StatisticsPlan{Test: "Independent t-test", Alpha: 0.05, Power: 0.80},
	}
}

// DataTemplate renders the CSV header for collecting the design's
// dependent variables, plus one example row
func DataTemplate(design *Design) string {
	columns := []string{"participant_id", "group", "week", "date"}
	for _, dv := range design.DependentVariables {
		name := dv.Name
		if name == "" {
			name = "metric"
		}
		columns = append(columns, name)
	}

	var b strings.Builder
	b.WriteString(strings.Join(columns, ","))
	b.WriteString("\n001,control,1,2025-01-01")
	b.WriteString(strings.Repeat(",", len(design.DependentVariables)))
	b.WriteString("\n")
	return b.String()
}

func buildDesignPrompt(hypothesis string, participants, durationWeeks int) string {
	return fmt.Sprintf(`You are an experimental design expert helping to create rigorous experiments for a technical book.

**Hypothesis to Test:**
%s

**Constraints:**
- Participants: %d people
- Duration: %d weeks
- Context: Software developers/engineers
- Must be practically feasible (not requiring expensive equipment)
- Must produce measurable, quantifiable results

**Your Task:**
Design a complete experimental protocol including:

1. **Null Hypothesis (H0) and Alternative Hypothesis (H1)**
2. **Experimental Design Type** (A/B test, factorial design, repeated measures) with justification
3. **Independent Variables** with levels/conditions
4. **Dependent Variables** with measurement method and units
5. **Control Variables** that could confound results
6. **Randomization Strategy**
7. **Data Collection Procedure** week by week
8. **Sample Size Justification** (is %d enough for statistical power?)
9. **Statistical Analysis Plan** (tests, alpha, missing data handling)
10. **Potential Threats to Validity** and mitigations
11. **Ethical Considerations**
12. **Timeline** week by week

Format as structured YAML that can be parsed.
`, hypothesis, participants, durationWeeks, participants)
}
