// Package validator reviews manuscript text for logical rigor: named
// fallacies, unsupported absolutes and hedged non-claims. An AI review
// is used when a provider responds; a lexical scan otherwise.
package validator

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookforge/bookforge/internal/aiclient"
)

// Fallacies is the checklist handed to the AI reviewer
var Fallacies = []string{
	"Ad hominem",
	"Straw man",
	"False dichotomy",
	"Slippery slope",
	"Appeal to authority (without evidence)",
	"Correlation implies causation",
	"Hasty generalization",
	"Cherry picking data",
	"Post hoc ergo propter hoc",
	"Circular reasoning",
}

// manuscriptExcerptRunes bounds how much text goes to the AI reviewer
const manuscriptExcerptRunes = 8000

// Validator runs manuscript reviews
type Validator struct {
	provider aiclient.Provider
	opts     aiclient.Options
}

// New creates a validator. provider may be nil, forcing the lexical scan.
func New(provider aiclient.Provider, opts aiclient.Options) *Validator {
	return &Validator{provider: provider, opts: opts}
}

// Report is the outcome of one validation run
type Report struct {
	Text       string
	ReportPath string
	// Lexical is true when the AI review was unavailable and only the
	// word-level scan ran
	Lexical bool
}

// Run validates manuscript.md in bookDir and writes
// outputs/argument_validation_report.md.
func (v *Validator) Run(ctx context.Context, bookDir string, strict bool) (*Report, error) {
	manuscriptPath := filepath.Join(bookDir, "manuscript.md")
	data, err := os.ReadFile(manuscriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manuscript: %w", err)
	}
	manuscript := string(data)
	if strings.TrimSpace(manuscript) == "" {
		return nil, fmt.Errorf("manuscript is empty")
	}

	report := &Report{}
	report.Text = v.review(ctx, manuscript, strict, report)

	outDir := filepath.Join(bookDir, "outputs")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	report.ReportPath = filepath.Join(outDir, "argument_validation_report.md")
	doc := fmt.Sprintf("# Argument Validation Report\n\n**Generated:** %s\n\n---\n\n%s\n",
		time.Now().Format("2006-01-02 15:04:05"), report.Text)
	if err := os.WriteFile(report.ReportPath, []byte(doc), 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return report, nil
}

func (v *Validator) review(ctx context.Context, manuscript string, strict bool, report *Report) string {
	if v.provider != nil {
		prompt := buildValidationPrompt(manuscript, strict)
		response, err := v.provider.Generate(ctx, prompt, v.opts)
		if err == nil && strings.TrimSpace(response) != "" {
			return response
		}
		log.Printf("Warning: AI validation unavailable (%v), running lexical checks only", err)
	}
	report.Lexical = true
	return LexicalReport(manuscript)
}

// LexicalReport scans the text for absolute statements and overused
// hedging words. It is the validation floor when no AI reviewer runs.
func LexicalReport(manuscript string) string {
	lower := strings.ToLower(manuscript)
	var issues []string

	absolutes := []string{"always", "never", "all ", "none ", "every ", "impossible"}
	for _, word := range absolutes {
		if strings.Contains(lower, word) {
			issues = append(issues,
				fmt.Sprintf("- Found absolute statement: '%s' - consider qualifying", strings.TrimSpace(word)))
		}
	}

	weasels := []string{"might", "possibly", "arguably", "perhaps", "maybe"}
	for _, word := range weasels {
		if count := strings.Count(lower, word); count > 5 {
			issues = append(issues,
				fmt.Sprintf("- Overuse of '%s' (%d times) - be more specific", word, count))
		}
	}

	var b strings.Builder
	b.WriteString("# Validation Report\n\n## Automated Checks\n\n")
	if len(issues) > 0 {
		b.WriteString(strings.Join(issues, "\n"))
	} else {
		b.WriteString("No automated issues found.\n")
	}
	b.WriteString("\n\n**Note:** Full validation requires an AI provider.\n")
	return b.String()
}

func buildValidationPrompt(manuscript string, strict bool) string {
	excerpt := manuscript
	if runes := []rune(manuscript); len(runes) > manuscriptExcerptRunes {
		excerpt = string(runes[:manuscriptExcerptRunes])
	}

	var fallaciesList strings.Builder
	for _, f := range Fallacies {
		fmt.Fprintf(&fallaciesList, "   - %s\n", f)
	}

	strictness := ""
	if strict {
		strictness = "extremely strict and "
	}

	return fmt.Sprintf(`You are a critical thinking expert and scientific reviewer.

Your task: Analyze this technical manuscript for logical rigor and evidence-based claims.

**Manuscript:**
%s

**Check for:**

1. **Logical Fallacies**
   Common fallacies to watch for:
%s
2. **Unsupported Claims**
   - Absolute statements without evidence ("always", "never", "all")
   - Generalizations from limited data
   - Claims lacking citations

3. **Correlation vs Causation Errors**

4. **Cherry-Picked Data**

5. **Strength of Evidence**
   - Rate each major claim's evidence quality (1-5 stars)

6. **Missing Qualifiers**

7. **Argument Structure**

**Output Format:**

## Executive Summary

## Critical Issues (Must Fix)

## Warnings (Should Fix)

## Suggestions (Consider)

## Strengths

## Evidence Quality Table
| Claim | Evidence Type | Quality (1-5) | Recommendation |
|-------|--------------|---------------|----------------|

Be %sspecific. Quote exact passages when flagging issues.
`, excerpt, fallaciesList.String(), strictness)
}
