package research

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

// Synthesizer searches the literature and distills it into notes the
// chapter drafts can cite
type Synthesizer struct {
	arxiv    *ArxivClient
	provider aiclient.Provider
	opts     aiclient.Options
}

// NewSynthesizer creates a research synthesizer. provider may be nil,
// in which case only the basic non-AI summary is produced.
func NewSynthesizer(arxiv *ArxivClient, provider aiclient.Provider, opts aiclient.Options) *Synthesizer {
	return &Synthesizer{arxiv: arxiv, provider: provider, opts: opts}
}

// Report is the outcome of one research run
type Report struct {
	Papers        []Paper
	Synthesis     string
	SynthesisPath string
	BibPath       string
	// Basic is true when the synthesis is the non-AI fallback summary
	Basic bool
}

// Run searches for papers, synthesizes the findings, and writes
// outputs/research_synthesis.md plus references/bibliography.bib under
// bookDir.
func (s *Synthesizer) Run(ctx context.Context, bookDir, query string, limit int) (*Report, error) {
	papers, err := s.arxiv.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("literature search failed: %w", err)
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("no papers found for %q", query)
	}

	report := &Report{Papers: papers}
	report.Synthesis = s.synthesize(ctx, papers, query, report)

	outDir := filepath.Join(bookDir, "outputs")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	report.SynthesisPath = filepath.Join(outDir, "research_synthesis.md")
	doc := fmt.Sprintf("# Research Synthesis\n\n**Query:** %s\n\n**Date:** %s\n\n---\n\n%s\n",
		query, time.Now().Format("2006-01-02"), report.Synthesis)
	if err := os.WriteFile(report.SynthesisPath, []byte(doc), 0644); err != nil {
		return nil, fmt.Errorf("failed to write synthesis: %w", err)
	}

	refDir := filepath.Join(bookDir, "references")
	if err := os.MkdirAll(refDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create references dir: %w", err)
	}
	report.BibPath = filepath.Join(refDir, "bibliography.bib")
	if err := os.WriteFile(report.BibPath, []byte(FormatBibTeX(papers)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write bibliography: %w", err)
	}

	return report, nil
}

func (s *Synthesizer) synthesize(ctx context.Context, papers []Paper, query string, report *Report) string {
	if s.provider != nil {
		prompt := buildSynthesisPrompt(papers, query)
		response, err := s.provider.Generate(ctx, prompt, s.opts)
		if err == nil && strings.TrimSpace(response) != "" {
			return response
		}
		log.Printf("Warning: AI synthesis unavailable (%v), writing basic summary", err)
	}
	report.Basic = true
	return basicSummary(papers)
}

func buildSynthesisPrompt(papers []Paper, query string) string {
	var entries []string
	for _, p := range papers {
		if len(entries) >= 10 {
			break
		}
		authors := "Unknown"
		if len(p.Authors) > 0 {
			authors = strings.Join(p.Authors, ", ")
		}
		entries = append(entries, fmt.Sprintf("**%s**\nAuthors: %s\nYear: %d\nAbstract: %s",
			p.Title, authors, p.Published, p.Abstract))
	}

	return fmt.Sprintf(`You are a research synthesizer for technical book writing.

Research Query: %s

Papers Found:
%s

Your task:
1. Summarize the KEY FINDINGS across these papers
2. Identify COMMON THEMES and patterns
3. Note any CONTRADICTIONS or debates
4. Identify RESEARCH GAPS where more evidence is needed
5. Suggest PRACTICAL IMPLICATIONS for developers/engineers

Format your response as:

## Key Findings

## Common Themes

## Contradictions & Debates

## Research Gaps

## Practical Implications

## Recommended Papers for Citation
(List top 5 most relevant with brief explanation why)

Be specific, cite paper titles when referencing findings.
`, query, strings.Join(entries, "\n\n"))
}

// basicSummary lists the papers without analysis, used when no AI
// provider responds
func basicSummary(papers []Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Summary\n\nFound %d papers\n\n## Papers:\n\n", len(papers))
	for i, p := range papers {
		if i >= 20 {
			break
		}
		authors := "Unknown"
		if len(p.Authors) > 0 {
			authors = strings.Join(p.Authors, ", ")
		}
		fmt.Fprintf(&b, "%d. **%s**\n   - Authors: %s\n   - Year: %d\n   - Source: %s\n\n",
			i+1, p.Title, authors, p.Published, p.Source)
	}
	return b.String()
}

// FormatBibTeX renders papers as BibTeX @misc entries
func FormatBibTeX(papers []Paper) string {
	var b strings.Builder
	for i, p := range papers {
		key := bibKey(p, i)
		fmt.Fprintf(&b, "@misc{%s,\n", key)
		fmt.Fprintf(&b, "  title = {%s},\n", p.Title)
		if len(p.Authors) > 0 {
			fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(p.Authors, " and "))
		}
		if p.Published > 0 {
			fmt.Fprintf(&b, "  year = {%d},\n", p.Published)
		}
		if p.URL != "" {
			fmt.Fprintf(&b, "  url = {%s},\n", p.URL)
		}
		fmt.Fprintf(&b, "  note = {%s}\n}\n\n", p.Source)
	}
	return b.String()
}

func bibKey(p Paper, i int) string {
	surname := "anon"
	if len(p.Authors) > 0 {
		fields := strings.Fields(p.Authors[0])
		if len(fields) > 0 {
			surname = strings.ToLower(fields[len(fields)-1])
		}
	}
	cleaned := make([]rune, 0, len(surname))
	for _, r := range surname {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []rune("anon")
	}
	if p.Published > 0 {
		return fmt.Sprintf("%s%d", string(cleaned), p.Published)
	}
	return fmt.Sprintf("%s_%d", string(cleaned), i+1)
}
