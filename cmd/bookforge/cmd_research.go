package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bookforge/bookforge/internal/aiclient"
	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/progress"
	"github.com/bookforge/bookforge/internal/research"
)

// handleResearch implements the research subcommand
func handleResearch(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("research", flag.ExitOnError)
	var (
		query    string
		limit    int
		provider string
	)
	fs.StringVar(&query, "query", "", "Research query (required)")
	fs.IntVar(&limit, "limit", cfg.Research.MaxResults, "Maximum number of papers")
	fs.StringVar(&provider, "provider", "", "Override generation provider order (e.g. \"gemini\")")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge research -query <query> [options]

DESCRIPTION:
    Search arXiv for papers matching the query, synthesize the findings
    with an AI provider, and write outputs/research_synthesis.md plus
    references/bibliography.bib.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge research -query "context switching cost"
    bookforge research -query "code review effectiveness" -limit 40
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if query == "" {
		fmt.Fprintln(os.Stderr, "Error: -query is required")
		fs.Usage()
		os.Exit(1)
	}

	chain, err := aiclient.FromConfig(&cfg.Generation, provider)
	if err != nil {
		log.Fatalf("Failed to build generation chain: %v", err)
	}

	arxiv := research.NewArxivClient(cfg.Research.ArxivEndpoint)
	synth := research.NewSynthesizer(arxiv, chain, generationOptions(cfg))

	ctx := context.Background()
	stop := progress.StartSpinner(progress.DefaultEnabled(), "researching")
	report, err := synth.Run(ctx, bookRoot, query, limit)
	stop()
	if err != nil {
		log.Fatalf("Research failed: %v", err)
	}

	fmt.Printf("Found %d papers\n", len(report.Papers))
	if report.Basic {
		fmt.Println("AI synthesis unavailable; wrote basic summary")
	}
	fmt.Printf("Synthesis:    %s\n", report.SynthesisPath)
	fmt.Printf("Bibliography: %s\n", report.BibPath)
}

// generationOptions maps generation config to per-call AI options
func generationOptions(cfg *config.Config) aiclient.Options {
	opts := aiclient.DefaultOptions()
	if cfg.Generation.MaxTokens > 0 {
		opts.MaxTokens = cfg.Generation.MaxTokens
	}
	if cfg.Generation.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(cfg.Generation.TimeoutSeconds) * time.Second
	}
	return opts
}
