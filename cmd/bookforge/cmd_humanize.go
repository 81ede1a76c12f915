package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bookforge/bookforge/internal/aiclient"
	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/humanize"
	"github.com/bookforge/bookforge/internal/progress"
)

// handleHumanize implements the humanize subcommand
func handleHumanize(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("humanize", flag.ExitOnError)
	var (
		chapter  int
		balance  int
		provider string
	)
	fs.IntVar(&chapter, "chapter", 0, "Specific chapter to rewrite (default: all)")
	fs.IntVar(&balance, "balance", 40, "Target narrative share in percent")
	fs.StringVar(&provider, "provider", "", "Override generation provider order")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge humanize [options]

DESCRIPTION:
    Rewrite drafted chapters in outputs/chapters/ for narrative flow,
    keeping all factual content. Files are replaced in place, one at a
    time.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge humanize
    bookforge humanize -chapter 4 -balance 50
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	chain, err := aiclient.FromConfig(&cfg.Generation, provider)
	if err != nil {
		log.Fatalf("Failed to build generation chain: %v", err)
	}

	h, err := humanize.New(chain, generationOptions(cfg))
	if err != nil {
		log.Fatalf("Failed to create humanizer: %v", err)
	}

	files, err := humanize.ChapterFiles(bookRoot, chapter)
	if err != nil {
		log.Fatalf("Humanize failed: %v", err)
	}

	bar := progress.NewReporter(progress.DefaultEnabled(), "rewriting")
	var done func(humanize.Result)
	if bar != nil {
		bar.Start(len(files))
		defer bar.Finish()
		done = func(humanize.Result) { bar.Increment() }
	}

	results, err := h.Run(context.Background(), bookRoot, chapter, balance, done)
	if err != nil {
		log.Fatalf("Humanize failed after %d chapters: %v", len(results), err)
	}

	fmt.Printf("Rewrote %d chapters:\n", len(results))
	for _, r := range results {
		fmt.Printf("  - %s (%d words)\n", r.Path, r.WordCount)
	}
}
