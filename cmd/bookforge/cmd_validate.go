package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bookforge/bookforge/internal/aiclient"
	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/progress"
	"github.com/bookforge/bookforge/internal/validator"
)

// handleValidate implements the validate subcommand
func handleValidate(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		strict   bool
		provider string
	)
	fs.BoolVar(&strict, "strict", false, "Strict review mode")
	fs.StringVar(&provider, "provider", "", "Override generation provider order")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge validate [options]

DESCRIPTION:
    Review manuscript.md for logical fallacies, unsupported claims and
    missing qualifiers. Writes outputs/argument_validation_report.md.
    Without a working AI provider a lexical scan still runs.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge validate
    bookforge validate -strict
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	chain, err := aiclient.FromConfig(&cfg.Generation, provider)
	if err != nil {
		log.Fatalf("Failed to build generation chain: %v", err)
	}

	v := validator.New(chain, generationOptions(cfg))

	stop := progress.StartSpinner(progress.DefaultEnabled(), "validating")
	report, err := v.Run(context.Background(), bookRoot, strict)
	stop()
	if err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	if report.Lexical {
		fmt.Println("AI review unavailable; ran lexical checks only")
	}
	fmt.Printf("Report: %s\n", report.ReportPath)
}
