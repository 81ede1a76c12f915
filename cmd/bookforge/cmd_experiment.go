package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bookforge/bookforge/internal/aiclient"
	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/experiment"
	"github.com/bookforge/bookforge/internal/progress"
)

// handleDesignExperiment implements the design-experiment subcommand
func handleDesignExperiment(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("design-experiment", flag.ExitOnError)
	var (
		hypothesis   string
		participants int
		duration     int
		provider     string
	)
	fs.StringVar(&hypothesis, "hypothesis", "", "Hypothesis to test (required)")
	fs.IntVar(&participants, "participants", 20, "Number of participants")
	fs.IntVar(&duration, "duration", 4, "Duration in weeks")
	fs.StringVar(&provider, "provider", "", "Override generation provider order")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge design-experiment -hypothesis <claim> [options]

DESCRIPTION:
    Design an experimental protocol for the hypothesis and write
    protocol.md, experiment_config.yaml and data_template.csv under
    outputs/experiment_design/.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge design-experiment -hypothesis "Pairing reduces defect rates"
    bookforge design-experiment -hypothesis "..." -participants 40 -duration 8
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if hypothesis == "" {
		fmt.Fprintln(os.Stderr, "Error: -hypothesis is required")
		fs.Usage()
		os.Exit(1)
	}

	chain, err := aiclient.FromConfig(&cfg.Generation, provider)
	if err != nil {
		log.Fatalf("Failed to build generation chain: %v", err)
	}

	designer := experiment.NewDesigner(chain, generationOptions(cfg))

	stop := progress.StartSpinner(progress.DefaultEnabled(), "designing")
	result, err := designer.Run(context.Background(), bookRoot, hypothesis, participants, duration)
	stop()
	if err != nil {
		log.Fatalf("Experiment design failed: %v", err)
	}

	if result.FromTemplate {
		fmt.Println("AI design unavailable; wrote template protocol")
	}
	fmt.Printf("Protocol:       %s\n", result.ProtocolPath)
	fmt.Printf("Config:         %s\n", result.ConfigPath)
	fmt.Printf("Data template:  %s\n", result.TemplatePath)
}
