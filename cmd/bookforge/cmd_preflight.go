package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/preflight"
)

// handlePreflight implements the preflight subcommand
func handlePreflight(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("preflight", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge preflight

DESCRIPTION:
    Check the environment before a writing run: AI provider CLIs, pandoc,
    git, workspace writability and embedding credentials. The workflow is
    considered ready with up to two failing checks.

EXAMPLES:
    bookforge preflight
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	report := preflight.Run(cfg, bookRoot)

	for _, check := range report.Checks {
		fmt.Printf("[%s] %-24s %s\n", check.Status, check.Name, check.Detail)
	}

	fmt.Println()
	if report.Ready() {
		fmt.Printf("Ready (%d of %d checks failing)\n", report.Failed(), len(report.Checks))
		return
	}
	fmt.Printf("Not ready: %d of %d checks failing\n", report.Failed(), len(report.Checks))
	os.Exit(1)
}
