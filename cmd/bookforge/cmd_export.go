package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/export"
	"github.com/bookforge/bookforge/internal/progress"
	"github.com/bookforge/bookforge/internal/project"
)

// handleExport implements the export subcommand
func handleExport(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var (
		format string
		output string
	)
	fs.StringVar(&format, "format", "markdown", "Output format: "+strings.Join(export.Formats, ", "))
	fs.StringVar(&output, "output", "", "Output path (default: outputs/book.<ext>)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge export [options]

DESCRIPTION:
    Assemble the drafted chapters into a single manuscript and render it.
    The assembled Markdown is always written to outputs/book.md; other
    formats are rendered from it with pandoc.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge export
    bookforge export -format pdf
    bookforge export -format epub -output book.epub
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	bookCfg, err := project.LoadBookConfig(bookRoot)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	exporter := export.New(cfg.Export.PandocBin, cfg.Export.PDFEngine)

	stop := progress.StartSpinner(progress.DefaultEnabled(), "exporting")
	result, err := exporter.Run(context.Background(), bookRoot, bookCfg, format, output)
	stop()
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fmt.Printf("Assembled %d chapters\n", result.Chapters)
	fmt.Printf("Manuscript: %s\n", result.ManuscriptPath)
	if result.OutputPath != result.ManuscriptPath {
		fmt.Printf("Rendered:   %s\n", result.OutputPath)
	}
}
