package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bookforge/bookforge/cmd/bookforge/internal"
	"github.com/bookforge/bookforge/internal/project"
)

// handleInit implements the init subcommand
func handleInit(bookRoot string, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var (
		title       string
		author      string
		topic       string
		targetPages int
		keywords    internal.StringList
	)
	fs.StringVar(&title, "title", "", "Book title (required)")
	fs.StringVar(&author, "author", "", "Author name")
	fs.StringVar(&topic, "topic", "productivity", "Topic preset: productivity, architecture, ai, philosophy")
	fs.IntVar(&targetPages, "pages", 250, "Target page count")
	fs.Var(&keywords, "keyword", "Extra research keyword (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge init -title <title> [options]

DESCRIPTION:
    Scaffold a new book project in the book directory: configuration,
    manuscript skeleton, experiment tracker and output directories.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge init -title "Deep Focus" -author "J. Doe" -topic productivity

    # Scaffold into a specific directory
    bookforge -book ~/books/deep-focus init -title "Deep Focus"
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if title == "" {
		fmt.Fprintln(os.Stderr, "Error: -title is required")
		fs.Usage()
		os.Exit(1)
	}

	err := project.Initialize(project.InitOptions{
		Dir:         bookRoot,
		Title:       title,
		Author:      author,
		Topic:       topic,
		TargetPages: targetPages,
		Keywords:    keywords,
	})
	if err != nil {
		log.Fatalf("Failed to initialize project: %v", err)
	}

	fmt.Printf("Initialized book project in %s\n\n", bookRoot)
	fmt.Printf("  Title:  %s\n", title)
	if author != "" {
		fmt.Printf("  Author: %s\n", author)
	}
	fmt.Printf("  Topic:  %s\n\n", topic)
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit book_config.yaml with your specific details")
	fmt.Println("  2. Run: bookforge research -query \"your topic\"")
	fmt.Println("  3. Draft: bookforge write-chapter -chapter 1 -title \"...\" -outline outline.md")
}
