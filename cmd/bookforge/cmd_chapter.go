package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookforge/bookforge/internal/aiclient"
	"github.com/bookforge/bookforge/internal/coherence"
	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/embedding"
	"github.com/bookforge/bookforge/internal/progress"
	"github.com/bookforge/bookforge/internal/project"
	"github.com/bookforge/bookforge/internal/textindex"
)

// handleWriteChapter implements the write-chapter subcommand
func handleWriteChapter(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("write-chapter", flag.ExitOnError)
	var (
		chapter     int
		title       string
		outlinePath string
		outlineText string
		provider    string
	)
	fs.IntVar(&chapter, "chapter", 0, "Chapter number (required, >= 1)")
	fs.StringVar(&title, "title", "", "Chapter title (required)")
	fs.StringVar(&outlinePath, "outline", "", "Path to the chapter outline file")
	fs.StringVar(&outlineText, "outline-text", "", "Inline outline text (alternative to -outline)")
	fs.StringVar(&provider, "provider", "", "Override generation provider order (e.g. \"gemini\")")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge write-chapter -chapter <n> -title <title> -outline <file> [options]

DESCRIPTION:
    Draft one chapter. Context is retrieved from chapters indexed before
    it, so later chapters stay consistent with what earlier ones
    established. The draft lands in outputs/chapters/ and is indexed for
    future retrieval.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge write-chapter -chapter 1 -title "The Problem" -outline outlines/ch01.md
    bookforge write-chapter -chapter 4 -title "Deep Work" -outline-text "Why focus matters"
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if chapter < 1 {
		fmt.Fprintln(os.Stderr, "Error: -chapter must be >= 1")
		fs.Usage()
		os.Exit(1)
	}
	if title == "" {
		fmt.Fprintln(os.Stderr, "Error: -title is required")
		fs.Usage()
		os.Exit(1)
	}

	outline := outlineText
	if outline == "" && outlinePath != "" {
		data, err := os.ReadFile(outlinePath)
		if err != nil {
			log.Fatalf("Failed to read outline: %v", err)
		}
		outline = string(data)
	}
	if strings.TrimSpace(outline) == "" {
		fmt.Fprintln(os.Stderr, "Error: an outline is required (-outline or -outline-text)")
		fs.Usage()
		os.Exit(1)
	}

	chain, err := aiclient.FromConfig(&cfg.Generation, provider)
	if err != nil {
		log.Fatalf("Failed to build generation chain: %v", err)
	}

	memory := openMemory(cfg, bookRoot)
	defer memory.Close()

	bookTitle, style := bookStyle(bookRoot)

	var text coherence.TextIndexer
	textIdx, err := textindex.Open(bookRoot)
	if err != nil {
		log.Printf("Warning: keyword index unavailable: %v", err)
	} else {
		defer textIdx.Close()
		text = textIdx
	}

	gen, err := coherence.NewGenerator(memory, chain, coherence.GeneratorOptions{
		BookTitle:   bookTitle,
		Style:       style,
		OutDir:      filepath.Join(bookRoot, "outputs", "chapters"),
		AIOptions:   generationOptions(cfg),
		TextIndexer: text,
	})
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	stop := progress.StartSpinner(progress.DefaultEnabled(), fmt.Sprintf("drafting chapter %d", chapter))
	result, err := gen.WriteChapter(context.Background(), coherence.ChapterRequest{
		Number:  chapter,
		Title:   title,
		Outline: outline,
	})
	stop()
	if err != nil {
		log.Fatalf("Chapter generation failed: %v", err)
	}

	fmt.Printf("Wrote chapter %d: %s (%d words)\n", chapter, result.Path, result.WordCount)
	if len(result.Context.Sources) > 0 {
		fmt.Println("Context drawn from:")
		for _, src := range result.Context.Sources {
			fmt.Printf("  - Chapter %d: %s\n", src.Number, src.Title)
		}
	} else if result.Context.Degraded {
		fmt.Printf("Drafted without retrieved context (%s)\n", result.Context.Reason)
	}
	if result.IndexWarning != "" {
		fmt.Printf("Warning: %s\n", result.IndexWarning)
	}
}

// openMemory builds the chapter memory, degrading instead of failing
// when the embedding backend cannot be created
func openMemory(cfg *config.Config, bookRoot string) *coherence.Memory {
	var embedder embedding.Client
	svc, err := embedding.NewService(&cfg.Embedding)
	if err != nil {
		log.Printf("Warning: embedding backend unavailable: %v", err)
	} else {
		embedder = svc
	}
	return coherence.Open(bookRoot, embedder, cfg.Coherence)
}

// bookStyle reads title and writing balance from the project config,
// with usable defaults when no project is initialized yet
func bookStyle(bookRoot string) (string, coherence.Style) {
	bookCfg, err := project.LoadBookConfig(bookRoot)
	if err != nil {
		log.Printf("Warning: %v; using default style", err)
		return "Untitled", coherence.DefaultStyle()
	}
	style := coherence.Style{
		TechnicalPct: bookCfg.Writing.Balance.Technical,
		NarrativePct: bookCfg.Writing.Balance.Narrative,
	}
	return bookCfg.Book.Title, style
}
