package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bookforge/bookforge/internal/coherence"
	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/embedding"
	"github.com/bookforge/bookforge/internal/search"
	"github.com/bookforge/bookforge/internal/store"
	"github.com/bookforge/bookforge/internal/textindex"
)

// handleSearch implements the search subcommand
func handleSearch(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var (
		topK   int
		asJSON bool
	)
	fs.IntVar(&topK, "top", cfg.Search.DefaultTopK, "Maximum number of results")
	fs.BoolVar(&asJSON, "json", false, "Emit results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge search [options] <query>

DESCRIPTION:
    Query the indexed chapters with a hybrid ranker: semantic similarity
    over embeddings plus keyword matching over the text index. Either
    backend alone still answers, with a warning.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge search "context switching"
    bookforge search -top 5 -json "deliberate practice"
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Error: a query is required")
		fs.Usage()
		os.Exit(1)
	}

	db, err := store.Open(coherence.StorePath(bookRoot))
	if err != nil {
		log.Fatalf("Failed to open chapter store: %v", err)
	}
	defer db.Close()

	var embedder embedding.Client
	if svc, err := embedding.NewService(&cfg.Embedding); err != nil {
		log.Printf("Warning: embedding backend unavailable: %v", err)
	} else {
		embedder = svc
	}

	var text *textindex.Index
	if ix, err := textindex.Open(bookRoot); err != nil {
		log.Printf("Warning: keyword index unavailable: %v", err)
	} else {
		defer ix.Close()
		text = ix
	}

	searcher := search.New(store.NewChapterStore(db), store.NewVectorStore(db), text, embedder, cfg.Search)

	results, err := searcher.Search(context.Background(), query, topK)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("Failed to encode results: %v", err)
		}
		return
	}

	if len(results) == 0 {
		fmt.Println("No matching chapters")
		return
	}
	for i, r := range results {
		fmt.Printf("%d. Chapter %d: %s (score %.3f, %s)\n", i+1, r.Number, r.Title, r.Score, strings.Join(r.Matched, "+"))
		if r.Synopsis != "" {
			fmt.Printf("   %s\n", r.Synopsis)
		}
	}
}
