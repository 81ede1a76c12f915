package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bookforge/bookforge/internal/coherence"
	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/store"
	"github.com/bookforge/bookforge/internal/textindex"
)

type bookStats struct {
	Chapters   int64  `json:"chapters"`
	Embeddings int64  `json:"embeddings"`
	TotalWords int64  `json:"total_words"`
	DBBytes    int64  `json:"db_bytes"`
	TextDocs   uint64 `json:"text_docs"`
}

// handleStats implements the stats subcommand
func handleStats(cfg *config.Config, bookRoot string, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	var asJSON bool
	fs.BoolVar(&asJSON, "json", false, "Emit stats as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    bookforge stats [options]

DESCRIPTION:
    Report index sizes for the current book: chapter and embedding
    counts, total indexed words, and on-disk storage.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    bookforge stats
    bookforge stats -json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	db, err := store.Open(coherence.StorePath(bookRoot))
	if err != nil {
		log.Fatalf("Failed to open chapter store: %v", err)
	}
	defer db.Close()

	dbStats, err := db.Stats()
	if err != nil {
		log.Fatalf("Failed to read store stats: %v", err)
	}

	stats := bookStats{
		Chapters:   dbStats.ChapterCount,
		Embeddings: dbStats.EmbeddingCount,
		TotalWords: dbStats.TotalWords,
		DBBytes:    dbStats.SizeBytes,
	}

	if ix, err := textindex.Open(bookRoot); err == nil {
		if n, err := ix.DocCount(); err == nil {
			stats.TextDocs = n
		}
		ix.Close()
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			log.Fatalf("Failed to encode stats: %v", err)
		}
		return
	}

	fmt.Printf("Chapters:    %d\n", stats.Chapters)
	fmt.Printf("Embeddings:  %d\n", stats.Embeddings)
	fmt.Printf("Total words: %d\n", stats.TotalWords)
	fmt.Printf("Store size:  %.1f KB\n", float64(stats.DBBytes)/1024)
	fmt.Printf("Text docs:   %d\n", stats.TextDocs)
}
