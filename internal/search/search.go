// Package search answers ad-hoc queries over a book's indexed chapters
// by blending embedding similarity with keyword relevance.
package search

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/embedding"
	"github.com/bookforge/bookforge/internal/store"
	"github.com/bookforge/bookforge/internal/textindex"
)

// Result is one ranked chapter hit
type Result struct {
	Number   int
	Title    string
	Score    float64
	Synopsis string
	// Matched records which rankers found the chapter: "vector",
	// "keyword", or both
	Matched []string
}

// rankAgg accumulates a chapter's score across rankers
type rankAgg struct {
	score   float64
	matched []string
}

// Searcher runs hybrid queries. Either ranker may be absent; with both
// absent Search fails.
type Searcher struct {
	chapters *store.ChapterStore
	vectors  *store.VectorStore
	text     *textindex.Index
	embedder embedding.Client
	cfg      config.SearchConfig
}

// New assembles a searcher. text and embedder may be nil, degrading to a
// single-ranker search.
func New(chapters *store.ChapterStore, vectors *store.VectorStore, text *textindex.Index, embedder embedding.Client, cfg config.SearchConfig) *Searcher {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 10
	}
	if cfg.VectorWeight <= 0 && cfg.KeywordWeight <= 0 {
		cfg.VectorWeight = 0.6
		cfg.KeywordWeight = 0.4
	}
	return &Searcher{
		chapters: chapters,
		vectors:  vectors,
		text:     text,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Search runs the query through both rankers and merges per-chapter
// scores. A ranker that fails is skipped with a warning rather than
// failing the search, as long as the other produced results.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}

	merged := make(map[int]*rankAgg)

	ranVector := false
	if s.embedder != nil && s.vectors != nil {
		if err := s.vectorRank(ctx, query, topK, merged); err != nil {
			log.Printf("Warning: vector ranking skipped: %v", err)
		} else {
			ranVector = true
		}
	}

	ranKeyword := false
	if s.text != nil {
		if err := s.keywordRank(query, topK, merged); err != nil {
			log.Printf("Warning: keyword ranking skipped: %v", err)
		} else {
			ranKeyword = true
		}
	}

	if !ranVector && !ranKeyword {
		return nil, fmt.Errorf("no search backend available")
	}

	results := make([]Result, 0, len(merged))
	for number, a := range merged {
		r := Result{Number: number, Score: a.score, Matched: a.matched}
		if ch, err := s.chapters.Get(number); err == nil {
			r.Title = ch.Title
			r.Synopsis = ch.Synopsis
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Number > results[j].Number
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Searcher) vectorRank(ctx context.Context, query string, topK int, merged map[int]*rankAgg) error {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return err
	}

	// No upper chapter bound for ad-hoc search
	scored, err := s.vectors.SearchBefore(vec, 1<<30, topK, nil)
	if err != nil {
		return err
	}

	for _, sc := range scored {
		e := merged[sc.Number]
		if e == nil {
			e = &rankAgg{}
			merged[sc.Number] = e
		}
		e.score += float64(s.cfg.VectorWeight) * float64(sc.Score)
		e.matched = append(e.matched, "vector")
	}
	return nil
}

func (s *Searcher) keywordRank(query string, topK int, merged map[int]*rankAgg) error {
	hits, err := s.text.Search(query, topK)
	if err != nil {
		return err
	}

	// Bleve scores are unbounded; normalize by the best hit so the
	// keyword contribution stays comparable to cosine similarity.
	var maxScore float64
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	if maxScore == 0 {
		return nil
	}

	for _, h := range hits {
		e := merged[h.Number]
		if e == nil {
			e = &rankAgg{}
			merged[h.Number] = e
		}
		e.score += float64(s.cfg.KeywordWeight) * (h.Score / maxScore)
		e.matched = append(e.matched, "keyword")
	}
	return nil
}
