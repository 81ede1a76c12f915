package coherence

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/embedding"
	"github.com/bookforge/bookforge/internal/store"
)

// StoreDir is the per-book directory that holds the embedding database
// and other derived state.
const StoreDir = ".bookforge"

// StorePath returns the embedding database path for a book directory
func StorePath(bookDir string) string {
	return filepath.Join(bookDir, StoreDir, "embeddings.db")
}

// Memory is the per-book chapter memory: chapter metadata plus embedding
// vectors, persisted under <book>/.bookforge/embeddings.db.
//
// A Memory is always usable. When the database or the embedder cannot be
// set up it enters degraded mode: IndexChapter becomes a no-op and
// ChapterContext returns an empty, Degraded result. Callers that need to
// know can check Available.
type Memory struct {
	db       *store.DB
	chapters *store.ChapterStore
	vectors  *store.VectorStore
	embedder embedding.Client
	cfg      config.CoherenceConfig

	degradedReason string
}

// ChapterMeta carries the metadata stored alongside a chapter vector
type ChapterMeta struct {
	Title       string
	WordCount   int
	ContentPath string
}

// ContextSource identifies one chapter that contributed to a context block
type ContextSource struct {
	Number int
	Title  string
	Score  float32
}

// ContextResult is the outcome of a context retrieval. Degraded is set
// when the memory could not serve the request (missing store, embedder
// failure) and Text is best-effort or empty in that case.
type ContextResult struct {
	Text     string
	Sources  []ContextSource
	Degraded bool
	Reason   string
}

// Open opens (or creates) the chapter memory for a book directory.
// Failures to open the store or a nil embedder do not fail the call;
// they put the memory in degraded mode.
func Open(bookDir string, embedder embedding.Client, cfg config.CoherenceConfig) *Memory {
	m := &Memory{
		embedder: embedder,
		cfg:      cfg,
	}
	m.applyDefaults()

	if embedder == nil {
		m.degradedReason = "no embedding client configured"
		return m
	}

	db, err := store.Open(StorePath(bookDir))
	if err != nil {
		m.degradedReason = fmt.Sprintf("embedding store unavailable: %v", err)
		log.Printf("Warning: %s", m.degradedReason)
		return m
	}

	m.db = db
	m.chapters = store.NewChapterStore(db)
	m.vectors = store.NewVectorStore(db)
	return m
}

func (m *Memory) applyDefaults() {
	if m.cfg.MaxContextChapters <= 0 {
		m.cfg.MaxContextChapters = 3
	}
	if m.cfg.MaxContextChars <= 0 {
		m.cfg.MaxContextChars = 2400
	}
	if m.cfg.MaxEmbedChars <= 0 {
		m.cfg.MaxEmbedChars = 6000
	}
	if m.cfg.SynopsisSentences <= 0 {
		m.cfg.SynopsisSentences = 3
	}
}

// Available reports whether the memory is fully operational
func (m *Memory) Available() bool {
	return m.degradedReason == ""
}

// DegradedReason explains why the memory is degraded, or "" when it is not
func (m *Memory) DegradedReason() string {
	return m.degradedReason
}

// Close releases the underlying database
func (m *Memory) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Stats returns store statistics, or nil in degraded mode
func (m *Memory) Stats() (*store.DBStats, error) {
	if m.db == nil {
		return nil, nil
	}
	return m.db.Stats()
}

// Chapters exposes the chapter metadata store, nil in degraded mode
func (m *Memory) Chapters() *store.ChapterStore {
	return m.chapters
}

// IndexChapter records a finished chapter: metadata with a synopsis, then
// the embedding of the first MaxEmbedChars runes of content. Re-indexing
// the same chapter number replaces the previous entry. In degraded mode
// this is a no-op.
func (m *Memory) IndexChapter(ctx context.Context, number int, content string, meta ChapterMeta) error {
	if number < 1 {
		return fmt.Errorf("chapter number must be >= 1, got %d", number)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("chapter %d content is empty", number)
	}
	if meta.Title == "" {
		return fmt.Errorf("chapter %d title is empty", number)
	}

	if !m.Available() {
		return nil
	}

	excerpt := firstRunes(content, m.cfg.MaxEmbedChars)
	vector, err := m.embedder.Embed(ctx, excerpt)
	if err != nil {
		return fmt.Errorf("failed to embed chapter %d: %w", number, err)
	}

	wordCount := meta.WordCount
	if wordCount == 0 {
		wordCount = len(strings.Fields(content))
	}

	// Metadata first, so an embedding row never exists without it
	ch := &store.Chapter{
		Number:      number,
		Title:       meta.Title,
		WordCount:   wordCount,
		Synopsis:    Synopsize(content, m.cfg.SynopsisSentences),
		ContentPath: meta.ContentPath,
	}
	if err := m.chapters.Upsert(ch); err != nil {
		return fmt.Errorf("failed to store chapter %d metadata: %w", number, err)
	}

	if err := m.vectors.Upsert(number, vector, m.embedder.Model()); err != nil {
		return fmt.Errorf("failed to store chapter %d vector: %w", number, err)
	}

	return nil
}

// ChapterContext assembles the context block for drafting chapter number.
// Only chapters strictly before it are consulted. With a non-empty query
// the most similar prior chapters are chosen; with an empty query, or
// when the query cannot be embedded, the most recent ones are. Chapter 1
// (and any chapter with no indexed predecessors) gets an empty,
// non-degraded result.
func (m *Memory) ChapterContext(ctx context.Context, number int, query string) (*ContextResult, error) {
	if number < 1 {
		return nil, fmt.Errorf("chapter number must be >= 1, got %d", number)
	}

	if !m.Available() {
		return &ContextResult{Degraded: true, Reason: m.degradedReason}, nil
	}

	prior, err := m.chapters.ListBefore(number)
	if err != nil {
		return &ContextResult{Degraded: true, Reason: fmt.Sprintf("failed to list chapters: %v", err)}, nil
	}
	if len(prior) == 0 {
		return &ContextResult{}, nil
	}

	result := &ContextResult{}

	selected := m.selectBySimilarity(ctx, number, query, result)
	if selected == nil {
		selected = recentChapters(prior, m.cfg.MaxContextChapters)
	}

	var entries []string
	used := 0
	for _, sc := range selected {
		if sc.Chapter == nil {
			continue
		}
		entry := formatContextEntry(sc.Chapter)
		sep := 0
		if used > 0 {
			sep = len("\n\n")
		}
		// Keep the block bounded; a partial entry is worse than none
		if used+sep+len(entry) > m.cfg.MaxContextChars && used > 0 {
			break
		}
		if len(entry) > m.cfg.MaxContextChars {
			entry = firstRunes(entry, m.cfg.MaxContextChars)
		}
		entries = append(entries, entry)
		used += sep + len(entry)
		result.Sources = append(result.Sources, ContextSource{
			Number: sc.Chapter.Number,
			Title:  sc.Chapter.Title,
			Score:  sc.Score,
		})
	}

	result.Text = strings.Join(entries, "\n\n")
	return result, nil
}

// selectBySimilarity returns similarity-ranked prior chapters, or nil when
// the recency fallback should be used. Embedding failures mark the result
// degraded but do not abort retrieval.
func (m *Memory) selectBySimilarity(ctx context.Context, number int, query string, result *ContextResult) []store.ScoredChapter {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	queryVector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		result.Degraded = true
		result.Reason = fmt.Sprintf("failed to embed query: %v", err)
		log.Printf("Warning: %s; falling back to recent chapters", result.Reason)
		return nil
	}

	scored, err := m.vectors.SearchBefore(queryVector, number, m.cfg.MaxContextChapters, m.chapters)
	if err != nil {
		result.Degraded = true
		result.Reason = fmt.Sprintf("similarity search failed: %v", err)
		log.Printf("Warning: %s; falling back to recent chapters", result.Reason)
		return nil
	}
	if len(scored) == 0 {
		// Chapters indexed without vectors; fall back to recency
		return nil
	}
	return scored
}

// recentChapters picks the last topK chapters, most recent first
func recentChapters(prior []*store.Chapter, topK int) []store.ScoredChapter {
	var out []store.ScoredChapter
	for i := len(prior) - 1; i >= 0 && len(out) < topK; i-- {
		out = append(out, store.ScoredChapter{
			Number:  prior[i].Number,
			Chapter: prior[i],
		})
	}
	return out
}

func formatContextEntry(ch *store.Chapter) string {
	synopsis := strings.TrimSpace(ch.Synopsis)
	if synopsis == "" {
		return fmt.Sprintf("Chapter %d: %s", ch.Number, ch.Title)
	}
	return fmt.Sprintf("Chapter %d: %s — %s", ch.Number, ch.Title, synopsis)
}
