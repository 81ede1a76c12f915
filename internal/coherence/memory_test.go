package coherence

import (
	"context"
	"strings"
	"testing"

	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/embedding"
)

func testMemory(t *testing.T) *Memory {
	t.Helper()

	embedder, err := embedding.NewLocalClient(&config.EmbeddingConfig{Provider: "local", Dimensions: 64})
	if err != nil {
		t.Fatalf("NewLocalClient() error: %v", err)
	}

	m := Open(t.TempDir(), embedder, config.CoherenceConfig{})
	if !m.Available() {
		t.Fatalf("Open() degraded: %s", m.DegradedReason())
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func indexTestChapter(t *testing.T, m *Memory, number int, title, content string) {
	t.Helper()
	err := m.IndexChapter(context.Background(), number, content, ChapterMeta{Title: title})
	if err != nil {
		t.Fatalf("IndexChapter(%d) error: %v", number, err)
	}
}

func TestMemory_FirstChapterEmptyContext(t *testing.T) {
	m := testMemory(t)

	result, err := m.ChapterContext(context.Background(), 1, "anything at all")
	if err != nil {
		t.Fatalf("ChapterContext() error: %v", err)
	}
	if result.Degraded {
		t.Errorf("ChapterContext() degraded for chapter 1: %s", result.Reason)
	}
	if result.Text != "" || len(result.Sources) != 0 {
		t.Errorf("ChapterContext() for chapter 1 = %+v, want empty", result)
	}
}

func TestMemory_ContextOnlyFromEarlierChapters(t *testing.T) {
	m := testMemory(t)
	indexTestChapter(t, m, 1, "Sleep", "Sleep consolidates memory. Deep sleep restores the brain.")
	indexTestChapter(t, m, 2, "Exercise", "Exercise builds endurance. Training load drives adaptation.")
	indexTestChapter(t, m, 3, "Diet", "Diet fuels recovery. Protein supports muscle repair.")

	result, err := m.ChapterContext(context.Background(), 2, "sleep memory restoration")
	if err != nil {
		t.Fatalf("ChapterContext() error: %v", err)
	}

	if len(result.Sources) == 0 {
		t.Fatal("ChapterContext() returned no sources")
	}
	for _, src := range result.Sources {
		if src.Number >= 2 {
			t.Errorf("context for chapter 2 cites chapter %d", src.Number)
		}
	}
	if !strings.Contains(result.Text, "Chapter 1: Sleep") {
		t.Errorf("context missing chapter 1 entry: %q", result.Text)
	}
}

func TestMemory_SimilarityPrefersRelatedChapter(t *testing.T) {
	m := testMemory(t)
	indexTestChapter(t, m, 1, "Sleep", strings.Repeat("Sleep cycles and circadian rhythm shape deep sleep quality. ", 5))
	indexTestChapter(t, m, 2, "Markets", strings.Repeat("Stock markets price risk through interest rates and inflation. ", 5))

	result, err := m.ChapterContext(context.Background(), 3, "circadian rhythm and sleep cycles")
	if err != nil {
		t.Fatalf("ChapterContext() error: %v", err)
	}

	if len(result.Sources) == 0 {
		t.Fatal("ChapterContext() returned no sources")
	}
	if result.Sources[0].Number != 1 {
		t.Errorf("top source = chapter %d, want chapter 1 (sleep)", result.Sources[0].Number)
	}
}

func TestMemory_EmptyQueryFallsBackToRecency(t *testing.T) {
	m := testMemory(t)
	for i := 1; i <= 5; i++ {
		indexTestChapter(t, m, i, "Topic", "Each chapter covers a distinct standalone topic in detail.")
	}

	result, err := m.ChapterContext(context.Background(), 6, "  ")
	if err != nil {
		t.Fatalf("ChapterContext() error: %v", err)
	}

	want := []int{5, 4, 3}
	if len(result.Sources) != len(want) {
		t.Fatalf("got %d sources, want %d", len(result.Sources), len(want))
	}
	for i, src := range result.Sources {
		if src.Number != want[i] {
			t.Errorf("source[%d] = chapter %d, want %d", i, src.Number, want[i])
		}
	}
}

func TestMemory_ReindexReplacesEntry(t *testing.T) {
	m := testMemory(t)
	indexTestChapter(t, m, 1, "Draft", "The first draft of the opening chapter.")
	indexTestChapter(t, m, 1, "Final", "The final version replaces the draft entirely.")

	count, err := m.Chapters().Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("chapter count after re-index = %d, want 1", count)
	}

	ch, err := m.Chapters().Get(1)
	if err != nil {
		t.Fatalf("Get(1) error: %v", err)
	}
	if ch.Title != "Final" {
		t.Errorf("re-indexed title = %q, want %q", ch.Title, "Final")
	}
}

func TestMemory_ContextIsBounded(t *testing.T) {
	embedder, _ := embedding.NewLocalClient(&config.EmbeddingConfig{Provider: "local", Dimensions: 64})
	m := Open(t.TempDir(), embedder, config.CoherenceConfig{MaxContextChars: 200, MaxContextChapters: 10})
	defer m.Close()

	long := strings.Repeat("Every sentence here repeats the same load-bearing claim about systems. ", 20)
	for i := 1; i <= 4; i++ {
		indexTestChapter(t, m, i, "Systems", long)
	}

	result, err := m.ChapterContext(context.Background(), 5, "load-bearing claims about systems")
	if err != nil {
		t.Fatalf("ChapterContext() error: %v", err)
	}
	if len(result.Text) > 200 {
		t.Errorf("context length = %d, want <= 200", len(result.Text))
	}
	if result.Text == "" {
		t.Error("bounded context should still include a truncated entry")
	}
}

func TestMemory_DegradedWithoutEmbedder(t *testing.T) {
	m := Open(t.TempDir(), nil, config.CoherenceConfig{})
	defer m.Close()

	if m.Available() {
		t.Fatal("memory with nil embedder should be degraded")
	}

	if err := m.IndexChapter(context.Background(), 1, "content here", ChapterMeta{Title: "T"}); err != nil {
		t.Errorf("degraded IndexChapter() error: %v, want no-op nil", err)
	}

	result, err := m.ChapterContext(context.Background(), 2, "query")
	if err != nil {
		t.Fatalf("degraded ChapterContext() error: %v", err)
	}
	if !result.Degraded {
		t.Error("degraded memory should mark context results Degraded")
	}
	if result.Text != "" {
		t.Errorf("degraded context text = %q, want empty", result.Text)
	}
}

func TestMemory_IndexValidation(t *testing.T) {
	m := testMemory(t)

	tests := []struct {
		name    string
		number  int
		content string
		meta    ChapterMeta
	}{
		{"zero chapter number", 0, "content", ChapterMeta{Title: "T"}},
		{"negative chapter number", -2, "content", ChapterMeta{Title: "T"}},
		{"empty content", 1, "   ", ChapterMeta{Title: "T"}},
		{"empty title", 1, "content", ChapterMeta{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.IndexChapter(context.Background(), tt.number, tt.content, tt.meta); err == nil {
				t.Error("IndexChapter() succeeded, want error")
			}
		})
	}

	if _, err := m.ChapterContext(context.Background(), 0, "q"); err == nil {
		t.Error("ChapterContext(0) succeeded, want error")
	}
}

func TestMemory_SynopsisStored(t *testing.T) {
	m := testMemory(t)
	indexTestChapter(t, m, 1, "Recovery",
		"Recovery is where adaptation happens. Stress without recovery is attrition. A third filler sentence pads this out.")

	ch, err := m.Chapters().Get(1)
	if err != nil {
		t.Fatalf("Get(1) error: %v", err)
	}
	if strings.TrimSpace(ch.Synopsis) == "" {
		t.Error("indexed chapter has empty synopsis")
	}
	if ch.WordCount == 0 {
		t.Error("indexed chapter has zero word count")
	}
}
