package coherence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookforge/bookforge/internal/aiclient"
)

// stubProvider records the prompt it receives and returns scripted output
type stubProvider struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts aiclient.Options) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testGenerator(t *testing.T, provider aiclient.Provider) (*Generator, *Memory, string) {
	t.Helper()

	m := testMemory(t)

	outDir := filepath.Join(t.TempDir(), "outputs", "chapters")
	gen, err := NewGenerator(m, provider, GeneratorOptions{
		BookTitle: "The Test Book",
		OutDir:    outDir,
	})
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}
	return gen, m, outDir
}

func TestWriteChapter_WritesFileAndIndexes(t *testing.T) {
	provider := &stubProvider{response: "## Opening\n\nThe generated chapter body with several words."}
	gen, m, outDir := testGenerator(t, provider)

	result, err := gen.WriteChapter(context.Background(), ChapterRequest{
		Number:  1,
		Title:   "Deep Work",
		Outline: "Why focus matters.",
	})
	if err != nil {
		t.Fatalf("WriteChapter() error: %v", err)
	}

	wantPath := filepath.Join(outDir, "chapter01_deep_work.md")
	if result.Path != wantPath {
		t.Errorf("chapter path = %q, want %q", result.Path, wantPath)
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("reading chapter file: %v", err)
	}
	if !strings.Contains(string(data), "The generated chapter body") {
		t.Errorf("chapter file missing generated text: %q", string(data))
	}

	if result.WordCount == 0 {
		t.Error("WordCount = 0, want > 0")
	}
	if result.IndexWarning != "" {
		t.Errorf("unexpected index warning: %s", result.IndexWarning)
	}

	count, err := m.Chapters().Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("indexed chapter count = %d, want 1", count)
	}
}

func TestWriteChapter_ContextReachesPrompt(t *testing.T) {
	provider := &stubProvider{response: "Chapter two text."}
	gen, m, _ := testGenerator(t, provider)

	indexTestChapter(t, m, 1, "Sleep",
		"Sleep consolidates memory. Deep sleep quality depends on circadian rhythm.")

	_, err := gen.WriteChapter(context.Background(), ChapterRequest{
		Number:  2,
		Title:   "Circadian Rhythm",
		Outline: "How sleep cycles govern recovery.",
	})
	if err != nil {
		t.Fatalf("WriteChapter() error: %v", err)
	}

	if !strings.Contains(provider.lastPrompt, contextHeader) {
		t.Error("prompt missing context delimiter")
	}
	if !strings.Contains(provider.lastPrompt, "Chapter 1: Sleep") {
		t.Errorf("prompt missing earlier chapter entry:\n%s", provider.lastPrompt)
	}
}

func TestWriteChapter_FirstChapterHasNoContextBlock(t *testing.T) {
	provider := &stubProvider{response: "Chapter one text."}
	gen, _, _ := testGenerator(t, provider)

	_, err := gen.WriteChapter(context.Background(), ChapterRequest{
		Number:  1,
		Title:   "Start",
		Outline: "The beginning.",
	})
	if err != nil {
		t.Fatalf("WriteChapter() error: %v", err)
	}

	if strings.Contains(provider.lastPrompt, contextHeader) {
		t.Error("chapter 1 prompt should carry no context block")
	}
}

func TestWriteChapter_GenerationFailureLeavesNothing(t *testing.T) {
	provider := &stubProvider{err: errors.New("provider down")}
	gen, m, outDir := testGenerator(t, provider)

	_, err := gen.WriteChapter(context.Background(), ChapterRequest{
		Number:  1,
		Title:   "Doomed",
		Outline: "Never written.",
	})
	if err == nil {
		t.Fatal("WriteChapter() succeeded, want error")
	}

	if entries, _ := os.ReadDir(outDir); len(entries) != 0 {
		t.Errorf("output dir has %d entries after failed generation, want 0", len(entries))
	}

	count, err := m.Chapters().Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 0 {
		t.Errorf("store mutated by failed generation: %d chapters", count)
	}
}

func TestWriteChapter_IndexFailureIsWarningOnly(t *testing.T) {
	provider := &stubProvider{response: "Chapter text survives indexing trouble."}
	gen, m, _ := testGenerator(t, provider)

	// A closed store makes indexing fail while generation still works
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	result, err := gen.WriteChapter(context.Background(), ChapterRequest{
		Number:  1,
		Title:   "Resilient",
		Outline: "Drafting with a broken store.",
	})
	if err != nil {
		t.Fatalf("WriteChapter() error: %v, want success with warning", err)
	}

	if result.IndexWarning == "" {
		t.Error("expected an index warning after store failure")
	}
	if _, statErr := os.Stat(result.Path); statErr != nil {
		t.Errorf("chapter file missing after index failure: %v", statErr)
	}
}

func TestWriteChapter_Validation(t *testing.T) {
	provider := &stubProvider{response: "text"}
	gen, _, _ := testGenerator(t, provider)

	tests := []struct {
		name string
		req  ChapterRequest
	}{
		{"zero number", ChapterRequest{Number: 0, Title: "T", Outline: "O"}},
		{"empty title", ChapterRequest{Number: 1, Outline: "O"}},
		{"empty outline", ChapterRequest{Number: 1, Title: "T"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gen.WriteChapter(context.Background(), tt.req); err == nil {
				t.Error("WriteChapter() succeeded, want error")
			}
		})
	}
}

func TestChapterFileName(t *testing.T) {
	tests := []struct {
		name     string
		number   int
		title    string
		expected string
	}{
		{"simple", 1, "Deep Work", "chapter01_deep_work.md"},
		{"two digits", 12, "The Long Middle", "chapter12_the_long_middle.md"},
		{"punctuation", 3, "Risk & Reward: a study!", "chapter03_risk_reward_a_study.md"},
		{"empty title slug", 4, "!!!", "chapter04_untitled.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChapterFileName(tt.number, tt.title); got != tt.expected {
				t.Errorf("ChapterFileName(%d, %q) = %q, want %q", tt.number, tt.title, got, tt.expected)
			}
		})
	}
}
