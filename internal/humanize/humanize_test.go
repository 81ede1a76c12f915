package humanize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookforge/bookforge/internal/aiclient"
)

type rewriteProvider struct {
	prefix string
	err    error
	calls  int
}

func (r *rewriteProvider) Name() string { return "rewrite" }

func (r *rewriteProvider) Generate(ctx context.Context, prompt string, opts aiclient.Options) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.prefix + " rewritten text", nil
}

func seedChapters(t *testing.T, names ...string) string {
	t.Helper()
	bookDir := t.TempDir()
	dir := filepath.Join(bookDir, "outputs", "chapters")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# Draft\n\noriginal text"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return bookDir
}

func TestChapterFiles_OrderedAndFiltered(t *testing.T) {
	bookDir := seedChapters(t,
		"chapter02_second.md",
		"chapter01_first.md",
		"chapter10_tenth.md",
	)

	files, err := ChapterFiles(bookDir, 0)
	if err != nil {
		t.Fatalf("ChapterFiles() error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	if filepath.Base(files[0]) != "chapter01_first.md" || filepath.Base(files[2]) != "chapter10_tenth.md" {
		t.Errorf("files out of order: %v", files)
	}

	only, err := ChapterFiles(bookDir, 2)
	if err != nil {
		t.Fatalf("ChapterFiles(2) error: %v", err)
	}
	if len(only) != 1 || filepath.Base(only[0]) != "chapter02_second.md" {
		t.Errorf("ChapterFiles(2) = %v, want just chapter 2", only)
	}
}

func TestChapterFiles_NoneFound(t *testing.T) {
	if _, err := ChapterFiles(t.TempDir(), 0); err == nil {
		t.Error("ChapterFiles() on empty project succeeded, want error")
	}
}

func TestRun_RewritesInPlace(t *testing.T) {
	bookDir := seedChapters(t, "chapter01_first.md", "chapter02_second.md")
	provider := &rewriteProvider{prefix: "polished"}

	h, err := New(provider, aiclient.DefaultOptions())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	var reported int
	results, err := h.Run(context.Background(), bookDir, 0, 40, func(Result) { reported++ })
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("rewrote %d chapters, want 2", len(results))
	}
	if reported != 2 {
		t.Errorf("done callback ran %d times, want 2", reported)
	}

	data, err := os.ReadFile(results[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "polished") {
		t.Errorf("chapter not rewritten: %q", string(data))
	}
	if results[0].WordCount == 0 {
		t.Error("result word count is zero")
	}
}

func TestRun_FailureKeepsRemainingChapters(t *testing.T) {
	bookDir := seedChapters(t, "chapter01_first.md", "chapter02_second.md")
	provider := &rewriteProvider{err: errors.New("provider down")}

	h, _ := New(provider, aiclient.DefaultOptions())

	results, err := h.Run(context.Background(), bookDir, 0, 40, nil)
	if err == nil {
		t.Fatal("Run() succeeded with failing provider, want error")
	}
	if len(results) != 0 {
		t.Errorf("got %d results from failed run, want 0", len(results))
	}

	data, _ := os.ReadFile(filepath.Join(bookDir, "outputs", "chapters", "chapter01_first.md"))
	if !strings.Contains(string(data), "original text") {
		t.Errorf("failed rewrite clobbered the original: %q", string(data))
	}
}

func TestNew_RequiresProvider(t *testing.T) {
	if _, err := New(nil, aiclient.DefaultOptions()); err == nil {
		t.Error("New(nil) succeeded, want error")
	}
}
