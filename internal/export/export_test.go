package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookforge/bookforge/internal/project"
)

func seedBook(t *testing.T) string {
	t.Helper()
	bookDir := t.TempDir()
	dir := filepath.Join(bookDir, "outputs", "chapters")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	chapters := map[string]string{
		"chapter01_opening.md": "## Opening\n\nFirst chapter text.",
		"chapter02_middle.md":  "## Middle\n\nSecond chapter text.",
		"chapter10_closing.md": "## Closing\n\nTenth chapter text.",
	}
	for name, content := range chapters {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return bookDir
}

func testConfig() *project.BookConfig {
	return &project.BookConfig{
		Book: project.BookMeta{
			Title:    "Assembled Works",
			Subtitle: "A Test Volume",
			Author:   "J. Doe",
		},
	}
}

func TestRun_MarkdownAssemblesInOrder(t *testing.T) {
	bookDir := seedBook(t)

	result, err := New("", "").Run(context.Background(), bookDir, testConfig(), "markdown", "")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Chapters != 3 {
		t.Errorf("assembled %d chapters, want 3", result.Chapters)
	}
	if result.OutputPath != result.ManuscriptPath {
		t.Errorf("markdown output %q should equal manuscript path %q", result.OutputPath, result.ManuscriptPath)
	}

	data, err := os.ReadFile(result.ManuscriptPath)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	if !strings.Contains(text, "# Assembled Works") {
		t.Errorf("assembled manuscript missing title page:\n%s", text[:200])
	}
	if !strings.Contains(text, "**J. Doe**") {
		t.Error("assembled manuscript missing author")
	}

	first := strings.Index(text, "First chapter text.")
	second := strings.Index(text, "Second chapter text.")
	tenth := strings.Index(text, "Tenth chapter text.")
	if first == -1 || second == -1 || tenth == -1 {
		t.Fatal("assembled manuscript missing chapter content")
	}
	if !(first < second && second < tenth) {
		t.Errorf("chapters out of order: positions %d, %d, %d", first, second, tenth)
	}
}

func TestRun_UnsupportedFormat(t *testing.T) {
	bookDir := seedBook(t)

	if _, err := New("", "").Run(context.Background(), bookDir, testConfig(), "docx", ""); err == nil {
		t.Error("Run() with unsupported format succeeded, want error")
	}
}

func TestRun_NoChapters(t *testing.T) {
	if _, err := New("", "").Run(context.Background(), t.TempDir(), testConfig(), "markdown", ""); err == nil {
		t.Error("Run() with no chapters succeeded, want error")
	}
}

func TestRun_MissingPandoc(t *testing.T) {
	bookDir := seedBook(t)

	_, err := New("definitely-not-a-real-pandoc-binary", "").Run(context.Background(), bookDir, testConfig(), "epub", "")
	if err == nil {
		t.Fatal("Run() with missing pandoc succeeded, want error")
	}
	if !strings.Contains(err.Error(), "pandoc") {
		t.Errorf("error should mention pandoc: %v", err)
	}
}

func TestFormatExtension(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"pdf", "pdf"},
		{"epub", "epub"},
		{"latex", "tex"},
	}
	for _, tt := range tests {
		if got := formatExtension(tt.format); got != tt.expected {
			t.Errorf("formatExtension(%q) = %q, want %q", tt.format, got, tt.expected)
		}
	}
}
