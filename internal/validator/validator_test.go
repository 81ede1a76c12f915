package validator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bookforge/bookforge/internal/aiclient"
)

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Generate(ctx context.Context, prompt string, opts aiclient.Options) (string, error) {
	return "", errors.New("provider down")
}

func writeManuscript(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manuscript.md"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLexicalReport_FlagsAbsolutes(t *testing.T) {
	report := LexicalReport("This approach always works and is never wrong.")

	if !strings.Contains(report, "'always'") {
		t.Errorf("report missing 'always' flag:\n%s", report)
	}
	if !strings.Contains(report, "'never'") {
		t.Errorf("report missing 'never' flag:\n%s", report)
	}
}

func TestLexicalReport_FlagsWeaselOveruse(t *testing.T) {
	text := strings.Repeat("This might be true. ", 6)

	report := LexicalReport(text)

	if !strings.Contains(report, "Overuse of 'might'") {
		t.Errorf("report missing weasel-word flag:\n%s", report)
	}
}

func TestLexicalReport_CleanText(t *testing.T) {
	report := LexicalReport("The study measured a 12% improvement with p < 0.05.")

	if !strings.Contains(report, "No automated issues found.") {
		t.Errorf("clean text should produce no issues:\n%s", report)
	}
}

func TestRun_FallsBackToLexical(t *testing.T) {
	dir := writeManuscript(t, "Developers always benefit from this technique.")

	v := New(failingProvider{}, aiclient.DefaultOptions())

	report, err := v.Run(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !report.Lexical {
		t.Error("failed provider should force the lexical report")
	}
	if !strings.Contains(report.Text, "'always'") {
		t.Errorf("lexical report missing flag:\n%s", report.Text)
	}

	data, err := os.ReadFile(report.ReportPath)
	if err != nil {
		t.Fatalf("reading report file: %v", err)
	}
	if !strings.Contains(string(data), "Argument Validation Report") {
		t.Errorf("report file missing header:\n%s", string(data))
	}
}

func TestRun_MissingManuscript(t *testing.T) {
	v := New(nil, aiclient.DefaultOptions())
	if _, err := v.Run(context.Background(), t.TempDir(), false); err == nil {
		t.Error("Run() without manuscript succeeded, want error")
	}
}

func TestBuildValidationPrompt_Strict(t *testing.T) {
	prompt := buildValidationPrompt("text", true)
	if !strings.Contains(prompt, "extremely strict") {
		t.Error("strict prompt missing strictness instruction")
	}
	for _, f := range Fallacies[:3] {
		if !strings.Contains(prompt, f) {
			t.Errorf("prompt missing fallacy %q", f)
		}
	}
}
