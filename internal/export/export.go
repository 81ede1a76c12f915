// Package export assembles drafted chapters into a single manuscript
// and renders it to distributable formats through pandoc.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bookforge/bookforge/internal/project"
)

// Formats lists the supported export formats
var Formats = []string{"markdown", "pdf", "epub", "latex"}

// Exporter renders the assembled manuscript
type Exporter struct {
	pandocBin string
	pdfEngine string
}

// New creates an exporter. pandocBin defaults to "pandoc", pdfEngine to
// "xelatex".
func New(pandocBin, pdfEngine string) *Exporter {
	if pandocBin == "" {
		pandocBin = "pandoc"
	}
	if pdfEngine == "" {
		pdfEngine = "xelatex"
	}
	return &Exporter{pandocBin: pandocBin, pdfEngine: pdfEngine}
}

// Result reports an export run
type Result struct {
	// ManuscriptPath is the assembled Markdown, written for every format
	ManuscriptPath string
	// OutputPath is the rendered artifact; equals ManuscriptPath for
	// the markdown format
	OutputPath string
	Chapters   int
}

// Run assembles the chapters in order and renders the requested format.
// The assembled Markdown always lands at outputs/book.md.
func (e *Exporter) Run(ctx context.Context, bookDir string, cfg *project.BookConfig, format, output string) (*Result, error) {
	if !validFormat(format) {
		return nil, fmt.Errorf("unsupported export format %q (choose one of %s)", format, strings.Join(Formats, ", "))
	}

	files, err := chapterFiles(bookDir)
	if err != nil {
		return nil, err
	}

	assembled, err := assemble(cfg, files)
	if err != nil {
		return nil, err
	}

	outDir := filepath.Join(bookDir, "outputs")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	result := &Result{
		ManuscriptPath: filepath.Join(outDir, "book.md"),
		Chapters:       len(files),
	}
	if err := os.WriteFile(result.ManuscriptPath, []byte(assembled), 0644); err != nil {
		return nil, fmt.Errorf("failed to write assembled manuscript: %w", err)
	}

	if format == "markdown" {
		result.OutputPath = result.ManuscriptPath
		return result, nil
	}

	result.OutputPath = output
	if result.OutputPath == "" {
		result.OutputPath = filepath.Join(outDir, "book."+formatExtension(format))
	}

	if err := e.renderWithPandoc(ctx, result.ManuscriptPath, result.OutputPath, format); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Exporter) renderWithPandoc(ctx context.Context, input, output, format string) error {
	args := []string{input, "-o", output, "--from", "markdown", "--toc"}
	if format == "pdf" {
		args = append(args, "--pdf-engine", e.pdfEngine)
	}

	cmd := exec.CommandContext(ctx, e.pandocBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return fmt.Errorf("pandoc not found (install it, or use -format markdown)")
		}
		return fmt.Errorf("pandoc failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// chapterFiles returns drafted chapter paths in chapter order. The
// chapterNN_ file naming makes lexical order equal chapter order.
func chapterFiles(bookDir string) ([]string, error) {
	fsys := os.DirFS(bookDir)
	matches, err := doublestar.Glob(fsys, "outputs/chapters/chapter*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to glob chapters: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no drafted chapters to export under %s", filepath.Join(bookDir, "outputs", "chapters"))
	}
	sort.Strings(matches)

	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(bookDir, m)
	}
	return files, nil
}

func assemble(cfg *project.BookConfig, files []string) (string, error) {
	var b strings.Builder

	title := "Untitled"
	author := ""
	if cfg != nil {
		if cfg.Book.Title != "" {
			title = cfg.Book.Title
		}
		author = cfg.Book.Author
	}

	fmt.Fprintf(&b, "# %s\n\n", title)
	if cfg != nil && cfg.Book.Subtitle != "" {
		fmt.Fprintf(&b, "*%s*\n\n", cfg.Book.Subtitle)
	}
	if author != "" {
		fmt.Fprintf(&b, "**%s**\n\n", author)
	}
	fmt.Fprintf(&b, "%s\n\n", time.Now().Format("January 2006"))

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		b.WriteString("\\newpage\n\n")
		b.Write(bytes.TrimSpace(data))
		b.WriteString("\n\n")
	}

	return b.String(), nil
}

func validFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

func formatExtension(format string) string {
	if format == "latex" {
		return "tex"
	}
	return format
}
