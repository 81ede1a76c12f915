package coherence

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bookforge/bookforge/internal/aiclient"
)

// TextIndexer receives finished chapters for keyword indexing. Failures
// are reported as warnings, never as generation failures.
type TextIndexer interface {
	IndexChapter(number int, title, content string) error
}

// Generator drafts chapters through an AI provider, feeding it context
// retrieved from the chapter memory and indexing the result.
type Generator struct {
	memory    *Memory
	provider  aiclient.Provider
	opts      aiclient.Options
	bookTitle string
	style     Style
	outDir    string
	text      TextIndexer
}

// GeneratorOptions configures a Generator
type GeneratorOptions struct {
	BookTitle string
	Style     Style
	// OutDir is the directory chapter files are written to,
	// conventionally <book>/outputs/chapters
	OutDir      string
	AIOptions   aiclient.Options
	TextIndexer TextIndexer
}

// ChapterRequest describes one chapter to draft
type ChapterRequest struct {
	Number  int
	Title   string
	Outline string
}

// ChapterResult reports a successful draft
type ChapterResult struct {
	Path      string
	Content   string
	WordCount int
	Context   *ContextResult
	// IndexWarning is non-empty when the draft was written but could
	// not be indexed
	IndexWarning string
}

// NewGenerator creates a chapter generator. memory may be degraded;
// provider must not be nil.
func NewGenerator(memory *Memory, provider aiclient.Provider, opts GeneratorOptions) (*Generator, error) {
	if memory == nil {
		return nil, fmt.Errorf("chapter memory is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("AI provider is required")
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	style := opts.Style
	if style.TechnicalPct <= 0 && style.NarrativePct <= 0 {
		style = DefaultStyle()
	}

	aiOpts := opts.AIOptions
	if aiOpts.MaxTokens <= 0 && aiOpts.Timeout <= 0 {
		aiOpts = aiclient.DefaultOptions()
	}

	return &Generator{
		memory:    memory,
		provider:  provider,
		opts:      aiOpts,
		bookTitle: opts.BookTitle,
		style:     style,
		outDir:    opts.OutDir,
		text:      opts.TextIndexer,
	}, nil
}

// WriteChapter drafts one chapter: retrieve context from earlier
// chapters, generate, write the chapter file, then index it. Generation
// or write failures leave no file and no store mutation; indexing
// failures only produce a warning on the result.
func (g *Generator) WriteChapter(ctx context.Context, req ChapterRequest) (*ChapterResult, error) {
	if req.Number < 1 {
		return nil, fmt.Errorf("chapter number must be >= 1, got %d", req.Number)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("chapter title is empty")
	}
	if strings.TrimSpace(req.Outline) == "" {
		return nil, fmt.Errorf("chapter outline is empty")
	}

	query := req.Title + "\n" + req.Outline
	cres, err := g.memory.ChapterContext(ctx, req.Number, query)
	if err != nil {
		return nil, err
	}
	if cres.Degraded {
		log.Printf("Warning: drafting chapter %d without retrieved context (%s)", req.Number, cres.Reason)
	}

	prompt := BuildChapterPrompt(g.bookTitle, req.Number, req.Title, req.Outline, cres.Text, g.style)

	content, err := g.provider.Generate(ctx, prompt, g.opts)
	if err != nil {
		return nil, fmt.Errorf("chapter %d generation failed: %w", req.Number, err)
	}
	content = strings.TrimSpace(content) + "\n"

	if err := os.MkdirAll(g.outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chapter directory: %w", err)
	}

	path := filepath.Join(g.outDir, ChapterFileName(req.Number, req.Title))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write chapter file: %w", err)
	}

	result := &ChapterResult{
		Path:      path,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		Context:   cres,
	}

	// The draft is on disk; indexing problems must not lose it
	meta := ChapterMeta{Title: req.Title, WordCount: result.WordCount, ContentPath: path}
	if err := g.memory.IndexChapter(ctx, req.Number, content, meta); err != nil {
		result.IndexWarning = fmt.Sprintf("chapter saved but not indexed: %v", err)
		log.Printf("Warning: %s", result.IndexWarning)
	} else if g.text != nil {
		if err := g.text.IndexChapter(req.Number, req.Title, content); err != nil {
			result.IndexWarning = fmt.Sprintf("chapter saved but keyword index update failed: %v", err)
			log.Printf("Warning: %s", result.IndexWarning)
		}
	}

	return result, nil
}

var fileNameCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// ChapterFileName builds the canonical chapter file name, e.g.
// "chapter03_deep_work.md" for chapter 3 "Deep Work"
func ChapterFileName(number int, title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = fileNameCleaner.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "untitled"
	}
	return fmt.Sprintf("chapter%02d_%s.md", number, slug)
}
