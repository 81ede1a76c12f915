// Package humanize rewrites drafted chapters for narrative flow while
// keeping their factual content intact.
package humanize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bookforge/bookforge/internal/aiclient"
)

// chapterGlob matches drafted chapter files under the book root
const chapterGlob = "outputs/chapters/chapter*.md"

// Humanizer rewrites chapters through an AI provider
type Humanizer struct {
	provider aiclient.Provider
	opts     aiclient.Options
}

// New creates a humanizer. A provider is required; there is no
// meaningful non-AI rewrite.
func New(provider aiclient.Provider, opts aiclient.Options) (*Humanizer, error) {
	if provider == nil {
		return nil, fmt.Errorf("humanize requires an AI provider")
	}
	return &Humanizer{provider: provider, opts: opts}, nil
}

// Result reports one rewritten chapter
type Result struct {
	Path      string
	WordCount int
}

// ChapterFiles lists the drafted chapter files in chapter order. When
// chapter > 0 only that chapter's file is returned.
func ChapterFiles(bookDir string, chapter int) ([]string, error) {
	fsys := os.DirFS(bookDir)
	matches, err := doublestar.Glob(fsys, chapterGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to glob chapters: %w", err)
	}
	sort.Strings(matches)

	var files []string
	for _, m := range matches {
		if chapter > 0 && !strings.HasPrefix(filepath.Base(m), fmt.Sprintf("chapter%02d_", chapter)) {
			continue
		}
		files = append(files, filepath.Join(bookDir, m))
	}

	if len(files) == 0 {
		if chapter > 0 {
			return nil, fmt.Errorf("no drafted file found for chapter %d", chapter)
		}
		return nil, fmt.Errorf("no drafted chapters found under %s", filepath.Join(bookDir, "outputs", "chapters"))
	}
	return files, nil
}

// Run rewrites the selected chapters in place. narrativePct sets the
// target share of narrative voice. Each file is only replaced after its
// rewrite succeeds, so a mid-run failure leaves earlier chapters done
// and later ones untouched. done, when non-nil, is called after each
// completed chapter.
func (h *Humanizer) Run(ctx context.Context, bookDir string, chapter, narrativePct int, done func(Result)) ([]Result, error) {
	if narrativePct <= 0 || narrativePct >= 100 {
		narrativePct = 40
	}

	files, err := ChapterFiles(bookDir, chapter)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return results, fmt.Errorf("failed to read %s: %w", path, err)
		}

		rewritten, err := h.provider.Generate(ctx, buildHumanizePrompt(string(data), narrativePct), h.opts)
		if err != nil {
			return results, fmt.Errorf("rewrite of %s failed: %w", filepath.Base(path), err)
		}
		rewritten = strings.TrimSpace(rewritten)
		if rewritten == "" {
			return results, fmt.Errorf("rewrite of %s produced no text", filepath.Base(path))
		}
		rewritten += "\n"

		if err := os.WriteFile(path, []byte(rewritten), 0644); err != nil {
			return results, fmt.Errorf("failed to write %s: %w", path, err)
		}
		res := Result{Path: path, WordCount: len(strings.Fields(rewritten))}
		results = append(results, res)
		if done != nil {
			done(res)
		}
	}

	return results, nil
}

func buildHumanizePrompt(content string, narrativePct int) string {
	return fmt.Sprintf(`You are an editor making a technical book chapter more engaging without losing rigor.

Rewrite the chapter below with roughly %d%% narrative voice and %d%% technical depth.

Rules:
- Keep every factual claim, citation and number exactly as written
- Keep the Markdown structure (headings, lists, tables)
- Improve transitions, openings and examples
- Prefer active voice and concrete scenes over abstract description
- Do not add new claims

Chapter:
%s

Output only the rewritten chapter.
`, narrativePct, 100-narrativePct, content)
}
