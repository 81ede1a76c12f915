package coherence

import (
	"fmt"
	"strings"
)

const (
	contextHeader = "--- ESTABLISHED IN EARLIER CHAPTERS ---"
	contextFooter = "--- END OF ESTABLISHED MATERIAL ---"
)

// Style controls the voice the chapter prompt asks for
type Style struct {
	TechnicalPct int
	NarrativePct int
	Language     string
}

// DefaultStyle matches the stock book configuration
func DefaultStyle() Style {
	return Style{TechnicalPct: 60, NarrativePct: 40, Language: "English"}
}

// BuildChapterPrompt assembles the drafting prompt for one chapter. The
// context block, when present, is wrapped in explicit delimiters so the
// model can tell established material apart from the outline.
func BuildChapterPrompt(bookTitle string, number int, title, outline, contextBlock string, style Style) string {
	if style.TechnicalPct <= 0 && style.NarrativePct <= 0 {
		style = DefaultStyle()
	}
	if style.Language == "" {
		style.Language = "English"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are writing Chapter %d of %q, an evidence-based book.\n\n", number, bookTitle)
	fmt.Fprintf(&b, "## Chapter %d: %s\n\n", number, title)
	b.WriteString(strings.TrimSpace(outline))
	b.WriteString("\n")

	if strings.TrimSpace(contextBlock) != "" {
		b.WriteString("\nMaintain consistency with what earlier chapters already established:\n\n")
		b.WriteString(contextHeader)
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(contextBlock))
		b.WriteString("\n")
		b.WriteString(contextFooter)
		b.WriteString("\n")
		b.WriteString("\nDo not contradict or re-introduce this material. Build on it.\n")
	}

	b.WriteString("\nRequirements:\n")
	fmt.Fprintf(&b, "- Write in %s\n", style.Language)
	fmt.Fprintf(&b, "- Balance roughly %d%% technical depth with %d%% narrative flow\n",
		style.TechnicalPct, style.NarrativePct)
	b.WriteString("- 4,000-5,000 words\n")
	b.WriteString("- Cite concrete evidence for every empirical claim\n")
	b.WriteString("- Use Markdown with ## section headings\n")
	b.WriteString("\nWrite the complete chapter now. Output only the chapter text.\n")

	return b.String()
}
