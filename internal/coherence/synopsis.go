package coherence

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// Synopsize produces a short extractive summary of chapter content by
// ranking sentences on normalized token frequency and keeping the top
// maxSentences in their original order. Markdown headings and code
// fences are dropped first so the synopsis reads as prose.
func Synopsize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 3
	}

	prose := stripMarkdown(text)

	sentences := sentencePattern.FindAllString(prose, -1)
	if len(sentences) == 0 {
		return firstRunes(strings.TrimSpace(prose), 400)
	}

	// Token frequencies across the chapter
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	// Score sentences, normalizing by length to avoid run-on bias
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		s := 0.0
		toks := tokens(sent)
		for _, tok := range toks {
			s += freq[tok]
		}
		if l := float64(len(toks)); l > 0 {
			s /= math.Sqrt(l)
		}
		scores[i] = scored{i, s}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	var out []string
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " ")
}

func tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// stripMarkdown removes headings, code fences and emphasis markers,
// keeping plain sentences for the summarizer
func stripMarkdown(text string) string {
	var b strings.Builder
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		trimmed = strings.ReplaceAll(trimmed, "**", "")
		trimmed = strings.TrimPrefix(trimmed, "- ")
		trimmed = strings.TrimPrefix(trimmed, "* ")
		if trimmed == "" {
			continue
		}
		b.WriteString(trimmed)
		b.WriteString(" ")
	}
	return b.String()
}

// firstRunes truncates s to at most n runes. The cut is rune-aligned so
// truncation of UTF-8 text is deterministic and never splits a character.
func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
