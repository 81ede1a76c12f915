package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/bookforge/bookforge/internal/config"
)

// LocalClient is a deterministic, offline embedding backend. It hashes
// term frequencies into a fixed-dimension vector and L2-normalizes the
// result, so the same text always encodes to the same vector with no
// network access and no corpus preparation step.
type LocalClient struct {
	dimensions   int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

const localModelName = "local-hashing-v1"

// NewLocalClient creates a new local hashing embedding client
func NewLocalClient(cfg *config.EmbeddingConfig) (*LocalClient, error) {
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = 512
	}
	return &LocalClient{
		dimensions:   dims,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}, nil
}

// Embed computes the hashed term-frequency embedding for the given text
func (c *LocalClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	vec := make([]float32, c.dimensions)
	total := 0
	for _, tok := range c.tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		idx := int(h.Sum32()) % c.dimensions
		if idx < 0 {
			idx += c.dimensions
		}
		// Alternate sign by a second hash bit to reduce collisions
		// collapsing into pure accumulation.
		if h.Sum32()&1 == 0 {
			vec[idx]++
		} else {
			vec[idx]--
		}
		total++
	}

	if total == 0 {
		// Text contained only stopwords or symbols; a zero vector is
		// still a valid (if uninformative) encoding.
		return vec, nil
	}

	// L2 normalize
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts
func (c *LocalClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the dimension of the embeddings
func (c *LocalClient) Dimensions() int {
	return c.dimensions
}

// Model returns the identifier of this embedding backend
func (c *LocalClient) Model() string {
	return localModelName
}

func (c *LocalClient) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := c.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := c.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
