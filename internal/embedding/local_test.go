package embedding

import (
	"context"
	"testing"

	"github.com/bookforge/bookforge/internal/config"
)

func newTestLocalClient(t *testing.T, dims int) *LocalClient {
	t.Helper()
	client, err := NewLocalClient(&config.EmbeddingConfig{Dimensions: dims})
	if err != nil {
		t.Fatalf("NewLocalClient() error: %v", err)
	}
	return client
}

func TestLocalClient_Deterministic(t *testing.T) {
	client := newTestLocalClient(t, 128)
	ctx := context.Background()

	text := "Deep work requires long stretches of uninterrupted focus."

	first, err := client.Embed(ctx, text)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	second, err := client.Embed(ctx, text)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	if len(first) != 128 {
		t.Fatalf("embedding dimension = %d, want 128", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("embedding not deterministic at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestLocalClient_Normalized(t *testing.T) {
	client := newTestLocalClient(t, 64)

	vec, err := client.Embed(context.Background(), "flow state and cognitive load in programming")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm < 0.99 || norm > 1.01 {
		t.Errorf("squared norm = %v, want ~1.0", norm)
	}
}

func TestLocalClient_RelevanceOrdering(t *testing.T) {
	client := newTestLocalClient(t, 256)
	ctx := context.Background()

	query, err := client.Embed(ctx, "pomodoro technique improves developer focus and productivity")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	related, err := client.Embed(ctx, "the pomodoro technique helps developer focus during productivity sprints")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	unrelated, err := client.Embed(ctx, "medieval castles used drawbridges and moats against siege weapons")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	if Similarity(query, related) <= Similarity(query, unrelated) {
		t.Errorf("related text should score higher than unrelated text: %v vs %v",
			Similarity(query, related), Similarity(query, unrelated))
	}
}

func TestLocalClient_EmptyText(t *testing.T) {
	client := newTestLocalClient(t, 64)

	if _, err := client.Embed(context.Background(), "   "); err == nil {
		t.Error("expected error for whitespace-only text")
	}
}

func TestLocalClient_EmbedBatch(t *testing.T) {
	client := newTestLocalClient(t, 64)

	vecs, err := client.EmbedBatch(context.Background(), []string{
		"chapter one introduces the problem",
		"chapter two reviews the science",
	})
	if err != nil {
		t.Fatalf("EmbedBatch() error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d embeddings, want 2", len(vecs))
	}
	for i, vec := range vecs {
		if len(vec) != 64 {
			t.Errorf("embedding %d dimension = %d, want 64", i, len(vec))
		}
	}
}
