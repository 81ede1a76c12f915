package store

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "embeddings.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUpsertChapter(t *testing.T, s *ChapterStore, number int, title string) {
	t.Helper()
	if err := s.Upsert(&Chapter{Number: number, Title: title, WordCount: 100}); err != nil {
		t.Fatalf("Upsert(%d) error = %v", number, err)
	}
}

func TestChapterStore_UpsertAndGet(t *testing.T) {
	s := NewChapterStore(openTestDB(t))

	ch := &Chapter{
		Number:      3,
		Title:       "Deep Work",
		WordCount:   4200,
		Synopsis:    "Focus beats hours.",
		ContentPath: "outputs/chapters/chapter03_deep_work.md",
	}
	if err := s.Upsert(ch); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := s.Get(3)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != ch.Title || got.WordCount != ch.WordCount || got.Synopsis != ch.Synopsis {
		t.Errorf("Get() = %+v, want %+v", got, ch)
	}
	if got.IndexedAt.IsZero() {
		t.Error("Get() IndexedAt is zero, want a timestamp")
	}
}

func TestChapterStore_UpsertReplaces(t *testing.T) {
	s := NewChapterStore(openTestDB(t))

	mustUpsertChapter(t, s, 1, "Draft")
	mustUpsertChapter(t, s, 1, "Final")

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	got, err := s.Get(1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Final" {
		t.Errorf("Get().Title = %q, want %q", got.Title, "Final")
	}
}

func TestChapterStore_ListBefore(t *testing.T) {
	s := NewChapterStore(openTestDB(t))

	for _, n := range []int{1, 2, 3, 4, 5} {
		mustUpsertChapter(t, s, n, "Chapter")
	}

	got, err := s.ListBefore(4)
	if err != nil {
		t.Fatalf("ListBefore(4) error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListBefore(4) returned %d chapters, want 3", len(got))
	}
	for i, ch := range got {
		if ch.Number != i+1 {
			t.Errorf("ListBefore(4)[%d].Number = %d, want %d", i, ch.Number, i+1)
		}
	}

	got, err = s.ListBefore(1)
	if err != nil {
		t.Fatalf("ListBefore(1) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListBefore(1) returned %d chapters, want 0", len(got))
	}
}

func TestChapterStore_Validation(t *testing.T) {
	s := NewChapterStore(openTestDB(t))

	if err := s.Upsert(&Chapter{Number: 0, Title: "Zero"}); err == nil {
		t.Error("Upsert() with number 0 succeeded, want error")
	}
	if err := s.Upsert(&Chapter{Number: 1}); err == nil {
		t.Error("Upsert() with empty title succeeded, want error")
	}
}

func TestVectorStore_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	chapters := NewChapterStore(db)
	vectors := NewVectorStore(db)

	mustUpsertChapter(t, chapters, 1, "Chapter")

	want := []float32{0.25, -1.5, 3.0}
	if err := vectors.Upsert(1, want, "local-hashing-v1"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := vectors.Get(1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Get() returned %d dims, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Get()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	has, err := vectors.HasVector(1)
	if err != nil {
		t.Fatalf("HasVector() error = %v", err)
	}
	if !has {
		t.Error("HasVector(1) = false, want true")
	}
}

func TestVectorStore_SearchBefore_ExcludesLaterChapters(t *testing.T) {
	db := openTestDB(t)
	chapters := NewChapterStore(db)
	vectors := NewVectorStore(db)

	// Chapter 2 matches the query exactly but sits at and past the bound.
	for n, vec := range map[int][]float32{
		1: {0, 1, 0},
		2: {1, 0, 0},
		3: {1, 0, 0},
	} {
		mustUpsertChapter(t, chapters, n, "Chapter")
		if err := vectors.Upsert(n, vec, "test"); err != nil {
			t.Fatalf("Upsert(%d) error = %v", n, err)
		}
	}

	got, err := vectors.SearchBefore([]float32{1, 0, 0}, 2, 10, nil)
	if err != nil {
		t.Fatalf("SearchBefore() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("SearchBefore() returned %d results, want 1", len(got))
	}
	if got[0].Number != 1 {
		t.Errorf("SearchBefore()[0].Number = %d, want 1", got[0].Number)
	}
}

func TestVectorStore_SearchBefore_TieBreaksTowardRecent(t *testing.T) {
	db := openTestDB(t)
	chapters := NewChapterStore(db)
	vectors := NewVectorStore(db)

	// Identical vectors give identical scores.
	for _, n := range []int{1, 2, 3} {
		mustUpsertChapter(t, chapters, n, "Chapter")
		if err := vectors.Upsert(n, []float32{0, 1, 0}, "test"); err != nil {
			t.Fatalf("Upsert(%d) error = %v", n, err)
		}
	}

	got, err := vectors.SearchBefore([]float32{0, 1, 0}, 10, 10, chapters)
	if err != nil {
		t.Fatalf("SearchBefore() error = %v", err)
	}
	wantOrder := []int{3, 2, 1}
	if len(got) != len(wantOrder) {
		t.Fatalf("SearchBefore() returned %d results, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].Number != want {
			t.Errorf("SearchBefore()[%d].Number = %d, want %d", i, got[i].Number, want)
		}
		if got[i].Chapter == nil {
			t.Errorf("SearchBefore()[%d].Chapter = nil, want metadata", i)
		}
	}
}

func TestVectorStore_SearchBefore_SkipsMismatchedDimensions(t *testing.T) {
	db := openTestDB(t)
	chapters := NewChapterStore(db)
	vectors := NewVectorStore(db)

	mustUpsertChapter(t, chapters, 1, "Chapter")
	mustUpsertChapter(t, chapters, 2, "Chapter")
	if err := vectors.Upsert(1, []float32{1, 0}, "old-model"); err != nil {
		t.Fatalf("Upsert(1) error = %v", err)
	}
	if err := vectors.Upsert(2, []float32{1, 0, 0}, "test"); err != nil {
		t.Fatalf("Upsert(2) error = %v", err)
	}

	got, err := vectors.SearchBefore([]float32{1, 0, 0}, 10, 10, nil)
	if err != nil {
		t.Fatalf("SearchBefore() error = %v", err)
	}
	if len(got) != 1 || got[0].Number != 2 {
		t.Errorf("SearchBefore() = %+v, want only chapter 2", got)
	}
}

func TestChapterDelete_CascadesToVector(t *testing.T) {
	db := openTestDB(t)
	chapters := NewChapterStore(db)
	vectors := NewVectorStore(db)

	mustUpsertChapter(t, chapters, 1, "Chapter")
	if err := vectors.Upsert(1, []float32{1, 0, 0}, "test"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := chapters.Delete(1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	has, err := vectors.HasVector(1)
	if err != nil {
		t.Fatalf("HasVector() error = %v", err)
	}
	if has {
		t.Error("HasVector(1) = true after chapter delete, want false")
	}
}

func TestDB_Stats(t *testing.T) {
	db := openTestDB(t)
	chapters := NewChapterStore(db)
	vectors := NewVectorStore(db)

	for _, n := range []int{1, 2} {
		if err := chapters.Upsert(&Chapter{Number: n, Title: "Chapter", WordCount: 500}); err != nil {
			t.Fatalf("Upsert(%d) error = %v", n, err)
		}
	}
	if err := vectors.Upsert(1, []float32{1, 0, 0}, "test"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.ChapterCount != 2 {
		t.Errorf("Stats().ChapterCount = %d, want 2", stats.ChapterCount)
	}
	if stats.EmbeddingCount != 1 {
		t.Errorf("Stats().EmbeddingCount = %d, want 1", stats.EmbeddingCount)
	}
	if stats.TotalWords != 1000 {
		t.Errorf("Stats().TotalWords = %d, want 1000", stats.TotalWords)
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	want := []float32{0, -0.5, 1.25, 3.75}
	got, err := blobToVector(vectorToBlob(want))
	if err != nil {
		t.Fatalf("blobToVector() error = %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("round trip [%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := blobToVector([]byte{1, 2, 3}); err == nil {
		t.Error("blobToVector() with truncated blob succeeded, want error")
	}
}
