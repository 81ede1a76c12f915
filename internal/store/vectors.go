package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bookforge/bookforge/internal/embedding"
)

// VectorStore provides chapter embedding storage and similarity search
type VectorStore struct {
	db *DB
}

// NewVectorStore creates a new vector store
func NewVectorStore(db *DB) *VectorStore {
	return &VectorStore{db: db}
}

// ScoredChapter represents a similarity search result
type ScoredChapter struct {
	Number  int
	Score   float32
	Chapter *Chapter
}

// Upsert inserts or replaces the vector for a chapter
func (v *VectorStore) Upsert(chapterNumber int, vector []float32, model string) error {
	if len(vector) == 0 {
		return fmt.Errorf("cannot insert empty vector")
	}

	blob := vectorToBlob(vector)

	query := `
		INSERT OR REPLACE INTO chapter_embeddings (chapter_number, vector, dimension, model, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := v.db.sqlDB.Exec(query, chapterNumber, blob, len(vector), model,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert vector for chapter %d: %w", chapterNumber, err)
	}

	return nil
}

// Get retrieves the vector for a chapter
func (v *VectorStore) Get(chapterNumber int) ([]float32, error) {
	var blob []byte
	var dimension int

	query := "SELECT vector, dimension FROM chapter_embeddings WHERE chapter_number = ?"
	err := v.db.sqlDB.QueryRow(query, chapterNumber).Scan(&blob, &dimension)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("vector not found for chapter %d", chapterNumber)
		}
		return nil, fmt.Errorf("failed to get vector: %w", err)
	}

	vector, err := blobToVector(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vector: %w", err)
	}

	if len(vector) != dimension {
		return nil, fmt.Errorf("vector dimension mismatch: expected %d, got %d", dimension, len(vector))
	}

	return vector, nil
}

// SearchBefore performs cosine similarity search restricted to chapters with
// number strictly less than beforeChapter. Results are ordered by score
// descending; equal scores break toward the higher (more recent) chapter.
func (v *VectorStore) SearchBefore(queryVector []float32, beforeChapter, topK int, chapters *ChapterStore) ([]ScoredChapter, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if topK <= 0 {
		topK = 5
	}

	// Full scan is fine here: a book has at most a few hundred chapters.
	query := "SELECT chapter_number, vector FROM chapter_embeddings WHERE chapter_number < ?"
	rows, err := v.db.sqlDB.Query(query, beforeChapter)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var results []ScoredChapter

	for rows.Next() {
		var number int
		var blob []byte

		if err := rows.Scan(&number, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		vector, err := blobToVector(blob)
		if err != nil {
			continue // Skip malformed vectors
		}

		if len(vector) != len(queryVector) {
			continue
		}

		results = append(results, ScoredChapter{
			Number: number,
			Score:  embedding.Similarity(queryVector, vector),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Number > results[j].Number
	})

	if len(results) > topK {
		results = results[:topK]
	}

	if chapters != nil {
		for i := range results {
			if ch, err := chapters.Get(results[i].Number); err == nil {
				results[i].Chapter = ch
			}
		}
	}

	return results, nil
}

// Delete removes a chapter's vector
func (v *VectorStore) Delete(chapterNumber int) error {
	_, err := v.db.sqlDB.Exec("DELETE FROM chapter_embeddings WHERE chapter_number = ?", chapterNumber)
	if err != nil {
		return fmt.Errorf("failed to delete vector: %w", err)
	}
	return nil
}

// Count returns the number of vectors stored
func (v *VectorStore) Count() (int, error) {
	var count int
	err := v.db.sqlDB.QueryRow("SELECT COUNT(*) FROM chapter_embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return count, nil
}

// HasVector checks if a chapter has a stored vector
func (v *VectorStore) HasVector(chapterNumber int) (bool, error) {
	var count int
	err := v.db.sqlDB.QueryRow("SELECT COUNT(*) FROM chapter_embeddings WHERE chapter_number = ?", chapterNumber).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check vector: %w", err)
	}
	return count > 0, nil
}

// Helper functions for vector serialization

// vectorToBlob converts a float32 slice to a little-endian binary blob
func vectorToBlob(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		bits := math.Float32bits(v)
		binary.LittleEndian.PutUint32(blob[i*4:i*4+4], bits)
	}
	return blob
}

// blobToVector converts a binary blob back to a float32 slice
func blobToVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob size %d is not a multiple of 4", len(blob))
	}

	vector := make([]float32, len(blob)/4)
	for i := 0; i < len(vector); i++ {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		vector[i] = math.Float32frombits(bits)
	}

	return vector, nil
}
