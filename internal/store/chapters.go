package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ChapterStore provides chapter metadata storage operations
type ChapterStore struct {
	db *DB
}

// NewChapterStore creates a new chapter store
func NewChapterStore(db *DB) *ChapterStore {
	return &ChapterStore{db: db}
}

// Upsert inserts or replaces a chapter record keyed by chapter number
func (s *ChapterStore) Upsert(ch *Chapter) error {
	if ch.Number < 1 {
		return fmt.Errorf("chapter number must be >= 1, got %d", ch.Number)
	}
	if ch.Title == "" {
		return fmt.Errorf("chapter title is empty")
	}

	query := `
		INSERT OR REPLACE INTO chapters (chapter_number, title, word_count, synopsis, content_path, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.sqlDB.Exec(query,
		ch.Number, ch.Title, ch.WordCount, ch.Synopsis, ch.ContentPath,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert chapter %d: %w", ch.Number, err)
	}

	return nil
}

// Get retrieves a chapter by number
func (s *ChapterStore) Get(number int) (*Chapter, error) {
	query := `
		SELECT chapter_number, title, word_count, synopsis, content_path, indexed_at
		FROM chapters WHERE chapter_number = ?
	`

	ch, err := scanChapter(s.db.sqlDB.QueryRow(query, number))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("chapter %d not found", number)
		}
		return nil, fmt.Errorf("failed to get chapter %d: %w", number, err)
	}

	return ch, nil
}

// ListBefore returns all chapters with number strictly less than the given
// chapter, ordered by chapter number ascending
func (s *ChapterStore) ListBefore(number int) ([]*Chapter, error) {
	query := `
		SELECT chapter_number, title, word_count, synopsis, content_path, indexed_at
		FROM chapters WHERE chapter_number < ?
		ORDER BY chapter_number ASC
	`

	rows, err := s.db.sqlDB.Query(query, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters before %d: %w", number, err)
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chapters: %w", err)
	}

	return chapters, nil
}

// List returns all chapters ordered by chapter number ascending
func (s *ChapterStore) List() ([]*Chapter, error) {
	// Strictly-less-than a number above any realistic chapter count
	return s.ListBefore(1 << 30)
}

// Delete removes a chapter record and, via cascade, its embedding
func (s *ChapterStore) Delete(number int) error {
	_, err := s.db.sqlDB.Exec("DELETE FROM chapters WHERE chapter_number = ?", number)
	if err != nil {
		return fmt.Errorf("failed to delete chapter %d: %w", number, err)
	}
	return nil
}

// Count returns the number of indexed chapters
func (s *ChapterStore) Count() (int, error) {
	var count int
	if err := s.db.sqlDB.QueryRow("SELECT COUNT(*) FROM chapters").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanChapter
type scanner interface {
	Scan(dest ...any) error
}

func scanChapter(row scanner) (*Chapter, error) {
	var ch Chapter
	var indexedAt string

	if err := row.Scan(&ch.Number, &ch.Title, &ch.WordCount, &ch.Synopsis, &ch.ContentPath, &indexedAt); err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, indexedAt); err == nil {
		ch.IndexedAt = t
	}

	return &ch, nil
}
