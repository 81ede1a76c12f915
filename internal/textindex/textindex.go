// Package textindex maintains the per-book keyword index over finished
// chapters, stored under <book>/.bookforge/textindex.
package textindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// IndexDirName is the keyword index directory under the book state dir
const IndexDirName = "textindex"

// IndexPath returns the keyword index location for a book directory
func IndexPath(bookDir string) string {
	return filepath.Join(bookDir, ".bookforge", IndexDirName)
}

// chapterDoc is the indexed document shape
type chapterDoc struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Hit is one keyword search result
type Hit struct {
	Number int
	Title  string
	Score  float64
}

// Index is a bleve-backed keyword index over chapter text
type Index struct {
	index bleve.Index
}

// Open opens the keyword index for a book, creating it when absent
func Open(bookDir string) (*Index, error) {
	dir := IndexPath(bookDir)

	index, err := bleve.Open(dir)
	if err == bleve.ErrorIndexPathDoesNotExist {
		if mkErr := os.MkdirAll(filepath.Dir(dir), 0755); mkErr != nil {
			return nil, fmt.Errorf("create text index dir: %w", mkErr)
		}
		index, err = bleve.New(dir, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open text index: %w", err)
	}

	return &Index{index: index}, nil
}

// Rebuild discards any existing index for the book and creates a fresh one
func Rebuild(bookDir string) (*Index, error) {
	dir := IndexPath(bookDir)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("reset text index dir: %w", err)
	}
	return Open(bookDir)
}

// IndexChapter adds or replaces a chapter in the index. Re-indexing the
// same chapter number replaces the previous document.
func (ix *Index) IndexChapter(number int, title, content string) error {
	if number < 1 {
		return fmt.Errorf("chapter number must be >= 1, got %d", number)
	}
	doc := chapterDoc{Number: number, Title: title, Content: content}
	if err := ix.index.Index(docID(number), doc); err != nil {
		return fmt.Errorf("index chapter %d: %w", number, err)
	}
	return nil
}

// Delete removes a chapter from the index
func (ix *Index) Delete(number int) error {
	return ix.index.Delete(docID(number))
}

// Search runs a keyword query over chapter titles and content. Title
// matches are boosted over body matches.
func (ix *Index) Search(query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 10
	}

	contentQuery := bleve.NewMatchQuery(query)
	contentQuery.SetField("content")
	contentQuery.SetBoost(1.0)
	titleQuery := bleve.NewMatchQuery(query)
	titleQuery.SetField("title")
	titleQuery.SetBoost(2.0)

	disjunction := bleve.NewDisjunctionQuery([]blevequery.Query{contentQuery, titleQuery}...)

	req := bleve.NewSearchRequestOptions(disjunction, topK, 0, false)
	req.Fields = []string{"number", "title"}

	res, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	var hits []Hit
	for _, hit := range res.Hits {
		title, _ := hit.Fields["title"].(string)
		hits = append(hits, Hit{
			Number: parseNumberField(hit.Fields["number"], hit.ID),
			Title:  title,
			Score:  hit.Score,
		})
	}
	return hits, nil
}

// DocCount returns the number of indexed chapters
func (ix *Index) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

// Close releases the index
func (ix *Index) Close() error {
	return ix.index.Close()
}

func docID(number int) string {
	return strconv.Itoa(number)
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = "content"

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.Index = true
	docMapping.AddFieldMappingsAt("content", contentField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true
	titleField.Index = true
	docMapping.AddFieldMappingsAt("title", titleField)

	numberField := bleve.NewNumericFieldMapping()
	numberField.Store = true
	numberField.Index = false
	docMapping.AddFieldMappingsAt("number", numberField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func parseNumberField(val any, id string) int {
	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	return 0
}
