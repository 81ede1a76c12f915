// Package research finds literature for a book topic and synthesizes
// the findings into citable notes.
package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Paper is one literature search result
type Paper struct {
	Title     string
	Authors   []string
	Abstract  string
	URL       string
	Published int
	Source    string
}

// ArxivClient queries the arXiv Atom API
type ArxivClient struct {
	endpoint string
	client   *http.Client
}

// NewArxivClient creates an arXiv client. endpoint defaults to the
// public export API.
func NewArxivClient(endpoint string) *ArxivClient {
	if endpoint == "" {
		endpoint = "https://export.arxiv.org/api/query"
	}
	return &ArxivClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Atom feed shapes for the arXiv response
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Search runs a relevance-sorted query against arXiv
func (c *ArxivClient) Search(ctx context.Context, query string, limit int) ([]Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", limit))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("arxiv returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read arxiv response: %w", err)
	}

	return ParseAtomFeed(body)
}

// ParseAtomFeed decodes an arXiv Atom feed into papers
func ParseAtomFeed(data []byte) ([]Paper, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		p := Paper{
			Title:    normalizeWhitespace(entry.Title),
			Abstract: normalizeWhitespace(entry.Summary),
			URL:      strings.TrimSpace(entry.ID),
			Source:   "arXiv",
		}
		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
		if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			p.Published = t.Year()
		}
		if p.Title != "" {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// normalizeWhitespace collapses the newline-wrapped text arXiv returns
// into single-space prose
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
