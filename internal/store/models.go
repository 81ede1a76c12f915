package store

import "time"

// Chapter is one indexed chapter's metadata record
type Chapter struct {
	Number      int
	Title       string
	WordCount   int
	Synopsis    string
	ContentPath string
	IndexedAt   time.Time
}
