package search

import "context"

// Passage is one ranked legislation excerpt.
type Passage struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	SectionNumber string  `json:"section_number,omitempty"`
	SectionTitle  string  `json:"section_title,omitempty"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
}

// Options for a legislation search.
type Options struct {
	TopK     int
	Sector   string
	MinScore float64
}

// Searcher is the legislation retrieval port. Failures are non-fatal to
// callers; an analysis proceeds with empty context.
type Searcher interface {
	Search(ctx context.Context, query string, opts Options) ([]Passage, error)
}
