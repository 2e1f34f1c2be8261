// Package keyword provides full-text indexing and search over reply suggestions.
package keyword

import (
	"context"

	"github.com/hyperjump/tuvan/internal/models"
)

// SearchOptions optional parameters for suggestion search. Nil means use defaults.
type SearchOptions struct {
	// Component restricts hits to replies that mention this component category.
	Component string
	// FuzzyEnabled enables fuzzy matching for typo tolerance ("ryzn" finds "ryzen").
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance for fuzzy matching (1 or 2).
	// Default is 1 when FuzzyEnabled is true.
	Fuzziness int
}

// SuggestionIndex defines suggestion search operations.
type SuggestionIndex interface {
	IndexThread(ctx context.Context, ta *models.ThreadAnalysis) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) (*SearchResponse, error)
	DeleteThread(ctx context.Context, threadID string) error
	Close() error
	// DocCount returns the total number of indexed replies.
	DocCount() (uint64, error)
}

// SearchResponse is the body returned by the search endpoint. Total is the number of
// matching replies; Hits holds at most the requested limit.
type SearchResponse struct {
	Query string `json:"query"`
	Total int    `json:"total"`
	Hits  []*Hit `json:"hits"`
}

// Hit is a single search result: one reply.
type Hit struct {
	ID         string   `json:"id"`
	Score      float64  `json:"score"`
	ThreadID   string   `json:"thread_id"`
	PostID     string   `json:"post_id"`
	Title      string   `json:"title"`
	User       string   `json:"user"`
	Components []string `json:"components"`
	Snippet    string   `json:"snippet"`
}

// Document is the indexed form of one reply.
type Document struct {
	ThreadID   string   `json:"thread_id"`
	PostID     string   `json:"post_id"`
	Title      string   `json:"title"`
	User       string   `json:"user"`
	PostDate   string   `json:"post_date"`
	Content    string   `json:"content"`
	Components []string `json:"components"`
	Brands     []string `json:"brands"`
	MaxPrice   float64  `json:"max_price"`
}
