package models

import "time"

// UnitMillion is the canonical money unit: millions of Vietnamese đồng.
const UnitMillion = "triệu"

// MoneyValue is a monetary amount expressed in millions of VND.
type MoneyValue struct {
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	OriginalText string  `json:"original_text"`
}

// KeywordMatch is one occurrence of a dictionary keyword in normalized text.
// Position is a rune offset into that text.
type KeywordMatch struct {
	Keyword  string `json:"keyword"`
	Context  string `json:"context"`
	Position int    `json:"position"`
}

// OPAnalysis is what the opening post asks for.
type OPAnalysis struct {
	ThreadID            string      `json:"thread_id"`
	Title               string      `json:"title"`
	Budget              *MoneyValue `json:"budget"`
	Purposes            []string    `json:"purposes"`
	SpecialRequirements []string    `json:"special_requirements"`
	User                string      `json:"user"`
	PostDate            string      `json:"post_date"`
	ContentLength       int         `json:"content_length"`
}

// ReplyAnalysis is the suggestion content of one reply. Only replies with at least
// one component mention produce one.
type ReplyAnalysis struct {
	ThreadID      string                    `json:"thread_id"`
	PostID        string                    `json:"post_id"`
	User          string                    `json:"user"`
	PostDate      string                    `json:"post_date"`
	Components    map[string][]KeywordMatch `json:"components"`
	Brands        map[string][]KeywordMatch `json:"brands"`
	Prices        []MoneyValue              `json:"prices"`
	Reactions     map[string]int            `json:"reactions"`
	HasImages     bool                      `json:"has_images"`
	ContentLength int                       `json:"content_length"`
}

// Likes returns the "Like" reaction count.
func (r *ReplyAnalysis) Likes() int {
	return r.Reactions["Like"]
}

// Thanks returns the "Thanks" reaction count.
func (r *ReplyAnalysis) Thanks() int {
	return r.Reactions["Thanks"]
}

// ThreadAnalysis is the pipeline output for one thread.
type ThreadAnalysis struct {
	ThreadID string          `json:"thread_id"`
	Title    string          `json:"title"`
	OP       *OPAnalysis     `json:"op"`
	Replies  []ReplyAnalysis `json:"replies"`
	Skipped  int             `json:"skipped_posts"`
}

// Run records one batch analysis invocation.
type Run struct {
	ID            string    `json:"id"`
	InputDir      string    `json:"input_dir"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Threads       int       `json:"threads"`
	OPs           int       `json:"ops"`
	Replies       int       `json:"replies"`
	SkippedPosts  int       `json:"skipped_posts"`
	FailedThreads int       `json:"failed_threads"`
}
