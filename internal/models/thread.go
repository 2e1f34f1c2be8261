// Package models defines the crawled thread input and the analysis records derived from it.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingThreadID is returned when a thread has neither a thread_id nor a URL carrying one.
var ErrMissingThreadID = errors.New("thread has no thread_id and none can be derived from its url")

var threadIDPattern = regexp.MustCompile(`\.(\d+)/?`)

// Thread is one crawled forum thread. The first post is the opening post (OP).
type Thread struct {
	ThreadID  string `json:"thread_id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	CrawlDate string `json:"crawl_date,omitempty"`
	Posts     []Post `json:"posts"`
}

// Post is a single post in a thread.
type Post struct {
	PostID      *string           `json:"post_id"`
	Author      Author            `json:"author"`
	CreatedDate string            `json:"created_date"`
	ContentText string            `json:"content_text"`
	Images      []Image           `json:"images"`
	Quotes      []json.RawMessage `json:"quotes,omitempty"`
	Reactions   map[string]int    `json:"reactions"`

	err error
}

// Image is an image attached to a post together with its OCR output.
type Image struct {
	URL     string  `json:"url"`
	OCRText *string `json:"ocr_text"`
}

// Author is the poster. Crawls store it either as a plain username string or as an object.
type Author struct {
	Username string `json:"username"`
	UserID   string `json:"user_id,omitempty"`
}

// UnmarshalJSON accepts both "name" and {"username": "name", "user_id": ...}.
func (a *Author) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Author{}
		return nil
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*a = Author{Username: name}
		return nil
	}
	var obj struct {
		Username string          `json:"username"`
		UserID   json.RawMessage `json:"user_id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to decode author: %w", err)
	}
	*a = Author{Username: obj.Username, UserID: rawScalar(obj.UserID)}
	return nil
}

// rawScalar renders a JSON string or number as plain text; user ids appear in both forms.
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// UnmarshalJSON decodes posts one at a time so that a single malformed post keeps its
// slot (the OP stays at index 0) and carries its own error instead of failing the thread.
func (t *Thread) UnmarshalJSON(data []byte) error {
	var raw struct {
		ThreadID  json.RawMessage   `json:"thread_id"`
		Title     string            `json:"title"`
		URL       string            `json:"url"`
		CrawlDate string            `json:"crawl_date"`
		Posts     []json.RawMessage `json:"posts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Thread{
		ThreadID:  rawScalar(raw.ThreadID),
		Title:     raw.Title,
		URL:       raw.URL,
		CrawlDate: raw.CrawlDate,
		Posts:     make([]Post, len(raw.Posts)),
	}
	for i, rp := range raw.Posts {
		var p Post
		if err := json.Unmarshal(rp, &p); err != nil {
			t.Posts[i] = Post{err: fmt.Errorf("post %d: %w", i, err)}
			continue
		}
		t.Posts[i] = p
	}
	return nil
}

// Err returns the decode error of a malformed post, or nil.
func (p *Post) Err() error {
	return p.err
}

// ID returns the post id, or "" when the crawl did not record one.
func (p *Post) ID() string {
	if p.PostID == nil {
		return ""
	}
	return *p.PostID
}

// CombinedText is the post text followed by every non-empty OCR text, separated by blank lines.
func (p *Post) CombinedText() string {
	parts := []string{p.ContentText}
	for _, img := range p.Images {
		if img.OCRText != nil && strings.TrimSpace(*img.OCRText) != "" {
			parts = append(parts, *img.OCRText)
		}
	}
	return strings.Join(parts, "\n\n")
}

// HasImages reports whether the post has any attached image.
func (p *Post) HasImages() bool {
	return len(p.Images) > 0
}

// OP returns the opening post, or nil for an empty thread.
func (t *Thread) OP() *Post {
	if len(t.Posts) == 0 {
		return nil
	}
	return &t.Posts[0]
}

// Replies returns every post after the OP.
func (t *Thread) Replies() []Post {
	if len(t.Posts) < 2 {
		return nil
	}
	return t.Posts[1:]
}

// ResolveID fills ThreadID from the URL when it is missing.
func (t *Thread) ResolveID() error {
	if t.ThreadID != "" {
		return nil
	}
	id, ok := ThreadIDFromURL(t.URL)
	if !ok {
		return ErrMissingThreadID
	}
	t.ThreadID = id
	return nil
}

// ThreadIDFromURL extracts the numeric id from URLs like ".../threads/tu-van-pc.123456/".
func ThreadIDFromURL(url string) (string, bool) {
	all := threadIDPattern.FindAllStringSubmatch(url, -1)
	if len(all) == 0 {
		return "", false
	}
	return all[len(all)-1][1], true
}
