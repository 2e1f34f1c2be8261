package keyword

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/report"
	"github.com/hyperjump/tuvan/internal/textnorm"
	"github.com/hyperjump/tuvan/pkg/utils"
)

const snippetLen = 160

// BleveIndex implements SuggestionIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path.
// If the path already exists, the existing index is opened and reused; re-analyzing a
// thread replaces its documents. If you change the index mapping in code, remove the
// index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (unicode tokenizer + lowercase, no stemming) keeps Vietnamese
	// syllables and model numbers like "3060" or "b660m" as whole terms.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	for _, f := range []string{"thread_id", "post_id", "user", "post_date", "components", "brands"} {
		docMapping.AddFieldMappingsAt(f, keywordFieldMapping)
	}
	docMapping.AddFieldMappingsAt("max_price", bleve.NewNumericFieldMapping())
	im.AddDocumentMapping("suggestion", docMapping)
	im.DefaultType = "suggestion"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// DocID is the index id of the i-th actionable reply of a thread.
func DocID(threadID string, i int) string {
	return threadID + ":" + strconv.Itoa(i)
}

// NewDocument builds the indexed form of a reply.
func NewDocument(title string, r *models.ReplyAnalysis) *Document {
	doc := &Document{
		ThreadID:   r.ThreadID,
		PostID:     r.PostID,
		Title:      title,
		User:       r.User,
		PostDate:   r.PostDate,
		Components: report.SortedKeys(r.Components),
		Brands:     report.SortedKeys(r.Brands),
	}
	seen := make(map[string]bool)
	var parts []string
	for _, m := range []map[string][]models.KeywordMatch{r.Components, r.Brands} {
		for _, key := range report.SortedKeys(m) {
			for _, match := range m[key] {
				if !seen[match.Context] {
					seen[match.Context] = true
					parts = append(parts, match.Context)
				}
			}
		}
	}
	doc.Content = strings.Join(parts, " | ")
	for _, p := range r.Prices {
		if p.Value > doc.MaxPrice {
			doc.MaxPrice = p.Value
		}
	}
	return doc
}

// IndexThread replaces every indexed reply of ta with its current replies.
func (b *BleveIndex) IndexThread(ctx context.Context, ta *models.ThreadAnalysis) error {
	if err := b.DeleteThread(ctx, ta.ThreadID); err != nil {
		return err
	}
	if len(ta.Replies) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for i := range ta.Replies {
		if err := batch.Index(DocID(ta.ThreadID, i), NewDocument(ta.Title, &ta.Replies[i])); err != nil {
			return fmt.Errorf("failed to index reply %s: %w", ta.Replies[i].PostID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index thread %s: %w", ta.ThreadID, err)
	}
	return nil
}

// Search runs a match query over title and reply content and returns up to limit hits.
// The query is normalized the same way post text is. When opts.Component is set, only
// replies mentioning that category are returned; an empty query then lists them all.
// Search returns up to limit hits. Total in the response counts every matching reply,
// not just the returned page.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) (*SearchResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	fuzzyEnabled := false
	fuzziness := 1
	component := ""
	if opts != nil {
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
		component = opts.Component
	}

	response := &SearchResponse{Query: query, Hits: []*Hit{}}
	normalized := textnorm.Normalize(query)
	var clauses []blevequery.Query
	if normalized != "" {
		if fuzzyEnabled {
			clauses = append(clauses, buildFuzzyQuery(normalized, fuzziness))
		} else {
			clauses = append(clauses, bleve.NewMatchQuery(normalized))
		}
	}
	if component != "" {
		tq := bleve.NewTermQuery(component)
		tq.SetField("components")
		clauses = append(clauses, tq)
	}

	var q blevequery.Query
	switch len(clauses) {
	case 0:
		return response, nil
	case 1:
		q = clauses[0]
	default:
		q = bleve.NewConjunctionQuery(clauses...)
	}

	search := bleve.NewSearchRequest(q)
	search.Size = limit
	search.Fields = []string{"*"}
	results, err := b.index.SearchInContext(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	response.Total = int(results.Total)
	response.Hits = make([]*Hit, len(results.Hits))
	for i, hit := range results.Hits {
		response.Hits[i] = &Hit{
			ID:         hit.ID,
			Score:      hit.Score,
			ThreadID:   fieldString(hit.Fields["thread_id"]),
			PostID:     fieldString(hit.Fields["post_id"]),
			Title:      fieldString(hit.Fields["title"]),
			User:       fieldString(hit.Fields["user"]),
			Components: fieldStrings(hit.Fields["components"]),
			Snippet:    utils.Truncate(fieldString(hit.Fields["content"]), snippetLen),
		}
	}
	return response, nil
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per term.
func buildFuzzyQuery(query string, fuzziness int) blevequery.Query {
	terms := strings.Fields(query)
	if len(terms) == 1 {
		fq := bleve.NewFuzzyQuery(terms[0])
		fq.SetFuzziness(fuzziness)
		return fq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

func fieldString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []interface{}:
		if len(x) > 0 {
			s, _ := x[0].(string)
			return s
		}
	}
	return ""
}

// fieldStrings reads a stored keyword field; Bleve returns a bare string for one value.
func fieldStrings(v interface{}) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

// DeleteThread removes every indexed reply of a thread.
func (b *BleveIndex) DeleteThread(ctx context.Context, threadID string) error {
	for {
		tq := bleve.NewTermQuery(threadID)
		tq.SetField("thread_id")
		req := bleve.NewSearchRequest(tq)
		req.Size = 500
		results, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to find thread %s: %w", threadID, err)
		}
		if len(results.Hits) == 0 {
			return nil
		}
		batch := b.index.NewBatch()
		for _, hit := range results.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to delete thread %s: %w", threadID, err)
		}
	}
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of indexed replies.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}
