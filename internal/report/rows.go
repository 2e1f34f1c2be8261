package report

import (
	"sort"

	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/pkg/utils"
)

// DefaultContextMaxLen bounds the context column of suggestion rows, in runes.
const DefaultContextMaxLen = 200

// OPRow is one flattened opening-post analysis.
type OPRow struct {
	ThreadID            string  `parquet:"thread_id" json:"thread_id"`
	Title               string  `parquet:"title" json:"title"`
	// Budget is 0 when the OP stated none; budgets below 1 are never extracted.
	Budget              float64 `parquet:"budget,optional" json:"budget,omitempty"`
	BudgetOriginal      string  `parquet:"budget_original" json:"budget_original"`
	Purposes            string  `parquet:"purposes" json:"purposes"`
	SpecialRequirements string  `parquet:"special_requirements" json:"special_requirements"`
	User                string  `parquet:"user" json:"user"`
	PostDate            string  `parquet:"post_date" json:"post_date"`
	ContentLength       int64   `parquet:"content_length" json:"content_length"`
}

// SuggestionRow is one component keyword match in a reply.
type SuggestionRow struct {
	ThreadID      string `parquet:"thread_id" json:"thread_id"`
	PostID        string `parquet:"post_id" json:"post_id"`
	User          string `parquet:"user" json:"user"`
	PostDate      string `parquet:"post_date" json:"post_date"`
	ComponentType string `parquet:"component_type" json:"component_type"`
	Keyword       string `parquet:"keyword" json:"keyword"`
	Context       string `parquet:"context" json:"context"`
	HasImages     bool   `parquet:"has_images" json:"has_images"`
	Likes         int64  `parquet:"likes" json:"likes"`
	Thanks        int64  `parquet:"thanks" json:"thanks"`
}

// OPRows flattens opening-post analyses.
func OPRows(ops []models.OPAnalysis) []OPRow {
	rows := make([]OPRow, 0, len(ops))
	for i := range ops {
		op := &ops[i]
		row := OPRow{
			ThreadID:            op.ThreadID,
			Title:               op.Title,
			Purposes:            List(op.Purposes),
			SpecialRequirements: List(op.SpecialRequirements),
			User:                op.User,
			PostDate:            op.PostDate,
			ContentLength:       int64(op.ContentLength),
		}
		if op.Budget != nil {
			row.Budget = op.Budget.Value
			row.BudgetOriginal = op.Budget.OriginalText
		}
		rows = append(rows, row)
	}
	return rows
}

// SuggestionRows flattens reply component matches. Categories are visited in name
// order and matches in position order. Context is cut to contextMaxLen runes.
func SuggestionRows(replies []models.ReplyAnalysis, contextMaxLen int) []SuggestionRow {
	if contextMaxLen <= 0 {
		contextMaxLen = DefaultContextMaxLen
	}
	var rows []SuggestionRow
	for i := range replies {
		r := &replies[i]
		for _, cat := range SortedKeys(r.Components) {
			for _, m := range r.Components[cat] {
				rows = append(rows, SuggestionRow{
					ThreadID:      r.ThreadID,
					PostID:        r.PostID,
					User:          r.User,
					PostDate:      r.PostDate,
					ComponentType: cat,
					Keyword:       m.Keyword,
					Context:       utils.Cut(m.Context, contextMaxLen),
					HasImages:     r.HasImages,
					Likes:         int64(r.Likes()),
					Thanks:        int64(r.Thanks()),
				})
			}
		}
	}
	return rows
}

// SortedKeys returns the keys of a match map in ascending order.
func SortedKeys(m map[string][]models.KeywordMatch) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OPTable renders OP rows as a table.
func OPTable(rows []OPRow) Table {
	t := NewTable("op_analysis", "thread_id", "title", "budget", "budget_original",
		"purposes", "special_requirements", "user", "post_date", "content_length")
	for _, r := range rows {
		budget := ""
		if r.Budget != 0 {
			budget = Float(r.Budget)
		}
		t.Append(r.ThreadID, r.Title, budget, r.BudgetOriginal, r.Purposes,
			r.SpecialRequirements, r.User, r.PostDate, Int(int(r.ContentLength)))
	}
	return *t
}

// SuggestionTable renders suggestion rows as a table.
func SuggestionTable(rows []SuggestionRow) Table {
	t := NewTable("component_suggestions", "thread_id", "post_id", "user", "post_date",
		"component_type", "keyword", "context", "has_images", "likes", "thanks")
	for _, r := range rows {
		t.Append(r.ThreadID, r.PostID, r.User, r.PostDate, r.ComponentType, r.Keyword,
			r.Context, Bool(r.HasImages), Int(int(r.Likes)), Int(int(r.Thanks)))
	}
	return *t
}
