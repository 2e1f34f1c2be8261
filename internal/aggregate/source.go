package aggregate

import (
	"context"
	"fmt"

	"github.com/hyperjump/tuvan/internal/lexicon"
	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/report"
)

// Source supplies persisted analysis records. *storage.SQLiteStorage implements it.
type Source interface {
	ListOPs(ctx context.Context) ([]models.OPAnalysis, error)
	ListReplies(ctx context.Context) ([]models.ReplyAnalysis, error)
}

// Dataset is the record set a report is built from.
type Dataset struct {
	OPs     []models.OPAnalysis
	Replies []models.ReplyAnalysis
}

// LoadDataset reads every stored OP and reply.
func LoadDataset(ctx context.Context, src Source) (*Dataset, error) {
	ops, err := src.ListOPs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list op analyses: %w", err)
	}
	replies, err := src.ListReplies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reply analyses: %w", err)
	}
	return &Dataset{OPs: ops, Replies: replies}, nil
}

// OptionsFor orders report columns by the dictionaries in lex.
func OptionsFor(lex *lexicon.Set, minCombinationCount int) Options {
	if lex == nil {
		lex = lexicon.Default()
	}
	return Options{
		Components:          lex.Components.Names(),
		Purposes:            lex.Purposes.Names(),
		Requirements:        lex.Requirements.Names(),
		MinCombinationCount: minCombinationCount,
	}
}

// Build computes the report for the dataset.
func (d *Dataset) Build(opts Options) *Report {
	return Build(d.OPs, d.Replies, opts)
}

// Tables renders every table of rep over the dataset.
func (d *Dataset) Tables(rep *Report, opts Options, contextMaxLen int) []report.Table {
	return Tables(rep, d.OPs, d.Replies, opts.Components, contextMaxLen)
}

// Bundle builds the report and everything the report writer emits for it. threads is
// written as threads.json when non-nil.
func (d *Dataset) Bundle(opts Options, contextMaxLen int, threads any) (*Report, *report.Bundle) {
	rep := d.Build(opts)
	return rep, &report.Bundle{
		Tables:      d.Tables(rep, opts, contextMaxLen),
		OPs:         report.OPRows(d.OPs),
		Suggestions: report.SuggestionRows(d.Replies, contextMaxLen),
		Document:    rep,
		Threads:     threads,
	}
}
