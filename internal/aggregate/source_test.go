package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/tuvan/internal/lexicon"
	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/report"
)

type fakeSource struct {
	ops     []models.OPAnalysis
	replies []models.ReplyAnalysis
	err     error
}

func (f *fakeSource) ListOPs(context.Context) ([]models.OPAnalysis, error) {
	return f.ops, f.err
}

func (f *fakeSource) ListReplies(context.Context) ([]models.ReplyAnalysis, error) {
	return f.replies, nil
}

func TestLoadDataset(t *testing.T) {
	ops, replies := fixture()
	ds, err := LoadDataset(context.Background(), &fakeSource{ops: ops, replies: replies})
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.OPs) != 4 || len(ds.Replies) != 4 {
		t.Errorf("dataset = %d ops, %d replies", len(ds.OPs), len(ds.Replies))
	}

	boom := errors.New("boom")
	if _, err := LoadDataset(context.Background(), &fakeSource{err: boom}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(nil, 5)
	if len(opts.Components) == 0 || opts.Components[0] != "cpu" {
		t.Errorf("components = %v", opts.Components)
	}
	if len(opts.Purposes) == 0 || opts.Purposes[0] != "gaming" {
		t.Errorf("purposes = %v", opts.Purposes)
	}
	if opts.MinCombinationCount != 5 {
		t.Errorf("min combination = %d", opts.MinCombinationCount)
	}
	if got := OptionsFor(lexicon.Default(), 3); len(got.Requirements) != len(opts.Requirements) {
		t.Errorf("requirements differ: %v vs %v", got.Requirements, opts.Requirements)
	}
}

func TestDatasetBundle(t *testing.T) {
	ops, replies := fixture()
	ds := &Dataset{OPs: ops, Replies: replies}
	opts := Options{Components: []string{"cpu", "vga", "ssd", "hdd"}, MinCombinationCount: 1}

	rep, b := ds.Bundle(opts, report.DefaultContextMaxLen, nil)
	if rep.OPs != 4 || rep.Replies != 4 {
		t.Errorf("report = %+v", rep)
	}
	if b.Document != rep {
		t.Error("bundle document should be the report")
	}
	if len(b.OPs) != 4 {
		t.Errorf("op rows = %d", len(b.OPs))
	}
	// One row per keyword match: a has 3, b 2, c 2, d 1.
	if len(b.Suggestions) != 8 {
		t.Errorf("suggestion rows = %d", len(b.Suggestions))
	}
	if _, ok := report.Find(b.Tables, TableMonthlyComponentTrend); !ok {
		t.Errorf("tables = %v", report.Names(b.Tables))
	}
	if b.Threads != nil {
		t.Error("threads should stay nil")
	}
}
