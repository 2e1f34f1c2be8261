package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/tuvan/internal/models"
)

func newIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func thread(id string, replies ...models.ReplyAnalysis) *models.ThreadAnalysis {
	for i := range replies {
		replies[i].ThreadID = id
	}
	return &models.ThreadAnalysis{ThreadID: id, Title: "Tư vấn cấu hình gaming", Replies: replies}
}

func reply(postID, user string, components map[string][]models.KeywordMatch) models.ReplyAnalysis {
	return models.ReplyAnalysis{PostID: postID, User: user, Components: components, Brands: map[string][]models.KeywordMatch{}}
}

func km(kw, ctx string) []models.KeywordMatch {
	return []models.KeywordMatch{{Keyword: kw, Context: ctx}}
}

func TestBleveIndex_SearchFindsContent(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	ta := thread("100",
		reply("p1", "an", map[string][]models.KeywordMatch{"vga": km("rtx", "lắp vga rtx 3060 là đẹp")}),
		reply("p2", "binh", map[string][]models.KeywordMatch{"cpu": km("ryzen", "cpu ryzen 5 5600 giá 3tr")}),
	)
	if err := idx.IndexThread(ctx, ta); err != nil {
		t.Fatalf("IndexThread: %v", err)
	}

	resp, err := idx.Search(ctx, "RTX 3060", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) == 0 {
		t.Fatal("expected a hit for rtx 3060")
	}
	h := resp.Hits[0]
	if h.ID != DocID("100", 0) || h.ThreadID != "100" || h.PostID != "p1" || h.User != "an" {
		t.Errorf("hit = %+v", h)
	}
	if len(h.Components) != 1 || h.Components[0] != "vga" {
		t.Errorf("components = %v", h.Components)
	}
	if h.Snippet == "" {
		t.Error("snippet should be set")
	}

	// Vietnamese syllables with diacritics are searchable.
	resp, err = idx.Search(ctx, "lắp", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 {
		t.Errorf("hits for lắp = %d, want 1", len(resp.Hits))
	}
}

func TestBleveIndex_ComponentFilterAndFuzzy(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	ta := thread("7",
		reply("a", "u1", map[string][]models.KeywordMatch{"cpu": km("ryzen", "ryzen 5 gaming")}),
		reply("b", "u2", map[string][]models.KeywordMatch{"vga": km("rx", "rx 6600 gaming")}),
	)
	if err := idx.IndexThread(ctx, ta); err != nil {
		t.Fatal(err)
	}

	resp, err := idx.Search(ctx, "gaming", 10, &SearchOptions{Component: "vga"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].PostID != "b" {
		t.Errorf("filtered hits = %+v", resp.Hits)
	}

	resp, err = idx.Search(ctx, "", 10, &SearchOptions{Component: "cpu"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].PostID != "a" {
		t.Errorf("component-only hits = %+v", resp.Hits)
	}

	resp, err = idx.Search(ctx, "ryzn", 10, &SearchOptions{FuzzyEnabled: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) == 0 || resp.Hits[0].PostID != "a" {
		t.Errorf("fuzzy hits = %+v", resp.Hits)
	}

	resp, err = idx.Search(ctx, "   ", 10, nil)
	if err != nil || len(resp.Hits) != 0 {
		t.Errorf("blank query: %v, %d hits", err, len(resp.Hits))
	}
}

func TestBleveIndex_ReindexReplacesThread(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	first := thread("9",
		reply("a", "u", map[string][]models.KeywordMatch{"ram": km("ram", "ram 16gb oldword")}),
		reply("b", "u", map[string][]models.KeywordMatch{"ram": km("ram", "ram 32gb")}),
	)
	if err := idx.IndexThread(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := thread("9", reply("c", "u", map[string][]models.KeywordMatch{"psu": km("psu", "psu 650w")}))
	if err := idx.IndexThread(ctx, second); err != nil {
		t.Fatal(err)
	}

	n, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("DocCount = %d, want 1", n)
	}
	resp, _ := idx.Search(ctx, "oldword", 10, nil)
	if len(resp.Hits) != 0 {
		t.Errorf("stale reply still indexed: %+v", resp.Hits)
	}

	if err := idx.DeleteThread(ctx, "9"); err != nil {
		t.Fatal(err)
	}
	if n, _ := idx.DocCount(); n != 0 {
		t.Errorf("DocCount after delete = %d", n)
	}
}

func TestBleveIndex_ReopenKeepsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "bleve")
	idx1, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	ctx := context.Background()
	if err := idx1.IndexThread(ctx, thread("1", reply("a", "u", map[string][]models.KeywordMatch{"ssd": km("nvme", "ssd nvme uniqueword")}))); err != nil {
		t.Fatal(err)
	}
	if err := idx1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("index path should exist: %v", err)
	}

	idx2, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("NewBleveIndex (open existing): %v", err)
	}
	defer func() {
		_ = idx2.Close()
	}()
	resp, err := idx2.Search(ctx, "uniqueword", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 {
		t.Errorf("hits after reopen = %d, want 1", len(resp.Hits))
	}
}

func TestNewDocument(t *testing.T) {
	r := &models.ReplyAnalysis{
		ThreadID: "1", PostID: "p",
		Components: map[string][]models.KeywordMatch{
			"vga": km("rtx", "rtx 3060"),
			"cpu": {{Keyword: "i5", Context: "i5 12400f"}, {Keyword: "i5", Context: "i5 12400f"}},
		},
		Brands: map[string][]models.KeywordMatch{"intel": km("intel", "intel i5")},
		Prices: []models.MoneyValue{{Value: 3}, {Value: 7.5}},
	}
	doc := NewDocument("title", r)
	if doc.Content != "i5 12400f | rtx 3060 | intel i5" {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.MaxPrice != 7.5 {
		t.Errorf("max price = %v", doc.MaxPrice)
	}
	if len(doc.Components) != 2 || doc.Components[0] != "cpu" {
		t.Errorf("components = %v", doc.Components)
	}
}

func TestBleveIndex_TotalCountsAllMatches(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	ta := thread("12",
		reply("a", "u1", map[string][]models.KeywordMatch{"vga": km("rtx", "rtx 4060 gaming")}),
		reply("b", "u2", map[string][]models.KeywordMatch{"vga": km("rtx", "rtx 4070 gaming")}),
		reply("c", "u3", map[string][]models.KeywordMatch{"vga": km("rtx", "rtx 3060 gaming")}),
	)
	if err := idx.IndexThread(ctx, ta); err != nil {
		t.Fatal(err)
	}

	resp, err := idx.Search(ctx, "Gaming", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 3 {
		t.Errorf("Total = %d, want 3", resp.Total)
	}
	if len(resp.Hits) != 1 {
		t.Errorf("hits = %d, want 1", len(resp.Hits))
	}
	if resp.Query != "Gaming" {
		t.Errorf("Query = %q, want the query as given", resp.Query)
	}
}
