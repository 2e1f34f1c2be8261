package analyzer

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/hyperjump/tuvan/internal/config"
	"github.com/hyperjump/tuvan/internal/models"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newTestAnalyzer() *Analyzer {
	return New(nil, config.AnalysisConfig{}, WithLogger(zap.NewNop()))
}

func opThread(title, body string) *models.Thread {
	return &models.Thread{
		ThreadID: "100",
		Title:    title,
		Posts: []models.Post{{
			PostID:      strPtr("p1"),
			Author:      models.Author{Username: "chủ thớt"},
			CreatedDate: "2024-03-01T10:00:00",
			ContentText: body,
		}},
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestAnalyzeOP_ExplicitBudgetInTitle(t *testing.T) {
	a := newTestAnalyzer()
	op, err := a.AnalyzeOP(opThread("Tư vấn PC ngân sách 20 triệu chơi game", ""))
	if err != nil {
		t.Fatal(err)
	}
	if op.Budget == nil || op.Budget.Value != 20 || op.Budget.Unit != "triệu" {
		t.Fatalf("budget = %+v", op.Budget)
	}
	if !contains(op.Purposes, "gaming") {
		t.Errorf("purposes = %v, want gaming", op.Purposes)
	}
	if op.User != "chủ thớt" || op.ThreadID != "100" {
		t.Errorf("identity fields: %+v", op)
	}
}

func TestAnalyzeOP_BudgetFallsBackToBody(t *testing.T) {
	a := newTestAnalyzer()
	op, err := a.AnalyzeOP(opThread("Xin tư vấn cấu hình", "em có khoảng 15 triệu"))
	if err != nil {
		t.Fatal(err)
	}
	if op.Budget == nil || op.Budget.Value != 15 {
		t.Fatalf("budget = %+v, want 15", op.Budget)
	}
}

func TestAnalyzeOP_TitleBudgetWins(t *testing.T) {
	a := newTestAnalyzer()
	op, err := a.AnalyzeOP(opThread("Build PC ngân sách 20tr", "nếu cần thì tầm 30 triệu cũng được"))
	if err != nil {
		t.Fatal(err)
	}
	if op.Budget == nil || op.Budget.Value != 20 {
		t.Fatalf("budget = %+v, want 20 from title", op.Budget)
	}
}

func TestAnalyzeOP_PurposeUnionAndRequirements(t *testing.T) {
	a := newTestAnalyzer()
	op, err := a.AnalyzeOP(opThread("PC itx chơi game", "ngoài ra còn lập trình, thích case màu trắng"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"gaming", "programming"}; !reflect.DeepEqual(op.Purposes, want) {
		t.Errorf("purposes = %v, want %v", op.Purposes, want)
	}
	for _, req := range []string{"white", "small"} {
		if !contains(op.SpecialRequirements, req) {
			t.Errorf("requirements = %v, missing %s", op.SpecialRequirements, req)
		}
	}
	if op.Budget != nil {
		t.Errorf("no budget expected, got %+v", op.Budget)
	}
}

func TestAnalyzeOP_UsesOCRText(t *testing.T) {
	a := newTestAnalyzer()
	th := opThread("Tư vấn", "ảnh bên dưới")
	th.Posts[0].Images = []models.Image{{URL: "x", OCRText: strPtr("Ngân sách: 25tr")}}
	op, err := a.AnalyzeOP(th)
	if err != nil {
		t.Fatal(err)
	}
	if op.Budget == nil || op.Budget.Value != 25 {
		t.Errorf("budget = %+v, want 25 from OCR", op.Budget)
	}
	if op.ContentLength != len([]rune("ảnh bên dưới")) {
		t.Errorf("content length counts content text only, got %d", op.ContentLength)
	}
}

func TestAnalyzeOP_NoPosts(t *testing.T) {
	a := newTestAnalyzer()
	_, err := a.AnalyzeOP(&models.Thread{ThreadID: "1"})
	if !errors.Is(err, ErrNoPosts) {
		t.Errorf("expected ErrNoPosts, got %v", err)
	}
}

func TestAnalyzeReply_MultiplePrices(t *testing.T) {
	a := newTestAnalyzer()
	post := &models.Post{
		PostID:      strPtr("p2"),
		Author:      models.Author{Username: "thợ build"},
		ContentText: "cpu giá 3tr, ram giá 1tr",
		Reactions:   map[string]int{"Like": 4, "Thanks": 2},
	}
	r, err := a.AnalyzeReply(post, "100")
	if err != nil {
		t.Fatal(err)
	}
	if r == nil {
		t.Fatal("expected a reply analysis")
	}
	if len(r.Prices) != 2 || r.Prices[0].Value != 3 || r.Prices[1].Value != 1 {
		t.Errorf("prices = %+v, want [3 1]", r.Prices)
	}
	for _, cat := range []string{"cpu", "ram"} {
		if _, ok := r.Components[cat]; !ok {
			t.Errorf("component %s missing: %+v", cat, r.Components)
		}
	}
	if r.Likes() != 4 || r.Thanks() != 2 {
		t.Errorf("likes/thanks = %d/%d", r.Likes(), r.Thanks())
	}
	if r.PostID != "p2" || r.ThreadID != "100" {
		t.Errorf("ids: %+v", r)
	}
}

func TestAnalyzeReply_KUnitPrice(t *testing.T) {
	a := newTestAnalyzer()
	r, err := a.AnalyzeReply(&models.Post{ContentText: "quạt tản nhiệt 500k là đủ"}, "1")
	if err != nil || r == nil {
		t.Fatalf("r=%v err=%v", r, err)
	}
	if len(r.Prices) != 1 || r.Prices[0].Value != 0.5 {
		t.Errorf("prices = %+v, want [0.5]", r.Prices)
	}
}

func TestAnalyzeReply_SlashSeparatedParts(t *testing.T) {
	a := newTestAnalyzer()
	tests := []struct {
		name       string
		text       string
		components []string
		prices     []float64
	}{
		{"bare list", "cpu/ram/ssd", []string{"cpu", "ram", "ssd"}, nil},
		{"priced list", "cpu 3tr/ram 1tr", []string{"cpu", "ram"}, []float64{3, 1}},
		{"model and prices", "cpu/ram/ssd: i5 12400f 3tr/ram 16gb 1tr", []string{"cpu", "ram", "ssd"}, []float64{3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := a.AnalyzeReply(&models.Post{ContentText: tt.text}, "1")
			if err != nil {
				t.Fatal(err)
			}
			if r == nil {
				t.Fatalf("%q should produce a suggestion", tt.text)
			}
			for _, cat := range tt.components {
				if _, ok := r.Components[cat]; !ok {
					t.Errorf("component %s missing: %+v", cat, r.Components)
				}
			}
			if len(r.Prices) != len(tt.prices) {
				t.Fatalf("prices = %+v, want %v", r.Prices, tt.prices)
			}
			for i, want := range tt.prices {
				if r.Prices[i].Value != want {
					t.Errorf("prices[%d] = %v, want %v", i, r.Prices[i].Value, want)
				}
			}
		})
	}
}

func TestAnalyzeReply_NoComponentDropped(t *testing.T) {
	a := newTestAnalyzer()
	r, err := a.AnalyzeReply(&models.Post{ContentText: "cảm ơn bác nhiều nhé"}, "1")
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Errorf("expected nil, got %+v", r)
	}
}

func TestAnalyzeReply_BrandsAndImages(t *testing.T) {
	a := newTestAnalyzer()
	post := &models.Post{
		ContentText: "chốt đơn nhé",
		Images:      []models.Image{{URL: "i", OCRText: strPtr("VGA ASUS TUF RTX 4060")}},
	}
	r, err := a.AnalyzeReply(post, "1")
	if err != nil || r == nil {
		t.Fatalf("r=%v err=%v", r, err)
	}
	if !r.HasImages {
		t.Error("HasImages should be true")
	}
	if _, ok := r.Components["gpu"]; !ok {
		t.Errorf("gpu from OCR missing: %+v", r.Components)
	}
	for _, b := range []string{"asus", "nvidia"} {
		if _, ok := r.Brands[b]; !ok {
			t.Errorf("brand %s missing: %+v", b, r.Brands)
		}
	}
	if r.Reactions == nil || r.Prices == nil {
		t.Error("reactions and prices should be non-nil")
	}
}

func TestAnalyzeThread_SkipsMalformedPosts(t *testing.T) {
	data := `{
		"thread_id": "55",
		"title": "Tư vấn PC 25tr chơi game",
		"posts": [
			{"post_id": "1", "author": "op", "content_text": "như tiêu đề"},
			{"post_id": "2", "author": {"username": "a"}, "content_text": "vga rtx 4060 tầm 8tr"},
			{"post_id": "3", "author": "b", "content_text": ["not", "text"]},
			{"post_id": "4", "author": "c", "content_text": "hóng"},
			{"post_id": "5", "author": "d", "content_text": "thêm ssd nvme 1tb"}
		]
	}`
	var th models.Thread
	if err := json.Unmarshal([]byte(data), &th); err != nil {
		t.Fatal(err)
	}
	res := newTestAnalyzer().AnalyzeThread(&th)
	if res.OP == nil || res.OP.Budget == nil || res.OP.Budget.Value != 25 {
		t.Fatalf("op = %+v", res.OP)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
	if len(res.Replies) != 2 {
		t.Fatalf("replies = %d, want 2", len(res.Replies))
	}
	if res.Replies[0].PostID != "2" || res.Replies[1].PostID != "5" {
		t.Errorf("reply order: %s, %s", res.Replies[0].PostID, res.Replies[1].PostID)
	}
}

func TestAnalyzeThread_MalformedOPStillAnalyzesReplies(t *testing.T) {
	data := `{"thread_id": "56", "title": "t", "posts": [
		{"post_id": "1", "content_text": 42},
		{"post_id": "2", "content_text": "main b760 ngon"}
	]}`
	var th models.Thread
	if err := json.Unmarshal([]byte(data), &th); err != nil {
		t.Fatal(err)
	}
	res := newTestAnalyzer().AnalyzeThread(&th)
	if res.OP != nil {
		t.Error("malformed OP must not produce a partial record")
	}
	if res.Skipped != 1 || len(res.Replies) != 1 {
		t.Errorf("skipped=%d replies=%d", res.Skipped, len(res.Replies))
	}
}

func TestAnalyzeText(t *testing.T) {
	res := newTestAnalyzer().AnalyzeText("Ngân sách 20 triệu chơi game, vga rtx 3060 giá 7tr, case trắng")
	if res.Budget == nil || res.Budget.Value != 20 {
		t.Errorf("budget = %+v", res.Budget)
	}
	if len(res.Components["gpu"]) == 0 {
		t.Errorf("components = %+v", res.Components)
	}
	if len(res.Brands["nvidia"]) == 0 {
		t.Errorf("brands = %+v", res.Brands)
	}
	if len(res.Purposes) == 0 || res.Purposes[0] != "gaming" {
		t.Errorf("purposes = %v", res.Purposes)
	}
	found := false
	for _, r := range res.SpecialRequirements {
		if r == "white" {
			found = true
		}
	}
	if !found {
		t.Errorf("requirements = %v", res.SpecialRequirements)
	}
	if res.Normalized != "ngân sách 20 triệu chơi game, vga rtx 3060 giá 7tr, case trắng" {
		t.Errorf("normalized = %q", res.Normalized)
	}

	empty := newTestAnalyzer().AnalyzeText("")
	if empty.Budget != nil || len(empty.Prices) != 0 || empty.Purposes == nil {
		t.Errorf("empty text = %+v", empty)
	}
}
