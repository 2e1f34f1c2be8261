package money

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParser_ExtractBudget(t *testing.T) {
	p := NewParser(WithLogger(zap.NewNop()))
	tests := []struct {
		name string
		text string
		want float64
		ok   bool
	}{
		{"title with ngân sách", "Tư vấn PC ngân sách 20 triệu chơi game", 20, true},
		{"khoảng", "em có khoảng 15 triệu", 15, true},
		{"tầm with tr", "tầm 25tr nhé các bác", 25, true},
		{"budget english", "Budget: 30tr", 30, true},
		{"tổng chi phí", "tổng chi phí khoảng 18,5 triệu", 18.5, true},
		{"dong grouping", "có 15.000.000đ", 15, true},
		{"thousand family", "giá 12.000k", 12, true},
		{"m shorthand", "ngân sách 20m", 20, true},
		{"củ slang", "tầm 12 củ", 12, true},
		{"out of range rejected", "2000 triệu", 0, false},
		{"below range rejected", "khoảng 500k", 0, false},
		{"no unit", "main b660 ram 16gb", 0, false},
		{"numeral glued to model", "main h81m", 0, false},
		{"unit runs into word", "cần 2 màn hình", 0, false},
		{"unit tr inside trong", "có 15 trong đó", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Extract(tt.text, Budget, BudgetRange)
			if ok != tt.ok {
				t.Fatalf("Extract(%q) ok = %v, want %v (got %+v)", tt.text, ok, tt.ok, got)
			}
			if ok && !almostEqual(got.Value, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got.Value, tt.want)
			}
			if ok && got.Unit != "triệu" {
				t.Errorf("unit = %q", got.Unit)
			}
		})
	}
}

func TestParser_BankOrderBeatsTextOrder(t *testing.T) {
	p := NewParser()
	got, ok := p.Extract("main tầm 3tr, ngân sách 25 triệu", Budget, BudgetRange)
	if !ok {
		t.Fatal("expected a budget")
	}
	if got.Value != 25 {
		t.Errorf("specific pattern should win: got %v", got.Value)
	}
	if !strings.Contains(got.OriginalText, "ngân sách") {
		t.Errorf("original text = %q", got.OriginalText)
	}
}

func TestParser_RangeRejectionContinuesScanning(t *testing.T) {
	p := NewParser()
	got, ok := p.Extract("ngân sách 2000 triệu, thực ra khoảng 20 triệu", Budget, BudgetRange)
	if !ok || got.Value != 20 {
		t.Errorf("got %+v ok=%v, want 20", got, ok)
	}
}

func TestParser_UnparseableCandidateSkipped(t *testing.T) {
	p := NewParser()
	huge := strings.Repeat("9", 400)
	got, ok := p.Extract("ngân sách "+huge+" triệu, khoảng 20 triệu", Budget, BudgetRange)
	if !ok || got.Value != 20 {
		t.Errorf("got %+v ok=%v, want 20", got, ok)
	}
}

func TestParser_UnitRoundTrip(t *testing.T) {
	p := NewParser()
	values := []float64{1, 1.25, 2.5, 15, 20, 45.5, 99}
	for _, v := range values {
		texts := []string{
			strconv.FormatFloat(v, 'f', -1, 64) + " triệu",
			strconv.FormatFloat(v*1000, 'f', -1, 64) + " nghìn",
			strconv.FormatFloat(v*1_000_000, 'f', -1, 64) + " đồng",
		}
		for _, text := range texts {
			got, ok := p.Extract(text, Budget, BudgetRange)
			if !ok {
				t.Errorf("Extract(%q) found nothing", text)
				continue
			}
			if !almostEqual(got.Value, v) {
				t.Errorf("Extract(%q) = %v, want %v", text, got.Value, v)
			}
		}
	}
}

func TestParser_ExtractAllPrices(t *testing.T) {
	p := NewParser()
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{"two priced parts", "cpu giá 3tr, ram giá 1tr", []float64{3, 1}},
		{"k as thousands", "card 500k", []float64{0.5}},
		{"decimal comma", "ssd 1,5tr", []float64{1.5}},
		{"dong grouping", "quạt 500.000đ", []float64{0.5}},
		{"refresh rate is not money", "màn 144hz 27 inch", nil},
		{"out of price range", "ngân sách 60 triệu", nil},
		{"textual order", "vga tầm 8tr, cpu 4tr, nguồn 1.2tr", []float64{8, 4, 1.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ExtractAll(tt.text, Price, PriceRange)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractAll(%q) = %+v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if !almostEqual(got[i].Value, tt.want[i]) {
					t.Errorf("[%d] = %v, want %v", i, got[i].Value, tt.want[i])
				}
			}
		})
	}
}

func TestRange_Contains(t *testing.T) {
	r := Range{Low: 1, High: 100}
	if !r.Contains(1) {
		t.Error("low bound is inclusive")
	}
	if r.Contains(100) {
		t.Error("high bound is exclusive")
	}
	if r.Contains(0.99) {
		t.Error("below low")
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		num, unit string
		want      float64
	}{
		{"15", "tr", 15},
		{"15", "Triệu", 15},
		{"15000", "k", 15},
		{"15000", "ngàn", 15},
		{"15000000", "vnd", 15},
		{"15", "m", 15},
		{"2,5", "tr", 2.5},
	}
	for _, tt := range tests {
		got, err := Convert(tt.num, tt.unit)
		if err != nil {
			t.Fatalf("Convert(%q, %q): %v", tt.num, tt.unit, err)
		}
		if !almostEqual(got, tt.want) {
			t.Errorf("Convert(%q, %q) = %v, want %v", tt.num, tt.unit, got, tt.want)
		}
	}
	if _, err := Convert("abc", "tr"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("price"); err != nil || k != Price {
		t.Errorf("ParseKind(price) = %v, %v", k, err)
	}
	if k, err := ParseKind(""); err != nil || k != Budget {
		t.Errorf("ParseKind(\"\") = %v, %v", k, err)
	}
	if _, err := ParseKind("salary"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
