package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/tuvan/internal/models"
	"go.uber.org/zap"
)

func sampleOPs() []models.OPAnalysis {
	return []models.OPAnalysis{
		{
			ThreadID: "1", Title: "Tư vấn PC 20 triệu",
			Budget:   &models.MoneyValue{Value: 20, Unit: models.UnitMillion, OriginalText: "20 triệu"},
			Purposes: []string{"gaming", "streaming"}, User: "an", PostDate: "2024-01-01", ContentLength: 42,
		},
		{ThreadID: "2", Title: "không nói giá", Purposes: []string{}, SpecialRequirements: []string{"rgb"}},
	}
}

func sampleReplies() []models.ReplyAnalysis {
	return []models.ReplyAnalysis{
		{
			ThreadID: "1", PostID: "p1", User: "binh", PostDate: "2024-01-02",
			Components: map[string][]models.KeywordMatch{
				"vga": {{Keyword: "rtx", Context: "vga rtx 3060", Position: 4}},
				"cpu": {{Keyword: "i5", Context: strings.Repeat("á", 300), Position: 0}},
			},
			Reactions: map[string]int{"Like": 3, "Thanks": 1},
			HasImages: true,
		},
	}
}

func sampleTables() []Table {
	return []Table{
		OPTable(OPRows(sampleOPs())),
		SuggestionTable(SuggestionRows(sampleReplies(), 0)),
	}
}

func TestOPRows(t *testing.T) {
	rows := OPRows(sampleOPs())
	if rows[0].Budget != 20 || rows[0].BudgetOriginal != "20 triệu" || rows[0].Purposes != "gaming, streaming" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Budget != 0 || rows[1].SpecialRequirements != "rgb" {
		t.Errorf("row 1 = %+v", rows[1])
	}
	tbl := OPTable(rows)
	if tbl.Rows[1][2] != "" {
		t.Errorf("missing budget should render empty, got %q", tbl.Rows[1][2])
	}
}

func TestSuggestionRows(t *testing.T) {
	rows := SuggestionRows(sampleReplies(), 0)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].ComponentType != "cpu" || rows[1].ComponentType != "vga" {
		t.Errorf("categories not in name order: %s, %s", rows[0].ComponentType, rows[1].ComponentType)
	}
	if n := len([]rune(rows[0].Context)); n != DefaultContextMaxLen {
		t.Errorf("context runes = %d, want %d", n, DefaultContextMaxLen)
	}
	if rows[1].Likes != 3 || rows[1].Thanks != 1 || !rows[1].HasImages {
		t.Errorf("row = %+v", rows[1])
	}
}

func TestTableAppendPads(t *testing.T) {
	tbl := NewTable("t", "a", "b", "c")
	tbl.Append("1")
	tbl.Append("1", "2", "3", "4")
	if len(tbl.Rows[0]) != 3 || len(tbl.Rows[1]) != 3 {
		t.Errorf("rows = %v", tbl.Rows)
	}
	if _, ok := Find([]Table{*tbl}, "t"); !ok {
		t.Error("Find failed")
	}
	if _, ok := Find([]Table{*tbl}, "x"); ok {
		t.Error("Find matched unknown name")
	}
}

func TestEncodeCSV(t *testing.T) {
	tables := sampleTables()
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, &tables[0]); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 || records[0][0] != "thread_id" || records[1][1] != "Tư vấn PC 20 triệu" {
		t.Errorf("records = %v", records)
	}
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), WorkbookFile)
	tables := sampleTables()
	if err := WriteXLSX(path, tables); err != nil {
		t.Fatal(err)
	}
	got, err := ReadXLSX(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(Names(got), Names(tables)) {
		t.Fatalf("sheets = %v", Names(got))
	}
	if !reflect.DeepEqual(got[0].Columns, tables[0].Columns) {
		t.Errorf("columns = %v", got[0].Columns)
	}
	if got[0].Rows[0][1] != "Tư vấn PC 20 triệu" {
		t.Errorf("cell = %q", got[0].Rows[0][1])
	}
}

func TestWriteParquet_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ops := OPRows(sampleOPs())
	sugg := SuggestionRows(sampleReplies(), 0)
	paths, err := WriteParquet(dir, ops, sugg)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	gotOPs, err := ReadOPParquet(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotOPs, ops) {
		t.Errorf("ops = %+v", gotOPs)
	}
	gotSugg, err := ReadSuggestionParquet(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	if len(gotSugg) != 2 || gotSugg[1].Keyword != "rtx" {
		t.Errorf("suggestions = %+v", gotSugg)
	}
}

func TestWriter_AllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewWriter(dir, []string{FormatCSV, FormatXLSX, FormatParquet, FormatJSON, "bogus"}, WithLogger(zap.NewNop()))
	b := &Bundle{
		Tables:      sampleTables(),
		OPs:         OPRows(sampleOPs()),
		Suggestions: SuggestionRows(sampleReplies(), 0),
		Document:    map[string]int{"ops": 2},
		Threads:     []string{"1", "2"},
	}
	paths, err := w.Write(b)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"op_analysis.csv", "component_suggestions.csv", WorkbookFile,
		OPParquetFile, SuggestionParquetFile, ReportFile, ThreadsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if len(paths) != 7 {
		t.Errorf("paths = %v", paths)
	}
	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]int
	if err := json.Unmarshal(data, &doc); err != nil || doc["ops"] != 2 {
		t.Errorf("report.json = %s", data)
	}
}

func TestSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSchema(&buf, &models.ThreadAnalysis{}); err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %s", buf.String())
	}
	for _, key := range []string{"thread_id", "op", "replies", "skipped_posts"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing %q", key)
		}
	}
}
