package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/tuvan/internal/models"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "thread_2.json"), `{"thread_id": "2", "title": "b", "posts": []}`)
	writeFile(t, filepath.Join(dir, "nested", "thread_1.json"), `{"url": "https://voz.vn/t/a.1/", "title": "a", "posts": [{"author": "x", "content_text": "y"}]}`)
	writeFile(t, filepath.Join(dir, "thread_bad.json"), `{"thread_id": `)
	writeFile(t, filepath.Join(dir, "thread_noid.json"), `{"title": "no id", "posts": []}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), `ignored`)

	res, err := NewLoader(WithLogger(zap.NewNop())).LoadDir(context.Background(), dir, "thread_*.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Threads) != 2 {
		t.Fatalf("threads = %d, want 2", len(res.Threads))
	}
	if res.Threads[0].ThreadID != "1" || res.Threads[1].ThreadID != "2" {
		t.Errorf("order/ids: %s, %s", res.Threads[0].ThreadID, res.Threads[1].ThreadID)
	}
	if len(res.Failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(res.Failures))
	}
	var sawMissingID bool
	for _, f := range res.Failures {
		if errors.Is(f.Err, models.ErrMissingThreadID) {
			sawMissingID = true
		}
	}
	if !sawMissingID {
		t.Error("expected a missing thread id failure")
	}
}

func TestLoadDir_Errors(t *testing.T) {
	ld := NewLoader()
	if _, err := ld.LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"), "*.json"); err == nil {
		t.Error("expected error for missing directory")
	}
	if _, err := ld.LoadDir(context.Background(), t.TempDir(), "[bad"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestDecode(t *testing.T) {
	th, err := Decode([]byte(`{"thread_id": "7", "title": "t", "posts": [{"author": {"username": "u"}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if th.ThreadID != "7" || th.OP().Author.Username != "u" {
		t.Errorf("got %+v", th)
	}
}
