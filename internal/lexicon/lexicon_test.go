package lexicon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	s := Default()
	wantComponents := []string{"cpu", "mainboard", "ram", "gpu", "ssd", "hdd", "psu", "case", "cooling", "monitor"}
	if got := s.Components.Names(); !reflect.DeepEqual(got, wantComponents) {
		t.Errorf("component categories = %v", got)
	}
	if s.Purposes.Len() != 8 {
		t.Errorf("purposes = %d, want 8", s.Purposes.Len())
	}
	if s.Requirements.Len() != 12 {
		t.Errorf("requirements = %d, want 12", s.Requirements.Len())
	}
	if s.Brands.Len() != 30 {
		t.Errorf("brands = %d, want 30", s.Brands.Len())
	}
}

func TestLoad_OverrideSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	content := `
purposes:
  - name: gaming
    keywords: [game, "Chơi Game"]
  - name: mining
    keywords: [đào coin, mining]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Purposes.Names(); !reflect.DeepEqual(got, []string{"gaming", "mining"}) {
		t.Errorf("purposes = %v", got)
	}
	if got := s.Purposes.Keywords("gaming"); !reflect.DeepEqual(got, []string{"game", "chơi game"}) {
		t.Errorf("gaming keywords = %v", got)
	}
	if s.Components.Len() != Default().Components.Len() {
		t.Error("components should fall back to defaults")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("purposes: [unclosed"), 0600)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
	s, err := Load("")
	if err != nil || s == nil {
		t.Errorf("empty path should return defaults, got %v", err)
	}
}

func TestExport_RoundTrip(t *testing.T) {
	data, err := yaml.Marshal(Default().Export())
	if err != nil {
		t.Fatal(err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		t.Fatal(err)
	}
	s := FromFile(&f)
	if !reflect.DeepEqual(s.Brands.Categories(), Default().Brands.Categories()) {
		t.Error("brands changed after export round trip")
	}
}
