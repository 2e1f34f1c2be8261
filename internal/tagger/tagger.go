package tagger

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/textnorm"
)

// Window is the context slice kept around a match, in runes.
type Window struct {
	Before int `yaml:"before" json:"before"`
	After  int `yaml:"after" json:"after"`
}

var (
	// ComponentWindow is used for hardware component mentions.
	ComponentWindow = Window{Before: 50, After: 100}
	// BrandWindow is used for brand mentions.
	BrandWindow = Window{Before: 30, After: 70}
)

// MaxLen is the longest context a match of keyword can produce.
func (w Window) MaxLen(keyword string) int {
	return w.Before + utf8.RuneCountInString(keyword) + w.After
}

// Tagger finds dictionary keywords on word boundaries. It holds no mutable state.
type Tagger struct {
	dict   *Dictionary
	window Window
}

// New returns a tagger over dict with the given context window.
func New(dict *Dictionary, window Window) *Tagger {
	if window.Before < 0 {
		window.Before = 0
	}
	if window.After < 0 {
		window.After = 0
	}
	return &Tagger{dict: dict, window: window}
}

// Dictionary returns the tagger's dictionary.
func (t *Tagger) Dictionary() *Dictionary {
	return t.dict
}

// Tag returns every occurrence of every keyword, grouped by category and ordered by
// position. Categories without a match are absent. A text may match several categories.
func (t *Tagger) Tag(text string) map[string][]models.KeywordMatch {
	doc := newDocument(textnorm.Normalize(text))
	out := make(map[string][]models.KeywordMatch)
	if doc.text == "" {
		return out
	}
	for _, c := range t.dict.categories {
		var matches []models.KeywordMatch
		for _, kw := range c.Keywords {
			for _, off := range doc.findAll(kw) {
				matches = append(matches, doc.match(kw, off, t.window))
			}
		}
		if len(matches) == 0 {
			continue
		}
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Position < matches[j].Position })
		out[c.Name] = matches
	}
	return out
}

// FindOne returns, in dictionary order, the categories with at least one keyword present.
// Each category stops at its first matching keyword.
func (t *Tagger) FindOne(text string) []string {
	doc := newDocument(textnorm.Normalize(text))
	if doc.text == "" {
		return nil
	}
	var out []string
	for _, c := range t.dict.categories {
		for _, kw := range c.Keywords {
			if doc.contains(kw) {
				out = append(out, c.Name)
				break
			}
		}
	}
	return out
}

// document is normalized text plus the byte offset where each rune starts.
type document struct {
	text   string
	starts []int
}

func newDocument(text string) *document {
	starts := make([]int, 0, len(text))
	for i := range text {
		starts = append(starts, i)
	}
	return &document{text: text, starts: starts}
}

func (d *document) runeAt(byteOff int) int {
	return sort.SearchInts(d.starts, byteOff)
}

func (d *document) byteAt(runeOff int) int {
	if runeOff >= len(d.starts) {
		return len(d.text)
	}
	return d.starts[runeOff]
}

// findAll returns the byte offsets of non-overlapping boundary-delimited occurrences.
func (d *document) findAll(kw string) []int {
	var out []int
	for from := 0; from <= len(d.text)-len(kw); {
		i := strings.Index(d.text[from:], kw)
		if i < 0 {
			break
		}
		off := from + i
		if d.bounded(off, kw) {
			out = append(out, off)
			from = off + len(kw)
			continue
		}
		_, size := utf8.DecodeRuneInString(d.text[off:])
		from = off + size
	}
	return out
}

func (d *document) contains(kw string) bool {
	for from := 0; from <= len(d.text)-len(kw); {
		i := strings.Index(d.text[from:], kw)
		if i < 0 {
			return false
		}
		off := from + i
		if d.bounded(off, kw) {
			return true
		}
		_, size := utf8.DecodeRuneInString(d.text[off:])
		from = off + size
	}
	return false
}

// bounded reports whether kw at off is not part of a larger token. A keyword edge that is
// punctuation imposes no constraint on that side.
func (d *document) bounded(off int, kw string) bool {
	first, _ := utf8.DecodeRuneInString(kw)
	if off > 0 && textnorm.IsWordRune(first) {
		if prev, _ := utf8.DecodeLastRuneInString(d.text[:off]); textnorm.IsWordRune(prev) {
			return false
		}
	}
	end := off + len(kw)
	last, _ := utf8.DecodeLastRuneInString(kw)
	if end < len(d.text) && textnorm.IsWordRune(last) {
		if next, _ := utf8.DecodeRuneInString(d.text[end:]); textnorm.IsWordRune(next) {
			return false
		}
	}
	return true
}

func (d *document) match(kw string, off int, w Window) models.KeywordMatch {
	pos := d.runeAt(off)
	kwLen := utf8.RuneCountInString(kw)
	start := pos - w.Before
	if start < 0 {
		start = 0
	}
	end := pos + kwLen + w.After
	return models.KeywordMatch{
		Keyword:  kw,
		Context:  strings.TrimSpace(d.text[d.byteAt(start):d.byteAt(end)]),
		Position: pos,
	}
}
