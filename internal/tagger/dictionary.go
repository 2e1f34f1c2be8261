// Package tagger matches category keyword dictionaries against normalized text.
package tagger

import (
	"github.com/hyperjump/tuvan/internal/textnorm"
)

// Category is a named keyword list, e.g. "gpu" -> ["rtx", "vga", ...].
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Dictionary is a frozen, ordered set of categories. Keywords are stored normalized.
// It is never mutated after NewDictionary and may be shared across goroutines.
type Dictionary struct {
	categories []Category
	index      map[string]int
}

// NewDictionary copies and normalizes categories. Empty keywords and duplicates within a
// category are dropped; a repeated category name extends the first one.
func NewDictionary(categories []Category) *Dictionary {
	d := &Dictionary{index: make(map[string]int, len(categories))}
	seen := make(map[string]map[string]bool, len(categories))
	for _, c := range categories {
		name := c.Name
		if name == "" {
			continue
		}
		i, ok := d.index[name]
		if !ok {
			i = len(d.categories)
			d.index[name] = i
			d.categories = append(d.categories, Category{Name: name})
			seen[name] = make(map[string]bool)
		}
		for _, kw := range c.Keywords {
			kw = textnorm.Normalize(kw)
			if kw == "" || seen[name][kw] {
				continue
			}
			seen[name][kw] = true
			d.categories[i].Keywords = append(d.categories[i].Keywords, kw)
		}
	}
	return d
}

// Names returns category names in dictionary order.
func (d *Dictionary) Names() []string {
	out := make([]string, len(d.categories))
	for i, c := range d.categories {
		out[i] = c.Name
	}
	return out
}

// Keywords returns a copy of a category's normalized keywords, or nil if unknown.
func (d *Dictionary) Keywords(name string) []string {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return append([]string(nil), d.categories[i].Keywords...)
}

// Categories returns a deep copy of the dictionary contents.
func (d *Dictionary) Categories() []Category {
	out := make([]Category, len(d.categories))
	for i, c := range d.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// Len returns the number of categories.
func (d *Dictionary) Len() int {
	return len(d.categories)
}
