// Package lexicon provides the keyword dictionaries used to tag posts: hardware
// components, brands, build purposes and special requirements.
package lexicon

import (
	"fmt"
	"os"

	"github.com/hyperjump/tuvan/internal/tagger"
	"gopkg.in/yaml.v3"
)

// Set groups the four dictionaries. All of them are frozen after construction.
type Set struct {
	Components   *tagger.Dictionary
	Brands       *tagger.Dictionary
	Purposes     *tagger.Dictionary
	Requirements *tagger.Dictionary
}

// File is the YAML layout of a dictionary override. Sections left empty keep the defaults.
type File struct {
	Components   []tagger.Category `yaml:"components"`
	Brands       []tagger.Category `yaml:"brands"`
	Purposes     []tagger.Category `yaml:"purposes"`
	Requirements []tagger.Category `yaml:"special_requirements"`
}

// Default returns the built-in dictionaries.
func Default() *Set {
	return &Set{
		Components:   tagger.NewDictionary(defaultComponents),
		Brands:       tagger.NewDictionary(defaultBrands),
		Purposes:     tagger.NewDictionary(defaultPurposes),
		Requirements: tagger.NewDictionary(defaultRequirements),
	}
}

// Load reads a YAML override from path. An empty path returns Default().
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionaries: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse dictionaries: %w", err)
	}
	return FromFile(&f), nil
}

// FromFile builds a Set, falling back to the default for each empty section.
func FromFile(f *File) *Set {
	pick := func(override, def []tagger.Category) *tagger.Dictionary {
		if len(override) > 0 {
			return tagger.NewDictionary(override)
		}
		return tagger.NewDictionary(def)
	}
	return &Set{
		Components:   pick(f.Components, defaultComponents),
		Brands:       pick(f.Brands, defaultBrands),
		Purposes:     pick(f.Purposes, defaultPurposes),
		Requirements: pick(f.Requirements, defaultRequirements),
	}
}

// Export returns the Set in its YAML file layout.
func (s *Set) Export() *File {
	return &File{
		Components:   s.Components.Categories(),
		Brands:       s.Brands.Categories(),
		Purposes:     s.Purposes.Categories(),
		Requirements: s.Requirements.Categories(),
	}
}
