// Package money parses Vietnamese free-text money notation ("15tr", "15 triệu",
// "15.000.000đ", "500k") into millions of VND.
package money

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/textnorm"
	"go.uber.org/zap"
)

// Kind selects which pattern bank a lookup uses.
type Kind int

const (
	// Budget is a whole-build figure from an opening post.
	Budget Kind = iota
	// Price is a per-component figure from a reply.
	Price
)

func (k Kind) String() string {
	switch k {
	case Budget:
		return "budget"
	case Price:
		return "price"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps "budget" and "price" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "budget", "":
		return Budget, nil
	case "price":
		return Price, nil
	default:
		return 0, fmt.Errorf("unknown money kind %q", s)
	}
}

// Range is a half-open plausibility interval [Low, High) in millions of VND.
type Range struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Contains reports whether v lies in [Low, High).
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v < r.High
}

var (
	// BudgetRange bounds whole-build budgets.
	BudgetRange = Range{Low: 1, High: 100}
	// PriceRange bounds single-component prices.
	PriceRange = Range{Low: 0.1, High: 50}
)

const (
	numeral = `(\d+(?:[.,]\d+)*)`
	// Longest alternatives first: RE2 alternation is leftmost-first.
	unit      = `(triệu|trieu|trĩ|tri|tr|củ|cu|nghìn|nghin|ngàn|ngan|k|đồng|dong|vnd|đ|d|m)`
	amount    = numeral + `\s*` + unit
	connector = `\s*(?:kho[ảa]ng|t[ầa]m|:|\s)\s*`
)

var budgetBank = []string{
	`ng[aâ]n\s*s[áa]ch` + connector + amount,
	`bu[dđ]ge[dt]` + connector + amount,
	`t[ổo]ng\s*(?:chi\s*ph[íi]|gi[áa])` + connector + amount,
	`kho[ảa]ng\s*` + amount,
	`t[ầa]m\s*` + amount,
	amount,
}

var priceBank = []string{
	`gi[áa]\s*(?:(?:kho[ảa]ng|t[ầa]m)\s*)?` + amount,
	`(?:(?:kho[ảa]ng|t[ầa]m)\s*)?` + amount,
	amount,
}

type unitFamily int

const (
	familyMillion unitFamily = iota
	familyThousand
	familyDong
	familyOther
)

var units = map[string]unitFamily{
	"tr": familyMillion, "triệu": familyMillion, "trieu": familyMillion,
	"củ": familyMillion, "cu": familyMillion, "trĩ": familyMillion, "tri": familyMillion,
	"nghìn": familyThousand, "nghin": familyThousand, "ngàn": familyThousand,
	"ngan": familyThousand, "k": familyThousand,
	"đồng": familyDong, "dong": familyDong, "vnd": familyDong, "d": familyDong, "đ": familyDong,
}

func (f unitFamily) toMillions(v float64) float64 {
	switch f {
	case familyThousand:
		return v / 1000
	case familyDong:
		return v / 1_000_000
	default:
		return v
	}
}

// Parser extracts money values with an ordered, most-specific-first pattern bank.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	banks  map[Kind][]*regexp.Regexp
	logger *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets a logger for skipped candidates.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser compiles the budget and price banks.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		banks: map[Kind][]*regexp.Regexp{
			Budget: compileBank(budgetBank),
			Price:  compileBank(priceBank),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func compileBank(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, pat := range patterns {
		out[i] = regexp.MustCompile(pat)
	}
	return out
}

type candidate struct {
	start int // byte offset of the numeral in the normalized text
	value models.MoneyValue
}

// Extract returns the first in-range value, trying patterns in bank order and matches in
// textual order. ok is false when no candidate is both valid and in range.
func (p *Parser) Extract(text string, kind Kind, rng Range) (models.MoneyValue, bool) {
	norm := textnorm.Normalize(text)
	if norm == "" {
		return models.MoneyValue{}, false
	}
	for _, re := range p.banks[kind] {
		for _, m := range re.FindAllStringSubmatchIndex(norm, -1) {
			c, ok := p.candidate(norm, m)
			if ok && rng.Contains(c.value.Value) {
				return c.value, true
			}
		}
	}
	return models.MoneyValue{}, false
}

// ExtractAll returns every in-range value in textual order. A numeral is claimed by the
// first pattern that accepts it, so the same figure is never reported twice.
func (p *Parser) ExtractAll(text string, kind Kind, rng Range) []models.MoneyValue {
	norm := textnorm.Normalize(text)
	if norm == "" {
		return nil
	}
	claimed := make(map[int]bool)
	var found []candidate
	for _, re := range p.banks[kind] {
		for _, m := range re.FindAllStringSubmatchIndex(norm, -1) {
			c, ok := p.candidate(norm, m)
			if !ok || claimed[c.start] || !rng.Contains(c.value.Value) {
				continue
			}
			claimed[c.start] = true
			found = append(found, c)
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })
	out := make([]models.MoneyValue, len(found))
	for i, c := range found {
		out[i] = c.value
	}
	return out
}

// candidate converts one regex match. Matches whose numeral is glued to a preceding token
// ("b660m") or whose unit runs into a following word ("2 màn") are not money.
func (p *Parser) candidate(norm string, m []int) (candidate, bool) {
	numStart, numEnd := m[2], m[3]
	unitStart, unitEnd := m[4], m[5]
	if numStart > 0 {
		if r, _ := utf8.DecodeLastRuneInString(norm[:numStart]); textnorm.IsWordRune(r) {
			return candidate{}, false
		}
	}
	if unitEnd < len(norm) {
		if r, _ := utf8.DecodeRuneInString(norm[unitEnd:]); unicode.IsLetter(r) {
			return candidate{}, false
		}
	}
	num, u := norm[numStart:numEnd], norm[unitStart:unitEnd]
	value, err := convert(num, u)
	if err != nil {
		p.logger.Debug("skipping money candidate",
			zap.String("text", norm[m[0]:m[1]]),
			zap.Error(err))
		return candidate{}, false
	}
	return candidate{
		start: numStart,
		value: models.MoneyValue{
			Value:        value,
			Unit:         models.UnitMillion,
			OriginalText: strings.TrimSpace(norm[m[0]:m[1]]),
		},
	}, true
}

// Convert turns a numeral and unit token into millions of VND.
func Convert(num, unit string) (float64, error) {
	return convert(num, textnorm.Normalize(unit))
}

func convert(num, u string) (float64, error) {
	family, ok := units[u]
	if !ok {
		family = familyOther
	}
	v, err := parseNumeral(num, family)
	if err != nil {
		return 0, err
	}
	v = family.toMillions(v)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("numeral %q out of range", num)
	}
	return v, nil
}

// parseNumeral decides whether '.' and ',' are decimal points or thousands separators.
// Several separators are always grouping ("15.000.000"); a single separator followed by
// exactly three digits is grouping for đồng and nghìn amounts ("500.000đ", "1.500k");
// anything else is a decimal point ("1,5tr").
func parseNumeral(num string, family unitFamily) (float64, error) {
	seps := strings.Count(num, ".") + strings.Count(num, ",")
	clean := num
	switch {
	case seps > 1:
		clean = stripSeparators(num)
	case seps == 1:
		i := strings.IndexAny(num, ".,")
		grouped := len(num)-i-1 == 3 && (family == familyDong || family == familyThousand)
		if grouped {
			clean = stripSeparators(num)
		} else {
			clean = strings.Replace(num, ",", ".", 1)
		}
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse numeral %q: %w", num, err)
	}
	return v, nil
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}
