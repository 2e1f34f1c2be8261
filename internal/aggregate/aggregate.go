// Package aggregate folds per-thread analysis records into cross-thread summaries.
// Every function here is deterministic: the same input yields the same output.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/tuvan/internal/models"
)

// BudgetBins are the right-open histogram edges in millions of VND.
var BudgetBins = []float64{0, 5, 10, 15, 20, 25, 30, 40, 50, 100}

// BudgetLabels name the intervals between consecutive BudgetBins.
var BudgetLabels = []string{"0-5tr", "5-10tr", "10-15tr", "15-20tr", "20-25tr", "25-30tr", "30-40tr", "40-50tr", "50tr+"}

// BudgetBin returns the label of the bin holding v, or false when v is outside [0, 100).
func BudgetBin(v float64) (string, bool) {
	for i := 0; i < len(BudgetBins)-1; i++ {
		if v >= BudgetBins[i] && v < BudgetBins[i+1] {
			return BudgetLabels[i], true
		}
	}
	return "", false
}

// Options controls category ordering and thresholds.
type Options struct {
	// Components and Purposes fix column order; when empty the order is derived from the data.
	Components          []string
	Purposes            []string
	Requirements        []string
	MinCombinationCount int
}

// BinCount is one histogram bar.
type BinCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Count is a frequency with its share of the population, in percent.
type Count struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// KeywordCount is how often one keyword matched.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Pivot is a labelled matrix. Percentages, when present, are row-normalized.
type Pivot struct {
	Rows        []string    `json:"rows"`
	Columns     []string    `json:"columns"`
	Counts      [][]int     `json:"counts"`
	Percentages [][]float64 `json:"percentages,omitempty"`
}

// PriceStats summarizes prices quoted in replies that mention a component.
type PriceStats struct {
	Component string  `json:"component"`
	Count     int     `json:"count"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
}

// Combination is a set of component categories suggested together.
type Combination struct {
	Components string `json:"components"`
	Count      int    `json:"count"`
}

// UserScore ranks repliers by how much and how well they advise.
type UserScore struct {
	User           string  `json:"user"`
	Suggestions    int     `json:"suggestions"`
	Threads        int     `json:"threads"`
	ComponentTypes int     `json:"component_types"`
	Likes          int     `json:"likes"`
	Thanks         int     `json:"thanks"`
	Score          float64 `json:"score"`
}

// Report is every aggregate over one set of analysis records.
type Report struct {
	OPs                   int                       `json:"ops"`
	Replies               int                       `json:"replies"`
	OPsWithBudget         int                       `json:"ops_with_budget"`
	BudgetHistogram       []BinCount                `json:"budget_histogram"`
	KeywordFrequencies    map[string][]KeywordCount `json:"keyword_frequencies"`
	BudgetComponentPivot  Pivot                     `json:"budget_component_pivot"`
	PurposeFrequency      []Count                   `json:"purpose_frequency"`
	RequirementFrequency  []Count                   `json:"requirement_frequency"`
	ComponentFrequency    []Count                   `json:"component_frequency"`
	ComponentPriceStats   []PriceStats              `json:"component_price_stats"`
	Combinations          []Combination             `json:"combinations"`
	CoOccurrence          Pivot                     `json:"co_occurrence"`
	UserExpertise         []UserScore               `json:"user_expertise"`
	BudgetPurposePivot    Pivot                     `json:"budget_purpose_pivot"`
	MonthlyComponentTrend Pivot                     `json:"monthly_component_trend"`
}

// Build computes every aggregate. Threads without a budget are left out of budget-keyed
// aggregates and kept everywhere else.
func Build(ops []models.OPAnalysis, replies []models.ReplyAnalysis, opts Options) *Report {
	if opts.MinCombinationCount <= 0 {
		opts.MinCombinationCount = 3
	}
	components := opts.Components
	if len(components) == 0 {
		components = replyCategories(replies)
	}
	purposes := opts.Purposes
	if len(purposes) == 0 {
		purposes = opCategories(ops, func(op *models.OPAnalysis) []string { return op.Purposes })
	}
	requirements := opts.Requirements
	if len(requirements) == 0 {
		requirements = opCategories(ops, func(op *models.OPAnalysis) []string { return op.SpecialRequirements })
	}

	budgetBins := threadBudgetBins(ops)
	return &Report{
		OPs:                   len(ops),
		Replies:               len(replies),
		OPsWithBudget:         len(budgetBins),
		BudgetHistogram:       budgetHistogram(ops),
		KeywordFrequencies:    keywordFrequencies(replies),
		BudgetComponentPivot:  budgetComponentPivot(replies, budgetBins, components),
		PurposeFrequency:      tagFrequency(ops, purposes, func(op *models.OPAnalysis) []string { return op.Purposes }),
		RequirementFrequency:  tagFrequency(ops, requirements, func(op *models.OPAnalysis) []string { return op.SpecialRequirements }),
		ComponentFrequency:    componentFrequency(replies, components),
		ComponentPriceStats:   componentPriceStats(replies, components),
		Combinations:          combinations(replies, opts.MinCombinationCount),
		CoOccurrence:          coOccurrence(replies, components),
		UserExpertise:         userExpertise(replies),
		BudgetPurposePivot:    budgetPurposePivot(ops, purposes),
		MonthlyComponentTrend: monthlyTrend(replies, components),
	}
}

func threadBudgetBins(ops []models.OPAnalysis) map[string]string {
	out := make(map[string]string)
	for i := range ops {
		if ops[i].Budget == nil {
			continue
		}
		if label, ok := BudgetBin(ops[i].Budget.Value); ok {
			out[ops[i].ThreadID] = label
		}
	}
	return out
}

func budgetHistogram(ops []models.OPAnalysis) []BinCount {
	counts := make(map[string]int)
	for i := range ops {
		if ops[i].Budget == nil {
			continue
		}
		if label, ok := BudgetBin(ops[i].Budget.Value); ok {
			counts[label]++
		}
	}
	out := make([]BinCount, len(BudgetLabels))
	for i, label := range BudgetLabels {
		out[i] = BinCount{Range: label, Count: counts[label]}
	}
	return out
}

func keywordFrequencies(replies []models.ReplyAnalysis) map[string][]KeywordCount {
	counts := make(map[string]map[string]int)
	for i := range replies {
		for cat, matches := range replies[i].Components {
			if counts[cat] == nil {
				counts[cat] = make(map[string]int)
			}
			for _, m := range matches {
				counts[cat][m.Keyword]++
			}
		}
	}
	out := make(map[string][]KeywordCount, len(counts))
	for cat, kws := range counts {
		list := make([]KeywordCount, 0, len(kws))
		for kw, n := range kws {
			list = append(list, KeywordCount{Keyword: kw, Count: n})
		}
		sort.Slice(list, func(a, b int) bool {
			if list[a].Count != list[b].Count {
				return list[a].Count > list[b].Count
			}
			return list[a].Keyword < list[b].Keyword
		})
		out[cat] = list
	}
	return out
}

func budgetComponentPivot(replies []models.ReplyAnalysis, bins map[string]string, components []string) Pivot {
	p := newPivot(BudgetLabels, components)
	for i := range replies {
		label, ok := bins[replies[i].ThreadID]
		if !ok {
			continue
		}
		for cat, matches := range replies[i].Components {
			p.add(label, cat, len(matches))
		}
	}
	p.normalizeRows()
	return p
}

func tagFrequency(ops []models.OPAnalysis, order []string, tags func(*models.OPAnalysis) []string) []Count {
	counts := make(map[string]int)
	for i := range ops {
		for _, tag := range tags(&ops[i]) {
			counts[tag]++
		}
	}
	return rankCounts(counts, order, len(ops))
}

func componentFrequency(replies []models.ReplyAnalysis, components []string) []Count {
	counts := make(map[string]int)
	for i := range replies {
		for cat := range replies[i].Components {
			counts[cat]++
		}
	}
	return rankCounts(counts, components, len(replies))
}

// rankCounts keeps names with a non-zero count, sorted by count then name.
func rankCounts(counts map[string]int, order []string, total int) []Count {
	names := append([]string(nil), order...)
	known := make(map[string]bool, len(order))
	for _, n := range order {
		known[n] = true
	}
	for n := range counts {
		if !known[n] {
			names = append(names, n)
		}
	}
	out := []Count{}
	for _, n := range names {
		c := counts[n]
		if c == 0 {
			continue
		}
		out = append(out, Count{Name: n, Count: c, Percentage: percent(c, total)})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Name < out[b].Name
	})
	return out
}

func componentPriceStats(replies []models.ReplyAnalysis, components []string) []PriceStats {
	prices := make(map[string][]float64)
	for i := range replies {
		if len(replies[i].Prices) == 0 {
			continue
		}
		for cat := range replies[i].Components {
			for _, p := range replies[i].Prices {
				prices[cat] = append(prices[cat], p.Value)
			}
		}
	}
	out := []PriceStats{}
	for _, cat := range components {
		values := prices[cat]
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		out = append(out, PriceStats{
			Component: cat,
			Count:     len(values),
			Min:       values[0],
			Max:       values[len(values)-1],
			Mean:      sum / float64(len(values)),
			Median:    median(values),
		})
	}
	return out
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// storageFold groups drive categories for combination counting.
var storageFold = map[string]string{"ssd": "storage", "hdd": "storage"}

func combinations(replies []models.ReplyAnalysis, minCount int) []Combination {
	counts := make(map[string]int)
	for i := range replies {
		set := make(map[string]bool)
		for cat := range replies[i].Components {
			if folded, ok := storageFold[cat]; ok {
				cat = folded
			}
			set[cat] = true
		}
		if len(set) < 2 {
			continue
		}
		cats := make([]string, 0, len(set))
		for c := range set {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		counts[strings.Join(cats, "+")]++
	}
	out := []Combination{}
	for combo, n := range counts {
		if n >= minCount {
			out = append(out, Combination{Components: combo, Count: n})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Components < out[b].Components
	})
	return out
}

func coOccurrence(replies []models.ReplyAnalysis, components []string) Pivot {
	p := newPivot(components, components)
	for i := range replies {
		for a := range replies[i].Components {
			for b := range replies[i].Components {
				if a != b {
					p.add(a, b, 1)
				}
			}
		}
	}
	return p
}

func userExpertise(replies []models.ReplyAnalysis) []UserScore {
	type acc struct {
		score   UserScore
		threads map[string]bool
		types   map[string]bool
	}
	users := make(map[string]*acc)
	for i := range replies {
		r := &replies[i]
		if r.User == "" {
			continue
		}
		u, ok := users[r.User]
		if !ok {
			u = &acc{score: UserScore{User: r.User}, threads: map[string]bool{}, types: map[string]bool{}}
			users[r.User] = u
		}
		u.score.Suggestions++
		u.score.Likes += r.Likes()
		u.score.Thanks += r.Thanks()
		u.threads[r.ThreadID] = true
		for cat := range r.Components {
			u.types[cat] = true
		}
	}
	out := make([]UserScore, 0, len(users))
	for _, u := range users {
		s := u.score
		s.Threads = len(u.threads)
		s.ComponentTypes = len(u.types)
		n := float64(s.Suggestions)
		s.Score = n*0.3 + float64(s.Threads)*0.2 + float64(s.ComponentTypes)*0.1 +
			float64(s.Likes)/n*2 + float64(s.Thanks)/n*3
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].User < out[b].User
	})
	return out
}

func budgetPurposePivot(ops []models.OPAnalysis, purposes []string) Pivot {
	p := newPivot(BudgetLabels, purposes)
	totals := make(map[string]int)
	for i := range ops {
		if ops[i].Budget == nil {
			continue
		}
		label, ok := BudgetBin(ops[i].Budget.Value)
		if !ok {
			continue
		}
		totals[label]++
		for _, purpose := range ops[i].Purposes {
			p.add(label, purpose, 1)
		}
	}
	p.Percentages = make([][]float64, len(p.Rows))
	for r, label := range p.Rows {
		p.Percentages[r] = make([]float64, len(p.Columns))
		for c := range p.Columns {
			p.Percentages[r][c] = percent(p.Counts[r][c], totals[label])
		}
	}
	return p
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700", // XenForo <time datetime>, e.g. 2023-05-12T10:11:12+0700
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// Month returns "YYYY-MM" for the ISO-ish post dates crawls produce.
func Month(date string) (string, bool) {
	date = strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01"), true
		}
	}
	return "", false
}

func monthlyTrend(replies []models.ReplyAnalysis, components []string) Pivot {
	monthSet := make(map[string]bool)
	for i := range replies {
		if m, ok := Month(replies[i].PostDate); ok {
			monthSet[m] = true
		}
	}
	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)
	p := newPivot(months, components)
	for i := range replies {
		m, ok := Month(replies[i].PostDate)
		if !ok {
			continue
		}
		for cat, matches := range replies[i].Components {
			p.add(m, cat, len(matches))
		}
	}
	return p
}

func replyCategories(replies []models.ReplyAnalysis) []string {
	set := make(map[string]bool)
	for i := range replies {
		for cat := range replies[i].Components {
			set[cat] = true
		}
	}
	return sortedKeys(set)
}

func opCategories(ops []models.OPAnalysis, tags func(*models.OPAnalysis) []string) []string {
	set := make(map[string]bool)
	for i := range ops {
		for _, t := range tags(&ops[i]) {
			set[t] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func newPivot(rows, cols []string) Pivot {
	p := Pivot{
		Rows:    append([]string{}, rows...),
		Columns: append([]string{}, cols...),
		Counts:  make([][]int, len(rows)),
	}
	for i := range p.Counts {
		p.Counts[i] = make([]int, len(cols))
	}
	return p
}

// add increments a cell; labels outside the pivot are ignored.
func (p *Pivot) add(row, col string, n int) {
	r, c := indexOf(p.Rows, row), indexOf(p.Columns, col)
	if r < 0 || c < 0 {
		return
	}
	p.Counts[r][c] += n
}

func (p *Pivot) normalizeRows() {
	p.Percentages = make([][]float64, len(p.Rows))
	for r, row := range p.Counts {
		total := 0
		for _, n := range row {
			total += n
		}
		p.Percentages[r] = make([]float64, len(row))
		for c, n := range row {
			p.Percentages[r][c] = percent(n, total)
		}
	}
}

// Cell returns the count at (row, col), or 0 for unknown labels.
func (p *Pivot) Cell(row, col string) int {
	r, c := indexOf(p.Rows, row), indexOf(p.Columns, col)
	if r < 0 || c < 0 {
		return 0
	}
	return p.Counts[r][c]
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
