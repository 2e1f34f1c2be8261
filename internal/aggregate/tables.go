package aggregate

import (
	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/report"
	"github.com/hyperjump/tuvan/pkg/utils"
)

// Table names, in output order.
const (
	TableOPAnalysis              = "op_analysis"
	TableComponentSuggestions    = "component_suggestions"
	TableReplyOverview           = "reply_overview"
	TablePriceSuggestions        = "price_suggestions"
	TableBrandMentions           = "brand_mentions"
	TableBudgetDistribution      = "budget_distribution"
	TablePurposeDistribution     = "purpose_distribution"
	TableRequirementDistribution = "requirement_distribution"
	TableComponentFrequency      = "component_frequency"
	TableKeywordFrequency        = "keyword_frequency"
	TableBudgetComponentCounts   = "budget_component_counts"
	TableBudgetComponentPercents = "budget_component_percentages"
	TableBudgetPurposePercents   = "budget_purpose_percentages"
	TableComponentPriceStats     = "component_price_stats"
	TablePopularCombinations     = "popular_combinations"
	TableComponentCoOccurrence   = "component_cooccurrence"
	TableUserExpertise           = "user_expertise"
	TableMonthlyComponentTrend   = "monthly_component_trend"
)

// Tables renders the per-record tables and every aggregate of rep. components fixes
// the reply_overview columns and contextMaxLen bounds suggestion contexts.
func Tables(rep *Report, ops []models.OPAnalysis, replies []models.ReplyAnalysis, components []string, contextMaxLen int) []report.Table {
	if len(components) == 0 {
		components = rep.BudgetComponentPivot.Columns
	}
	return []report.Table{
		report.OPTable(report.OPRows(ops)),
		report.SuggestionTable(report.SuggestionRows(replies, contextMaxLen)),
		replyOverview(replies, components),
		priceSuggestions(replies),
		brandMentions(replies, contextMaxLen),
		budgetDistribution(rep),
		countTable(TablePurposeDistribution, "purpose", rep.PurposeFrequency),
		countTable(TableRequirementDistribution, "requirement", rep.RequirementFrequency),
		countTable(TableComponentFrequency, "component_type", rep.ComponentFrequency),
		keywordFrequency(rep, components),
		pivotCounts(TableBudgetComponentCounts, "budget_range", rep.BudgetComponentPivot),
		pivotPercents(TableBudgetComponentPercents, "budget_range", rep.BudgetComponentPivot),
		pivotPercents(TableBudgetPurposePercents, "budget_range", rep.BudgetPurposePivot),
		priceStats(rep),
		combinationTable(rep),
		pivotCounts(TableComponentCoOccurrence, "component_type", rep.CoOccurrence),
		userExpertiseTable(rep),
		pivotCounts(TableMonthlyComponentTrend, "month", rep.MonthlyComponentTrend),
	}
}

func replyOverview(replies []models.ReplyAnalysis, components []string) report.Table {
	cols := []string{"thread_id", "post_id", "component_count", "price_count", "brand_count"}
	for _, c := range components {
		cols = append(cols, "has_"+c, c+"_count")
	}
	t := report.NewTable(TableReplyOverview, cols...)
	for i := range replies {
		r := &replies[i]
		row := []string{r.ThreadID, r.PostID, report.Int(len(r.Components)), report.Int(len(r.Prices)), report.Int(len(r.Brands))}
		for _, c := range components {
			n := len(r.Components[c])
			row = append(row, report.Bool(n > 0), report.Int(n))
		}
		t.Append(row...)
	}
	return *t
}

func priceSuggestions(replies []models.ReplyAnalysis) report.Table {
	t := report.NewTable(TablePriceSuggestions, "thread_id", "post_id", "price_value", "original_text")
	for i := range replies {
		for _, p := range replies[i].Prices {
			t.Append(replies[i].ThreadID, replies[i].PostID, report.Float(p.Value), p.OriginalText)
		}
	}
	return *t
}

func brandMentions(replies []models.ReplyAnalysis, contextMaxLen int) report.Table {
	if contextMaxLen <= 0 {
		contextMaxLen = report.DefaultContextMaxLen
	}
	t := report.NewTable(TableBrandMentions, "thread_id", "post_id", "brand", "keyword", "context")
	for i := range replies {
		r := &replies[i]
		for _, brand := range report.SortedKeys(r.Brands) {
			for _, m := range r.Brands[brand] {
				t.Append(r.ThreadID, r.PostID, brand, m.Keyword, utils.Cut(m.Context, contextMaxLen))
			}
		}
	}
	return *t
}

func budgetDistribution(rep *Report) report.Table {
	t := report.NewTable(TableBudgetDistribution, "range", "count")
	for _, b := range rep.BudgetHistogram {
		t.Append(b.Range, report.Int(b.Count))
	}
	return *t
}

func countTable(name, label string, counts []Count) report.Table {
	t := report.NewTable(name, label, "count", "percentage")
	for _, c := range counts {
		t.Append(c.Name, report.Int(c.Count), report.Fixed(c.Percentage))
	}
	return *t
}

func keywordFrequency(rep *Report, components []string) report.Table {
	t := report.NewTable(TableKeywordFrequency, "component_type", "keyword", "count")
	seen := make(map[string]bool)
	emit := func(cat string) {
		seen[cat] = true
		for _, kc := range rep.KeywordFrequencies[cat] {
			t.Append(cat, kc.Keyword, report.Int(kc.Count))
		}
	}
	for _, cat := range components {
		emit(cat)
	}
	rest := make(map[string]bool)
	for cat := range rep.KeywordFrequencies {
		if !seen[cat] {
			rest[cat] = true
		}
	}
	for _, cat := range sortedKeys(rest) {
		emit(cat)
	}
	return *t
}

func pivotCounts(name, label string, p Pivot) report.Table {
	t := report.NewTable(name, append([]string{label}, p.Columns...)...)
	for r, row := range p.Counts {
		cells := []string{p.Rows[r]}
		for _, n := range row {
			cells = append(cells, report.Int(n))
		}
		t.Append(cells...)
	}
	return *t
}

func pivotPercents(name, label string, p Pivot) report.Table {
	t := report.NewTable(name, append([]string{label}, p.Columns...)...)
	for r, row := range p.Percentages {
		cells := []string{p.Rows[r]}
		for _, v := range row {
			cells = append(cells, report.Fixed(v))
		}
		t.Append(cells...)
	}
	return *t
}

func priceStats(rep *Report) report.Table {
	t := report.NewTable(TableComponentPriceStats, "component_type", "count", "min", "max", "mean", "median")
	for _, s := range rep.ComponentPriceStats {
		t.Append(s.Component, report.Int(s.Count), report.Float(s.Min), report.Float(s.Max),
			report.Fixed(s.Mean), report.Float(s.Median))
	}
	return *t
}

func combinationTable(rep *Report) report.Table {
	t := report.NewTable(TablePopularCombinations, "components", "count")
	for _, c := range rep.Combinations {
		t.Append(c.Components, report.Int(c.Count))
	}
	return *t
}

func userExpertiseTable(rep *Report) report.Table {
	t := report.NewTable(TableUserExpertise, "user", "suggestions", "threads", "component_types",
		"likes", "thanks", "score")
	for _, u := range rep.UserExpertise {
		t.Append(u.User, report.Int(u.Suggestions), report.Int(u.Threads), report.Int(u.ComponentTypes),
			report.Int(u.Likes), report.Int(u.Thanks), report.Fixed(u.Score))
	}
	return *t
}
