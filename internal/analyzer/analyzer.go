// Package analyzer turns thread posts into OP and reply analysis records.
package analyzer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/hyperjump/tuvan/internal/config"
	"github.com/hyperjump/tuvan/internal/lexicon"
	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/money"
	"github.com/hyperjump/tuvan/internal/tagger"
	"github.com/hyperjump/tuvan/internal/textnorm"
	"go.uber.org/zap"
)

var (
	// ErrNoPosts is returned by AnalyzeOP for a thread without posts.
	ErrNoPosts = errors.New("thread has no posts")
	// ErrMalformedPost wraps the decode error of a post that could not be read.
	ErrMalformedPost = errors.New("malformed post")
)

// Analyzer applies the money parser and keyword taggers to posts. It has no mutable
// state and can be shared by concurrent workers.
type Analyzer struct {
	parser       *money.Parser
	components   *tagger.Tagger
	brands       *tagger.Tagger
	purposes     *tagger.Tagger
	requirements *tagger.Tagger
	budgetRange  money.Range
	priceRange   money.Range
	logger       *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a logger for skipped posts.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithParser replaces the default money parser.
func WithParser(p *money.Parser) Option {
	return func(a *Analyzer) {
		if p != nil {
			a.parser = p
		}
	}
}

// New builds an analyzer from dictionaries and analysis settings. A nil lex uses the
// built-in dictionaries; zero-valued ranges and windows take their defaults.
func New(lex *lexicon.Set, cfg config.AnalysisConfig, opts ...Option) *Analyzer {
	if lex == nil {
		lex = lexicon.Default()
	}
	full := config.Config{Analysis: cfg}
	config.ApplyDefaults(&full)
	cfg = full.Analysis
	a := &Analyzer{
		components:   tagger.New(lex.Components, cfg.ComponentWindow),
		brands:       tagger.New(lex.Brands, cfg.BrandWindow),
		purposes:     tagger.New(lex.Purposes, tagger.Window{}),
		requirements: tagger.New(lex.Requirements, tagger.Window{}),
		budgetRange:  cfg.BudgetRange,
		priceRange:   cfg.PriceRange,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.parser == nil {
		a.parser = money.NewParser(money.WithLogger(a.logger))
	}
	return a
}

// AnalyzeOP extracts budget, purposes and special requirements from the thread title and
// the opening post. The title budget takes priority over the body budget.
func (a *Analyzer) AnalyzeOP(thread *models.Thread) (*models.OPAnalysis, error) {
	op := thread.OP()
	if op == nil {
		return nil, ErrNoPosts
	}
	if err := op.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPost, err)
	}
	body := op.CombinedText()

	budget, ok := a.parser.Extract(thread.Title, money.Budget, a.budgetRange)
	if !ok {
		budget, ok = a.parser.Extract(body, money.Budget, a.budgetRange)
	}
	var budgetPtr *models.MoneyValue
	if ok {
		budgetPtr = &budget
	}

	return &models.OPAnalysis{
		ThreadID:            thread.ThreadID,
		Title:               thread.Title,
		Budget:              budgetPtr,
		Purposes:            union(a.purposes.Dictionary().Names(), a.purposes.FindOne(thread.Title), a.purposes.FindOne(body)),
		SpecialRequirements: nonNil(a.requirements.FindOne(thread.Title + " " + body)),
		User:                op.Author.Username,
		PostDate:            op.CreatedDate,
		ContentLength:       utf8.RuneCountInString(op.ContentText),
	}, nil
}

// AnalyzeReply extracts component, brand and price mentions from a reply. It returns
// nil, nil when the reply mentions no component.
func (a *Analyzer) AnalyzeReply(post *models.Post, threadID string) (*models.ReplyAnalysis, error) {
	if err := post.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPost, err)
	}
	text := post.CombinedText()
	components := a.components.Tag(text)
	if len(components) == 0 {
		return nil, nil
	}
	reactions := post.Reactions
	if reactions == nil {
		reactions = map[string]int{}
	}
	return &models.ReplyAnalysis{
		ThreadID:      threadID,
		PostID:        post.ID(),
		User:          post.Author.Username,
		PostDate:      post.CreatedDate,
		Components:    components,
		Brands:        a.brands.Tag(text),
		Prices:        nonNilMoney(a.parser.ExtractAll(text, money.Price, a.priceRange)),
		Reactions:     reactions,
		HasImages:     post.HasImages(),
		ContentLength: utf8.RuneCountInString(post.ContentText),
	}, nil
}

// AnalyzeThread runs AnalyzeOP and AnalyzeReply over a whole thread. A post that fails
// is logged, counted in Skipped, and left out; the rest of the thread still counts.
func (a *Analyzer) AnalyzeThread(thread *models.Thread) *models.ThreadAnalysis {
	result := &models.ThreadAnalysis{
		ThreadID: thread.ThreadID,
		Title:    thread.Title,
		Replies:  []models.ReplyAnalysis{},
	}
	op, err := a.AnalyzeOP(thread)
	switch {
	case errors.Is(err, ErrNoPosts):
		a.logger.Warn("thread has no posts", zap.String("thread_id", thread.ThreadID))
		return result
	case err != nil:
		a.logger.Warn("skipping opening post",
			zap.String("thread_id", thread.ThreadID),
			zap.Error(err))
		result.Skipped++
	default:
		result.OP = op
	}
	replies := thread.Replies()
	for i := range replies {
		post := &replies[i]
		reply, err := a.AnalyzeReply(post, thread.ThreadID)
		if err != nil {
			a.logger.Warn("skipping reply",
				zap.String("thread_id", thread.ThreadID),
				zap.String("post_id", post.ID()),
				zap.Int("index", i+1),
				zap.Error(err))
			result.Skipped++
			continue
		}
		if reply != nil {
			result.Replies = append(result.Replies, *reply)
		}
	}
	return result
}

// union merges tag lists, keeping dictionary order.
func union(order []string, lists ...[]string) []string {
	present := make(map[string]bool)
	for _, l := range lists {
		for _, s := range l {
			present[s] = true
		}
	}
	out := []string{}
	for _, name := range order {
		if present[name] {
			out = append(out, name)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMoney(s []models.MoneyValue) []models.MoneyValue {
	if s == nil {
		return []models.MoneyValue{}
	}
	return s
}

// TextAnalysis is every extraction applied to one piece of free text.
type TextAnalysis struct {
	Normalized          string                           `json:"normalized"`
	Budget              *models.MoneyValue               `json:"budget,omitempty"`
	Prices              []models.MoneyValue              `json:"prices"`
	Components          map[string][]models.KeywordMatch `json:"components"`
	Brands              map[string][]models.KeywordMatch `json:"brands"`
	Purposes            []string                         `json:"purposes"`
	SpecialRequirements []string                         `json:"special_requirements"`
}

// AnalyzeText runs the OP and reply extractions over arbitrary text.
func (a *Analyzer) AnalyzeText(text string) *TextAnalysis {
	ta := &TextAnalysis{
		Normalized:          textnorm.Normalize(text),
		Prices:              nonNilMoney(a.parser.ExtractAll(text, money.Price, a.priceRange)),
		Components:          a.components.Tag(text),
		Brands:              a.brands.Tag(text),
		Purposes:            nonNil(a.purposes.FindOne(text)),
		SpecialRequirements: nonNil(a.requirements.FindOne(text)),
	}
	if budget, ok := a.parser.Extract(text, money.Budget, a.budgetRange); ok {
		ta.Budget = &budget
	}
	return ta
}
