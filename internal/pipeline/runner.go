// Package pipeline fans thread analysis out over a fixed pool of workers.
package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/hyperjump/tuvan/internal/models"
	"go.uber.org/zap"
)

// ThreadAnalyzer is the per-thread work. *analyzer.Analyzer implements it.
type ThreadAnalyzer interface {
	AnalyzeThread(thread *models.Thread) *models.ThreadAnalysis
}

// Runner analyzes batches of threads concurrently.
type Runner struct {
	analyzer ThreadAnalyzer
	workers  int
	logger   *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets a logger for progress output.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner returns a runner with the given number of workers (at least one).
func NewRunner(a ThreadAnalyzer, workers int, opts ...RunnerOption) *Runner {
	if workers < 1 {
		workers = 1
	}
	r := &Runner{analyzer: a, workers: workers, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the reduced output of a batch, in input order.
type Result struct {
	Threads      []*models.ThreadAnalysis
	OPs          []models.OPAnalysis
	Replies      []models.ReplyAnalysis
	SkippedPosts int
	// Cancelled is true when ctx ended before every thread was dispatched.
	Cancelled bool
}

type indexed struct {
	i        int
	analysis *models.ThreadAnalysis
}

// Run analyzes threads. Each worker keeps its own result slice; the slices are merged
// and put back in input order once all workers finish, so output does not depend on
// scheduling. When ctx is cancelled, threads already analyzed are still returned.
func (r *Runner) Run(ctx context.Context, threads []*models.Thread) *Result {
	queue := make(chan int)
	perWorker := make([][]indexed, r.workers)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range queue {
				perWorker[w] = append(perWorker[w], indexed{i: i, analysis: r.analyzer.AnalyzeThread(threads[i])})
			}
		}(w)
	}

	cancelled := false
dispatch:
	for i := range threads {
		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()

	var all []indexed
	for _, part := range perWorker {
		all = append(all, part...)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].i < all[b].i })

	res := &Result{Cancelled: cancelled}
	for _, it := range all {
		ta := it.analysis
		res.Threads = append(res.Threads, ta)
		if ta.OP != nil {
			res.OPs = append(res.OPs, *ta.OP)
		}
		res.Replies = append(res.Replies, ta.Replies...)
		res.SkippedPosts += ta.Skipped
	}
	r.logger.Info("analysis batch finished",
		zap.Int("threads", len(res.Threads)),
		zap.Int("ops", len(res.OPs)),
		zap.Int("replies", len(res.Replies)),
		zap.Int("skipped_posts", res.SkippedPosts),
		zap.Bool("cancelled", cancelled))
	return res
}
