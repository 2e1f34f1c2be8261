// Package indexer persists thread analyses into storage and the suggestion index.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/tuvan/internal/keyword"
	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/storage"
	"go.uber.org/zap"
)

// Indexer writes analyses to storage and, when configured, the suggestion index.
type Indexer struct {
	storage storage.Storage
	index   keyword.SuggestionIndex
	logger  *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for per-thread failures and run summaries.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// NewIndexer creates an indexer. index may be nil to skip full-text indexing.
func NewIndexer(store storage.Storage, index keyword.SuggestionIndex, opts ...IndexerOption) *Indexer {
	idx := &Indexer{storage: store, index: index, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// StartRun returns a new run record stamped with a fresh id and start time.
func StartRun(inputDir string) *models.Run {
	return &models.Run{ID: uuid.New().String(), InputDir: inputDir, StartedAt: time.Now()}
}

// IndexThread stores one analysis and indexes its replies.
func (idx *Indexer) IndexThread(ctx context.Context, runID string, ta *models.ThreadAnalysis) error {
	if err := idx.storage.SaveThread(ctx, runID, ta); err != nil {
		return fmt.Errorf("failed to store thread: %w", err)
	}
	if idx.index != nil {
		if err := idx.index.IndexThread(ctx, ta); err != nil {
			return fmt.Errorf("failed to index thread: %w", err)
		}
	}
	return nil
}

// IndexAll stores every analysis, one transaction per thread. A thread that fails is
// logged and counted; the rest continue. It stops early only when ctx ends.
func (idx *Indexer) IndexAll(ctx context.Context, runID string, analyses []*models.ThreadAnalysis) (stored, failed int, err error) {
	for _, ta := range analyses {
		if err := ctx.Err(); err != nil {
			return stored, failed, err
		}
		if err := idx.IndexThread(ctx, runID, ta); err != nil {
			idx.logger.Error("failed to persist thread", zap.String("thread_id", ta.ThreadID), zap.Error(err))
			failed++
			continue
		}
		stored++
	}
	idx.logger.Info("threads persisted", zap.String("run_id", runID), zap.Int("stored", stored), zap.Int("failed", failed))
	return stored, failed, nil
}

// FinishRun stamps the finish time and records the run.
func (idx *Indexer) FinishRun(ctx context.Context, run *models.Run) error {
	run.FinishedAt = time.Now()
	if err := idx.storage.SaveRun(ctx, run); err != nil {
		return err
	}
	idx.logger.Info("run recorded",
		zap.String("run_id", run.ID),
		zap.Int("threads", run.Threads),
		zap.Int("ops", run.OPs),
		zap.Int("replies", run.Replies),
		zap.Int("skipped_posts", run.SkippedPosts),
		zap.Int("failed_threads", run.FailedThreads),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))
	return nil
}

// DeleteThread removes a thread from storage and the index.
func (idx *Indexer) DeleteThread(ctx context.Context, threadID string) error {
	if err := idx.storage.DeleteThread(ctx, threadID); err != nil {
		return fmt.Errorf("failed to delete thread from storage: %w", err)
	}
	if idx.index != nil {
		if err := idx.index.DeleteThread(ctx, threadID); err != nil {
			return fmt.Errorf("failed to delete thread from index: %w", err)
		}
	}
	return nil
}
