// Package storage defines the persistence interface for analysis records.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/tuvan/internal/models"
)

// ErrNotFound is returned when a thread or run does not exist.
var ErrNotFound = errors.New("not found")

// Counts summarizes stored records.
type Counts struct {
	Runs    int64 `json:"runs"`
	Threads int64 `json:"threads"`
	OPs     int64 `json:"ops"`
	Replies int64 `json:"replies"`
}

// Storage persists per-thread analyses and run bookkeeping.
type Storage interface {
	// Run operations
	SaveRun(ctx context.Context, run *models.Run) error
	LastRun(ctx context.Context) (*models.Run, error)

	// Thread operations. SaveThread replaces any earlier analysis of the same thread.
	SaveThread(ctx context.Context, runID string, ta *models.ThreadAnalysis) error
	GetThread(ctx context.Context, threadID string) (*models.ThreadAnalysis, error)
	DeleteThread(ctx context.Context, threadID string) error

	// Bulk reads for aggregation, ordered by thread id then post order.
	ListOPs(ctx context.Context) ([]models.OPAnalysis, error)
	ListReplies(ctx context.Context) ([]models.ReplyAnalysis, error)

	// Stats
	Counts(ctx context.Context) (Counts, error)

	Close() error
}
