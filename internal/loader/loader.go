// Package loader reads crawled thread JSON files from disk.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/hyperjump/tuvan/internal/models"
	"go.uber.org/zap"
)

// Loader reads one thread per JSON file.
type Loader struct {
	logger *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for skipped files.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader returns a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Failure records a file that could not be turned into a thread.
type Failure struct {
	Path string
	Err  error
}

// Result holds the threads read from a directory and the files that were skipped.
type Result struct {
	Threads  []*models.Thread
	Failures []Failure
}

// LoadDir walks dir recursively and reads every file whose base name matches pattern
// (filepath.Match syntax). Files are read in lexical path order. A file that cannot be
// read or decoded is logged and recorded in Failures; the walk continues.
func (ld *Loader) LoadDir(ctx context.Context, dir, pattern string) (*Result, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			ld.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}
	sort.Strings(paths)

	res := &Result{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		th, err := ld.LoadFile(path)
		if err != nil {
			ld.logger.Error("skipping thread file", zap.String("path", path), zap.Error(err))
			res.Failures = append(res.Failures, Failure{Path: path, Err: err})
			continue
		}
		res.Threads = append(res.Threads, th)
	}
	ld.logger.Info("threads loaded",
		zap.String("dir", dir),
		zap.Int("threads", len(res.Threads)),
		zap.Int("failed", len(res.Failures)))
	return res, nil
}

// LoadFile reads a single thread file and resolves its thread id.
func (ld *Loader) LoadFile(path string) (*models.Thread, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thread: %w", err)
	}
	return Decode(data)
}

// Decode parses one thread document and resolves its thread id.
func Decode(data []byte) (*models.Thread, error) {
	var th models.Thread
	if err := json.Unmarshal(data, &th); err != nil {
		return nil, fmt.Errorf("failed to decode thread: %w", err)
	}
	if err := th.ResolveID(); err != nil {
		return nil, err
	}
	return &th, nil
}
