package report

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Bundle is everything one report run can emit.
type Bundle struct {
	Tables      []Table
	OPs         []OPRow
	Suggestions []SuggestionRow
	// Document is encoded as report.json when the json format is enabled.
	Document any
	// Threads, when set, is encoded as threads.json alongside the report.
	Threads any
}

// Writer emits a Bundle in the configured formats.
type Writer struct {
	dir     string
	formats []string
	logger  *zap.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLogger sets the writer logger.
func WithLogger(l *zap.Logger) WriterOption {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter returns a writer for dir. Unknown formats are ignored with a warning at write time.
func NewWriter(dir string, formats []string, opts ...WriterOption) *Writer {
	w := &Writer{dir: dir, formats: formats, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write emits every configured format. A format that fails is logged and skipped; only a
// missing output directory is returned as an error. It returns the files written.
func (w *Writer) Write(b *Bundle) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, format := range w.formats {
		paths, err := w.writeFormat(format, b)
		written = append(written, paths...)
		if err != nil {
			w.logger.Error("failed to write report format", zap.String("format", format), zap.Error(err))
			continue
		}
		w.logger.Info("report written", zap.String("format", format), zap.Int("files", len(paths)))
	}
	return written, nil
}

func (w *Writer) writeFormat(format string, b *Bundle) ([]string, error) {
	switch format {
	case FormatCSV:
		return WriteCSV(w.dir, b.Tables)
	case FormatXLSX:
		path := filepath.Join(w.dir, WorkbookFile)
		if err := WriteXLSX(path, b.Tables); err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatParquet:
		return WriteParquet(w.dir, b.OPs, b.Suggestions)
	case FormatJSON:
		var paths []string
		path := filepath.Join(w.dir, ReportFile)
		if err := WriteJSON(path, b.Document); err != nil {
			return nil, err
		}
		paths = append(paths, path)
		if b.Threads != nil {
			path = filepath.Join(w.dir, ThreadsFile)
			if err := WriteJSON(path, b.Threads); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
