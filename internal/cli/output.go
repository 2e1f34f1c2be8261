// Package cli formats command output for tuvan.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/tuvan/internal/keyword"
	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/storage"
	"github.com/hyperjump/tuvan/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per search hit.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const snippetMaxLen = 200

// ParseOutputFormat validates a --output flag value against the allowed formats.
func ParseOutputFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	for _, f := range allowed {
		if OutputFormat(s) == f {
			return f, nil
		}
	}
	names := make([]string, len(allowed))
	for i, f := range allowed {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown output format %q; use %s", s, strings.Join(names, ", "))
}

// WriteSearchResults writes search hits to w in the given format.
func WriteSearchResults(w io.Writer, response *keyword.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, h := range response.Hits {
			fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\t%s\n", h.Score, h.ThreadID, h.PostID,
				strings.Join(h.Components, ","), utils.Truncate(oneLine(h.Snippet), 80))
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *keyword.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d suggestions for %q\n\n", response.Total, response.Query)
	for i, h := range response.Hits {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", i+1, h.Score)
		fmt.Fprintf(w, "Thread: %s | Post: %s | User: %s\n", h.ThreadID, h.PostID, h.User)
		if h.Title != "" {
			fmt.Fprintf(w, "Title: %s\n", h.Title)
		}
		if len(h.Components) > 0 {
			fmt.Fprintf(w, "Components: %s\n", strings.Join(h.Components, ", "))
		}
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(h.Snippet, snippetMaxLen))
	}
}

// StatusConfig is the configuration summary included in a status report.
type StatusConfig struct {
	ThreadsDir     string   `json:"threads_dir,omitempty"`
	DatabasePath   string   `json:"database_path,omitempty"`
	BleveIndexPath string   `json:"bleve_index_path,omitempty"`
	OutputDir      string   `json:"output_dir,omitempty"`
	OutputFormats  []string `json:"output_formats,omitempty"`
	Workers        int      `json:"workers,omitempty"`
}

// Status is the shape of GET /api/v1/status.
type Status struct {
	Runs               int64         `json:"runs"`
	Threads            int64         `json:"threads"`
	OPs                int64         `json:"ops"`
	Replies            int64         `json:"replies"`
	IndexedSuggestions *uint64       `json:"indexed_suggestions,omitempty"`
	DiskUsageBytes     *int64        `json:"disk_usage_bytes,omitempty"`
	LastRun            *models.Run   `json:"last_run,omitempty"`
	Config             *StatusConfig `json:"config,omitempty"`
}

// WriteStatus writes a status report to w.
func WriteStatus(w io.Writer, s *Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "runs:                %d\n", s.Runs)
	fmt.Fprintf(w, "threads:             %d\n", s.Threads)
	fmt.Fprintf(w, "ops:                 %d   # opening posts analyzed\n", s.OPs)
	fmt.Fprintf(w, "replies:             %d   # replies with component suggestions\n", s.Replies)
	if s.IndexedSuggestions != nil {
		fmt.Fprintf(w, "indexed_suggestions: %d\n", *s.IndexedSuggestions)
	}
	if s.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage:          %s\n", storage.FormatBytes(*s.DiskUsageBytes))
	}
	if r := s.LastRun; r != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# last run")
		fmt.Fprintf(w, "id:                  %s\n", r.ID)
		fmt.Fprintf(w, "input_dir:           %s\n", r.InputDir)
		fmt.Fprintf(w, "finished_at:         %s\n", r.FinishedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "threads:             %d (%d failed, %d posts skipped)\n", r.Threads, r.FailedThreads, r.SkippedPosts)
	}
	if c := s.Config; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		if c.ThreadsDir != "" {
			fmt.Fprintf(w, "threads_dir:         %s\n", c.ThreadsDir)
		}
		if c.DatabasePath != "" {
			fmt.Fprintf(w, "database_path:       %s\n", c.DatabasePath)
		}
		if c.BleveIndexPath != "" {
			fmt.Fprintf(w, "bleve_index_path:    %s\n", c.BleveIndexPath)
		}
		if c.OutputDir != "" {
			fmt.Fprintf(w, "output_dir:          %s\n", c.OutputDir)
		}
		if len(c.OutputFormats) > 0 {
			fmt.Fprintf(w, "output_formats:      %s\n", strings.Join(c.OutputFormats, ", "))
		}
		if c.Workers > 0 {
			fmt.Fprintf(w, "workers:             %d\n", c.Workers)
		}
	}
	return nil
}

// WriteRunSummary prints what an analyze run did and which files it wrote.
func WriteRunSummary(w io.Writer, run *models.Run, files []string) {
	fmt.Fprintf(w, "Run %s: %d thread(s), %d OP(s), %d suggestion repl(ies)\n",
		run.ID, run.Threads, run.OPs, run.Replies)
	if run.FailedThreads > 0 || run.SkippedPosts > 0 {
		fmt.Fprintf(w, "  %d thread(s) failed, %d post(s) skipped\n", run.FailedThreads, run.SkippedPosts)
	}
	for _, f := range files {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
