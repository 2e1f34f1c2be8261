package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/tuvan/internal/aggregate"
	"github.com/hyperjump/tuvan/internal/keyword"
	"github.com/hyperjump/tuvan/internal/loader"
	"github.com/hyperjump/tuvan/internal/report"
	"github.com/hyperjump/tuvan/internal/storage"
	"go.uber.org/zap"
)

const (
	maxBodyBytes = 10 << 20
	defaultLimit = 10
	maxLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := s.storage.Counts(ctx)
	if err != nil {
		s.logger.Error("status: counts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"runs":    counts.Runs,
		"threads": counts.Threads,
		"ops":     counts.OPs,
		"replies": counts.Replies,
	}
	lastRun, err := s.storage.LastRun(ctx)
	switch {
	case err == nil:
		resp["last_run"] = lastRun
	case !errors.Is(err, storage.ErrNotFound):
		s.logger.Warn("status: last run lookup failed", zap.Error(err))
	}
	if s.index != nil {
		if n, err := s.index.DocCount(); err == nil {
			resp["indexed_suggestions"] = n
		}
	}

	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"threads_dir":      s.config.Input.ThreadsDir,
			"database_path":    s.config.Storage.DatabasePath,
			"bleve_index_path": s.config.Storage.BleveIndexPath,
			"output_dir":       s.config.Output.Dir,
			"output_formats":   s.config.Output.Formats,
			"workers":          s.config.Analysis.Workers,
			"budget_range":     s.config.Analysis.BudgetRange,
			"price_range":      s.config.Analysis.PriceRange,
		}
		paths := append(storage.DatabaseFiles(s.config.Storage.DatabasePath), s.config.Storage.BleveIndexPath)
		if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleAnalyze analyzes one thread document. Nothing is persisted.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondBodyError(w, err)
		return
	}
	thread, err := loader.Decode(data)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("analyze request", zap.String("thread_id", thread.ThreadID), zap.Int("posts", len(thread.Posts)))
	s.respondJSON(w, http.StatusOK, s.analyzer.AnalyzeThread(thread))
}

type analyzeTextRequest struct {
	Text string `json:"text"`
	// Kind is "op" (budget, purposes, requirements), "reply" (components, brands, prices)
	// or empty for everything.
	Kind string `json:"kind"`
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req analyzeTextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondBodyError(w, err)
		return
	}
	res := s.analyzer.AnalyzeText(req.Text)
	switch req.Kind {
	case "":
	case "op":
		res.Components, res.Brands, res.Prices = nil, nil, nil
	case "reply":
		res.Budget, res.Purposes, res.SpecialRequirements = nil, nil, nil
	default:
		s.respondError(w, http.StatusBadRequest, `kind must be "op", "reply" or empty`)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ta, err := s.storage.GetThread(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	if err != nil {
		s.logger.Error("get thread failed", zap.String("thread_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, ta)
}

func (s *Server) loadReport(r *http.Request) (*aggregate.Dataset, *aggregate.Report, error) {
	ds, err := aggregate.LoadDataset(r.Context(), s.storage)
	if err != nil {
		return nil, nil, err
	}
	return ds, ds.Build(s.report), nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	_, rep, err := s.loadReport(r)
	if err != nil {
		s.logger.Error("report failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	ds, rep, err := s.loadReport(r)
	if err != nil {
		s.logger.Error("report failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	contextMaxLen := 0
	if s.config != nil {
		contextMaxLen = s.config.Output.ContextMaxLen
	}
	tables := ds.Tables(rep, s.report, contextMaxLen)
	table, ok := report.Find(tables, name)
	if !ok {
		s.respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":  "unknown table",
			"tables": report.Names(tables),
		})
		return
	}
	switch r.URL.Query().Get("format") {
	case "", "json":
		s.respondJSON(w, http.StatusOK, table)
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+table.Name+`.csv"`)
		w.WriteHeader(http.StatusOK)
		if err := report.EncodeCSV(w, table); err != nil {
			s.logger.Error("csv encode failed", zap.String("table", name), zap.Error(err))
		}
	default:
		s.respondError(w, http.StatusBadRequest, `format must be "json" or "csv"`)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "search index not enabled")
		return
	}
	q := r.URL.Query()
	query := q.Get("q")
	component := q.Get("component")
	if query == "" && component == "" {
		s.respondError(w, http.StatusBadRequest, "q or component is required")
		return
	}
	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	opts := &keyword.SearchOptions{Component: component, FuzzyEnabled: q.Get("fuzzy") == "true"}
	s.logger.Debug("search request", zap.String("query", query), zap.Int("limit", limit))
	response, err := s.index.Search(r.Context(), query, limit, opts)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondBodyError maps a request body read failure to 413 when the size cap was hit and 400
// otherwise.
func (s *Server) respondBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
