// Package main is the tuvan CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/tuvan/internal/aggregate"
	"github.com/hyperjump/tuvan/internal/analyzer"
	"github.com/hyperjump/tuvan/internal/cli"
	"github.com/hyperjump/tuvan/internal/config"
	"github.com/hyperjump/tuvan/internal/indexer"
	"github.com/hyperjump/tuvan/internal/keyword"
	"github.com/hyperjump/tuvan/internal/lexicon"
	"github.com/hyperjump/tuvan/internal/loader"
	"github.com/hyperjump/tuvan/internal/models"
	"github.com/hyperjump/tuvan/internal/pipeline"
	"github.com/hyperjump/tuvan/internal/report"
	"github.com/hyperjump/tuvan/internal/server"
	"github.com/hyperjump/tuvan/internal/storage"
	"github.com/hyperjump/tuvan/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tuvan/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if it exists; when neither exists, defaults relative to the
// current directory are used and the returned path is empty.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get working directory: %w", err)
		}
		fallback := filepath.Join(cwd, "config.yaml")
		if _, statErr := os.Stat(fallback); statErr == nil {
			cfg, loadErr := config.Load(fallback)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return cfg, fallback, nil
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(cwd), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "analyze":
		runAnalyze()
	case "report":
		runReport()
	case "search":
		runSearch()
	case "server":
		runServer()
	case "status":
		runStatus()
	case "schema":
		runSchema()
	case "version", "--version", "-v":
		fmt.Printf("tuvan version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and builds the logger shared by every command.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))
	return cfg, logger
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	input := fs.String("input", "", "directory of thread JSON files (default from config)")
	output := fs.String("output", "", "report output directory (default from config)")
	workers := fs.Int("workers", 0, "number of analysis workers (default from config)")
	noIndex := fs.Bool("no-index", false, "skip the full-text suggestion index")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	if *input != "" {
		cfg.Input.ThreadsDir = *input
	}
	if *output != "" {
		cfg.Output.Dir = *output
	}
	if *workers > 0 {
		cfg.Analysis.Workers = *workers
	}

	components, err := initializeComponents(cfg, logger, !*noIndex)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, files, err := analyze(ctx, components, cfg, logger)
	if err != nil {
		logger.Error("Analysis failed", zap.Error(err))
		components.Close()
		os.Exit(1)
	}
	cli.WriteRunSummary(os.Stdout, run, files)
}

// analyze loads every thread under cfg.Input.ThreadsDir, analyzes them on the worker
// pool, persists and indexes the results, and writes the report for this batch.
func analyze(ctx context.Context, c *Components, cfg *config.Config, logger *zap.Logger) (*models.Run, []string, error) {
	ld := loader.NewLoader(loader.WithLogger(logger))
	loaded, err := ld.LoadDir(ctx, cfg.Input.ThreadsDir, cfg.Input.Pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load threads: %w", err)
	}

	run := indexer.StartRun(cfg.Input.ThreadsDir)
	runner := pipeline.NewRunner(c.Analyzer, cfg.Analysis.Workers, pipeline.WithLogger(logger))
	res := runner.Run(ctx, loaded.Threads)
	if res.Cancelled {
		return nil, nil, ctx.Err()
	}

	stored, failed, err := c.Indexer.IndexAll(ctx, run.ID, res.Threads)
	if err != nil {
		return nil, nil, err
	}
	run.Threads = stored
	run.OPs = len(res.OPs)
	run.Replies = len(res.Replies)
	run.SkippedPosts = res.SkippedPosts
	run.FailedThreads = failed + len(loaded.Failures)
	if err := c.Indexer.FinishRun(ctx, run); err != nil {
		return nil, nil, fmt.Errorf("failed to record run: %w", err)
	}

	var threads any
	if cfg.Output.HasFormat(report.FormatJSON) {
		threads = res.Threads
	}
	ds := &aggregate.Dataset{OPs: res.OPs, Replies: res.Replies}
	_, bundle := ds.Bundle(c.ReportOptions, cfg.Output.ContextMaxLen, threads)
	w := report.NewWriter(cfg.Output.Dir, cfg.Output.Formats, report.WithLogger(logger))
	files, err := w.Write(bundle)
	if err != nil {
		return run, nil, err
	}
	return run, files, nil
}

func runReport() {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("output", "", "report output directory (default from config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	if *output != "" {
		cfg.Output.Dir = *output
	}
	components, err := initializeComponents(cfg, logger, false)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	files, err := writeStoredReport(context.Background(), components, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report failed: %v\n", err)
		components.Close()
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Printf("wrote %s\n", f)
	}
}

// writeStoredReport rebuilds the report from every analysis in storage.
func writeStoredReport(ctx context.Context, c *Components, cfg *config.Config, logger *zap.Logger) ([]string, error) {
	ds, err := aggregate.LoadDataset(ctx, c.Storage)
	if err != nil {
		return nil, err
	}
	_, bundle := ds.Bundle(c.ReportOptions, cfg.Output.ContextMaxLen, nil)
	w := report.NewWriter(cfg.Output.Dir, cfg.Output.Formats, report.WithLogger(logger))
	return w.Write(bundle)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Analyzer,
		components.Storage,
		components.KeywordIndex,
		components.ReportOptions,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: tuvan search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Searches the text of replies that suggest components.
  • Use --component to restrict hits to one component category (query may then be empty).
  • Use --fuzzy to tolerate typos; a query with no hits is retried fuzzily once.

Examples:
  tuvan search rtx 3060
  tuvan search --component psu 650w
  tuvan search --fuzzy ryzn
  tuvan search --output json "tản nhiệt"
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = open the local index directly)")
	limit := fs.Int("limit", 10, "number of results")
	component := fs.String("component", "", "only replies suggesting this component category")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	query := buildSearchQuery(fs.Args())
	if query == "" && *component == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat, cli.OutputText, cli.OutputCompact, cli.OutputJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts := &keyword.SearchOptions{Component: *component, FuzzyEnabled: *fuzzy}

	var search func(opts *keyword.SearchOptions) (*keyword.SearchResponse, error)
	if *serverURL != "" {
		// The server holds the bleve lock; go through its API.
		search = func(opts *keyword.SearchOptions) (*keyword.SearchResponse, error) {
			return searchViaHTTP(*serverURL, query, *limit, opts)
		}
	} else {
		cfg, logger := setup(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, true)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()
		search = func(opts *keyword.SearchOptions) (*keyword.SearchResponse, error) {
			return searchLocal(context.Background(), components.KeywordIndex, query, *limit, opts)
		}
	}

	response, err := search(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if !opts.FuzzyEnabled && response.Total == 0 && query != "" {
		opts.FuzzyEnabled = true
		if fuzzyResponse, fuzzyErr := search(opts); fuzzyErr == nil && fuzzyResponse.Total > 0 {
			response = fuzzyResponse
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchLocal(ctx context.Context, index keyword.SuggestionIndex, query string, limit int, opts *keyword.SearchOptions) (*keyword.SearchResponse, error) {
	response, err := index.Search(ctx, query, limit, opts)
	if err != nil {
		return nil, err
	}
	return response, nil
}

func searchViaHTTP(serverURL, query string, limit int, opts *keyword.SearchOptions) (*keyword.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	if opts.Component != "" {
		params.Set("component", opts.Component)
	}
	if opts.FuzzyEnabled {
		params.Set("fuzzy", "true")
	}
	var response keyword.SearchResponse
	if err := getJSON(serverURL+"/api/v1/search?"+params.Encode(), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func getJSON(target string, v interface{}) error {
	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat, cli.OutputText, cli.OutputJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status *cli.Status
	if *serverURL != "" {
		status = &cli.Status{}
		if err := getJSON(*serverURL+"/api/v1/status", status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger := setup(*configPath, false)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		status, err = localStatus(context.Background(), components, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			components.Close()
			os.Exit(1)
		}
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func localStatus(ctx context.Context, c *Components, cfg *config.Config) (*cli.Status, error) {
	counts, err := c.Storage.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	status := &cli.Status{
		Runs:    counts.Runs,
		Threads: counts.Threads,
		OPs:     counts.OPs,
		Replies: counts.Replies,
		Config: &cli.StatusConfig{
			ThreadsDir:     cfg.Input.ThreadsDir,
			DatabasePath:   cfg.Storage.DatabasePath,
			BleveIndexPath: cfg.Storage.BleveIndexPath,
			OutputDir:      cfg.Output.Dir,
			OutputFormats:  cfg.Output.Formats,
			Workers:        cfg.Analysis.Workers,
		},
	}
	run, err := c.Storage.LastRun(ctx)
	switch {
	case err == nil:
		status.LastRun = run
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}
	if c.KeywordIndex != nil {
		if n, err := c.KeywordIndex.DocCount(); err == nil {
			status.IndexedSuggestions = &n
		}
	}
	paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.BleveIndexPath)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status, nil
}

// schemaTargets maps the --type flag of the schema command to the documented value.
var schemaTargets = map[string]any{
	"thread":   &models.Thread{},
	"analysis": &models.ThreadAnalysis{},
	"report":   &aggregate.Report{},
}

func runSchema() {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	typ := fs.String("type", "analysis", "document to describe: thread, analysis or report")
	_ = fs.Parse(os.Args[2:])

	v, ok := schemaTargets[*typ]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown schema type %q; use thread, analysis or report\n", *typ)
		os.Exit(1)
	}
	if err := report.WriteSchema(os.Stdout, v); err != nil {
		fmt.Fprintf(os.Stderr, "Schema failed: %v\n", err)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Lexicon       *lexicon.Set
	Analyzer      *analyzer.Analyzer
	Storage       storage.Storage
	KeywordIndex  *keyword.BleveIndex
	Indexer       *indexer.Indexer
	ReportOptions aggregate.Options
}

// Close releases storage and the index. It is safe to call more than once.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
		c.Storage = nil
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
		c.KeywordIndex = nil
	}
}

// initializeComponents opens storage and, when withIndex is set, the bleve suggestion
// index, and builds the analyzer from the configured dictionaries.
func initializeComponents(cfg *config.Config, logger *zap.Logger, withIndex bool) (*Components, error) {
	lex := lexicon.Default()
	if cfg.Analysis.DictionariesPath != "" {
		loaded, err := lexicon.Load(cfg.Analysis.DictionariesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load dictionaries: %w", err)
		}
		lex = loaded
	}
	a := analyzer.New(lex, cfg.Analysis, analyzer.WithLogger(logger))

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	c := &Components{
		Lexicon:       lex,
		Analyzer:      a,
		Storage:       store,
		ReportOptions: aggregate.OptionsFor(lex, cfg.Analysis.MinCombinationCount),
	}
	var index keyword.SuggestionIndex
	if withIndex {
		kw, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
		}
		c.KeywordIndex = kw
		index = kw
	}
	c.Indexer = indexer.NewIndexer(store, index, indexer.WithLogger(logger))
	return c, nil
}

func printUsage() {
	fmt.Println(`tuvan - PC-build advice extraction for Vietnamese forum threads

Usage:
  tuvan analyze [flags]           Analyze crawled threads, store them and write reports
  tuvan report [flags]            Rebuild reports from every stored analysis
  tuvan search [flags] <query>    Search component suggestions
  tuvan server [flags]            Start the HTTP server
  tuvan status [flags]            Show storage/index status and the last run
  tuvan schema [--type t]         Print the JSON Schema of thread, analysis or report documents
  tuvan version                   Show version
  tuvan help                      Show this help

Analyze Flags:
  --config string    Config file path (default: /usr/local/etc/tuvan/config.yaml, then ./config.yaml)
  --input string     Directory of thread JSON files
  --output string    Report output directory
  --workers int      Number of analysis workers (default: number of CPUs)
  --no-index         Skip the full-text suggestion index
  --debug            Enable debug logging

Report Flags:
  --config string    Config file path
  --output string    Report output directory

Server Flags:
  --config string    Config file path
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct index mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" to open the index directly.
  --limit int        Number of results (default: 10)
  --component string Only replies suggesting this component category
  --fuzzy            Enable fuzzy matching for typo tolerance
  --output string    Output format: text, compact or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  tuvan analyze --input ./data/threads --output ./data/analysis
  tuvan report --output ./out
  tuvan search --server "" rtx 3060
  tuvan search --component gpu --output compact
  tuvan status --output json
  tuvan schema --type thread`)
}
