// Command universe fetches stock universe snapshots from exchange
// listing endpoints.
//
// Usage:
//
//	universe fetch [-config configs/sse.yaml] [-stock-type 1] [-page-size 25] [-include-raw] [-output dir] [-verbose]
//	universe list [-output dir]
//	universe version
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/rliu/stock-universe/internal/api"
	"github.com/rliu/stock-universe/internal/catalog"
	"github.com/rliu/stock-universe/internal/config"
	"github.com/rliu/stock-universe/internal/fetcher"
	"github.com/rliu/stock-universe/internal/model"
	"github.com/rliu/stock-universe/internal/normalizer"
	"github.com/rliu/stock-universe/internal/storage"
	"github.com/rliu/stock-universe/internal/version"
)

// exchangeNames maps the CLI exchange flag to snapshot exchange
// identifiers. Only SSE is implemented; the others are reserved.
var exchangeNames = map[string]string{
	"sse": model.ExchangeShanghai,
	"sze": model.ExchangeShenzhen,
	"bse": model.ExchangeBeijing,
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "fetch":
		os.Exit(runFetch(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "version":
		fmt.Println(version.String())
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: universe <fetch|list|version> [flags]")
}

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (defaults apply when omitted)")
	exchange := fs.String("exchange", "sse", "exchange to fetch: sse, sze, bse")
	stockType := fs.String("stock-type", "", "stock type filter override (SSE: 1=主板A股, 2=主板B股, 8=科创板)")
	pageSize := fs.Int("page-size", 0, "records per page override")
	includeRaw := fs.Bool("include-raw", false, "include raw exchange payload in output records")
	output := fs.String("output", "", "output directory override")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	fs.Parse(args)

	// Local .env is optional.
	_ = godotenv.Load()

	logger := newLogger(*verbose)

	logger.Info("starting universe fetch",
		"version", version.Version,
		"commit", version.Commit,
	)

	exchangeName, ok := exchangeNames[*exchange]
	if !ok {
		logger.Error("unknown exchange", "exchange", *exchange)
		return 1
	}
	if *exchange != "sse" {
		logger.Error("exchange not yet implemented", "exchange", *exchange)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	// Apply CLI overrides, then re-validate.
	if *stockType != "" {
		cfg.Fetch.Filters["STOCK_TYPE"] = *stockType
	}
	if *pageSize > 0 {
		cfg.Fetch.Pagination.PageSize = *pageSize
	}
	if *output != "" {
		cfg.Storage.BaseDir = *output
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	asof := time.Now().UTC()
	runID := uuid.NewString()

	logger.Info("configuration resolved",
		"exchange", exchangeName,
		"stock_type", cfg.Fetch.Filters["STOCK_TYPE"],
		"page_size", cfg.Fetch.Pagination.PageSize,
		"output", cfg.Storage.BaseDir,
		"run_id", runID,
	)

	client := api.NewClient(cfg.Fetch, api.WithLogger(logger))
	defer client.Close()

	store := storage.New(cfg.Storage.BaseDir, logger)

	writer, err := store.OpenWriter(asof, exchangeName)
	if err != nil {
		logger.Error("failed to open snapshot writer", "error", err)
		return 1
	}
	defer writer.Close()

	opts := normalizer.Options{
		StockType:  cfg.Fetch.Filters["STOCK_TYPE"],
		IncludeRaw: *includeRaw,
	}
	handler := fetcher.RecordHandlerFunc(func(raw model.RawRecord, sourceURL string, ts time.Time) error {
		record, err := normalizer.Normalize(raw, sourceURL, ts, opts)
		if err != nil {
			return err
		}
		return writer.WriteRecord(record)
	})

	f := fetcher.New(cfg.Fetch, client, logger)
	stats, runErr := f.Run(ctx, asof, handler)

	// Data files are finalized before the manifest is considered.
	if err := writer.Close(); err != nil {
		logger.Error("failed to close snapshot writer", "error", err)
	}

	if runErr != nil {
		// Interrupted: the snapshot stays on disk without a manifest
		// and must be treated as incomplete by consumers.
		logger.Warn("fetch interrupted",
			"pages", stats.TotalPages,
			"records_written", writer.TotalCount(),
		)
		return 130
	}

	manifest := store.BuildManifest(cfg, exchangeName, asof, runID, stats, writer)
	manifestPath, err := store.WriteManifest(asof, manifest)
	if err != nil {
		logger.Error("failed to write manifest", "error", err)
		return 1
	}

	if cfg.Catalog.Enabled {
		recordToCatalog(logger, cfg, manifest, store.SnapshotDir(asof))
	}

	logger.Info("fetch succeeded",
		"records", writer.TotalCount(),
		"categories", len(manifest.Stats.Categories),
		"failed_pages", stats.FailedPages,
		"duration_seconds", fmt.Sprintf("%.1f", stats.DurationSeconds),
		"manifest", manifestPath,
	)
	return 0
}

// recordToCatalog registers the snapshot in Postgres. Catalog failures
// are logged and never fail the run.
func recordToCatalog(logger *slog.Logger, cfg *config.Config, manifest *model.Manifest, snapshotPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cat, err := catalog.Connect(ctx, cfg.Catalog.Database, logger)
	if err != nil {
		logger.Warn("catalog unavailable", "error", err)
		return
	}
	defer cat.Close()

	if err := cat.RecordSnapshot(ctx, manifest, snapshotPath); err != nil {
		logger.Warn("failed to catalog snapshot", "error", err)
	}
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	output := fs.String("output", config.DefaultBaseDir, "universe directory")
	fs.Parse(args)

	logger := newLogger(false)
	store := storage.New(*output, logger)

	snapshots, err := store.ListSnapshots()
	if err != nil {
		logger.Error("failed to list snapshots", "error", err)
		return 1
	}
	if len(snapshots) == 0 {
		fmt.Printf("no snapshots found in %s\n", *output)
		return 0
	}

	for _, s := range snapshots {
		if s.Manifest == nil {
			fmt.Printf("%s  (no manifest)\n", s.Name)
			continue
		}
		fmt.Printf("%s  exchange=%s records=%d failed_pages=%d duration=%.1fs\n",
			s.Name,
			s.Manifest.Exchange,
			s.Manifest.Stats.UniqueRecords,
			s.Manifest.Stats.FailedPages,
			s.Manifest.Stats.DurationSeconds,
		)
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
