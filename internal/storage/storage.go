package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rliu/stock-universe/internal/config"
	"github.com/rliu/stock-universe/internal/fetcher"
	"github.com/rliu/stock-universe/internal/model"
)

// ManifestFilename is the manifest file name at each snapshot root.
const ManifestFilename = "manifest.json"

// Storage manages universe snapshots under a base directory.
type Storage struct {
	baseDir string
	logger  *slog.Logger
}

// New creates a Storage rooted at baseDir.
func New(baseDir string, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{baseDir: baseDir, logger: logger}
}

// FormatTimestamp renders a snapshot timestamp as a filesystem-safe
// ISO 8601 string.
func FormatTimestamp(asof time.Time) string {
	return asof.UTC().Format("2006-01-02T15-04-05Z")
}

// SnapshotDir returns the snapshot directory path for a timestamp.
func (s *Storage) SnapshotDir(asof time.Time) string {
	return filepath.Join(s.baseDir, "snapshot="+FormatTimestamp(asof))
}

// OpenWriter creates the snapshot directory and opens a writer for the
// given exchange.
func (s *Storage) OpenWriter(asof time.Time, exchange string) (*SnapshotWriter, error) {
	dir := s.SnapshotDir(asof)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return NewSnapshotWriter(dir, exchange, s.logger)
}

// BuildManifest assembles the reproducibility record for one run. The
// writer's counts are the record of origin for record statistics; the
// engine's stats supply page counts, duration, and error samples.
// Request headers pass through SafeHeaders so no credential ever
// reaches the manifest.
func (s *Storage) BuildManifest(
	cfg *config.Config,
	exchange string,
	asof time.Time,
	runID string,
	stats *fetcher.Stats,
	writer *SnapshotWriter,
) *model.Manifest {
	f := &cfg.Fetch

	errs := stats.Errors
	if errs == nil {
		errs = []model.ErrorSample{}
	}

	return &model.Manifest{
		Exchange: exchange,
		Asof:     asof,
		RunID:    runID,
		Version:  model.ManifestVersion,

		Endpoint:    f.Endpoint,
		QueryParams: f.Query,
		Filters:     f.Filters,
		Pagination: model.PaginationInfo{
			PageSize:  f.Pagination.PageSize,
			CacheSize: f.Pagination.CacheSize,
		},
		Headers: f.SafeHeaders(),

		RateLimit: model.RateLimitInfo{
			RequestsPerSecond: f.RateLimit.RequestsPerSecond,
			PageDelaySeconds:  f.RateLimit.PageDelay.Seconds(),
		},
		Retry: model.RetryInfo{
			MaxAttempts:         f.Retry.MaxAttempts,
			BackoffMultiplier:   f.Retry.BackoffMultiplier,
			InitialDelaySeconds: f.Retry.InitialDelay.Seconds(),
		},
		TimeoutSeconds: f.Timeout.Seconds(),

		Stats: model.FetchStats{
			TotalPages:      stats.TotalPages,
			TotalRecords:    stats.TotalRecords,
			UniqueRecords:   writer.TotalCount(),
			FailedPages:     stats.FailedPages,
			RetryCount:      stats.RetryCount,
			DurationSeconds: stats.DurationSeconds,
			Categories:      writer.CategoryCounts(),
		},
		Errors:      errs,
		OutputFiles: writer.OutputFiles(),
	}
}

// WriteManifest writes the manifest exactly once, atomically from the
// caller's perspective: a complete temp file renamed into place.
func (s *Storage) WriteManifest(asof time.Time, manifest *model.Manifest) (string, error) {
	dir := s.SnapshotDir(asof)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	manifestPath := filepath.Join(dir, ManifestFilename)
	tmpPath := manifestPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, manifestPath); err != nil {
		return "", fmt.Errorf("finalize manifest: %w", err)
	}

	s.logger.Info("manifest written", "path", manifestPath)
	return manifestPath, nil
}

// SnapshotInfo describes one snapshot directory found on disk.
type SnapshotInfo struct {
	Name     string
	Path     string
	Manifest *model.Manifest // nil when the snapshot has no valid manifest
}

// ListSnapshots enumerates snapshot directories under the base dir in
// name (timestamp) order. Snapshots without a readable manifest are
// returned with a nil Manifest; consumers must treat them as invalid.
func (s *Storage) ListSnapshots() ([]SnapshotInfo, error) {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, "snapshot=*"))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	sort.Strings(matches)

	infos := make([]SnapshotInfo, 0, len(matches))
	for _, dir := range matches {
		st, err := os.Stat(dir)
		if err != nil || !st.IsDir() {
			continue
		}
		info := SnapshotInfo{
			Name: filepath.Base(dir),
			Path: dir,
		}
		if m, err := readManifest(filepath.Join(dir, ManifestFilename)); err == nil {
			info.Manifest = m
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func readManifest(path string) (*model.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m model.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
