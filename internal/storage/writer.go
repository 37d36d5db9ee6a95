package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rliu/stock-universe/internal/model"
)

// SnapshotWriter writes normalized records for one exchange within one
// snapshot. Output files are opened lazily per category and are
// append-only; each record is serialized as a single self-contained
// JSON line and written immediately, so write order equals arrival
// order and no partial record is ever left behind.
//
// A SnapshotWriter exclusively owns its open file handles; Close must
// run on every exit path.
type SnapshotWriter struct {
	snapshotDir string
	exchange    string
	exchangeDir string
	logger      *slog.Logger

	files          map[string]*os.File
	categoryCounts map[string]int
	totalCount     int
}

// NewSnapshotWriter creates a writer rooted at snapshotDir for the
// given exchange, creating the exchange subdirectory.
func NewSnapshotWriter(snapshotDir, exchange string, logger *slog.Logger) (*SnapshotWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	exchangeDir := filepath.Join(snapshotDir, exchange)
	if err := os.MkdirAll(exchangeDir, 0o755); err != nil {
		return nil, fmt.Errorf("create exchange dir: %w", err)
	}
	return &SnapshotWriter{
		snapshotDir:    snapshotDir,
		exchange:       exchange,
		exchangeDir:    exchangeDir,
		logger:         logger,
		files:          make(map[string]*os.File),
		categoryCounts: make(map[string]int),
	}, nil
}

// WriteRecord appends one normalized record to its category file.
func (w *SnapshotWriter) WriteRecord(record model.StockRecord) error {
	f, err := w.file(record.Category)
	if err != nil {
		return err
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", record.Symbol, err)
	}
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write record %s: %w", record.Symbol, err)
	}

	w.categoryCounts[record.Category]++
	w.totalCount++
	return nil
}

// file returns the open handle for a category, creating it on first
// write.
func (w *SnapshotWriter) file(category string) (*os.File, error) {
	if f, ok := w.files[category]; ok {
		return f, nil
	}

	name := filepath.Join(w.exchangeDir, categoryFilename(category))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open category file: %w", err)
	}
	w.logger.Debug("created output file", "path", name)
	w.files[category] = f
	return f, nil
}

// Close closes all open category files.
func (w *SnapshotWriter) Close() error {
	var firstErr error
	for category, f := range w.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", category, err)
		}
	}
	w.files = make(map[string]*os.File)
	return firstErr
}

// CategoryCounts returns per-category record counts. These counts are
// the record of origin for manifest statistics.
func (w *SnapshotWriter) CategoryCounts() map[string]int {
	counts := make(map[string]int, len(w.categoryCounts))
	for k, v := range w.categoryCounts {
		counts[k] = v
	}
	return counts
}

// TotalCount returns the total records written.
func (w *SnapshotWriter) TotalCount() int {
	return w.totalCount
}

// OutputFiles returns the sorted list of produced files relative to
// the snapshot root.
func (w *SnapshotWriter) OutputFiles() []string {
	files := make([]string, 0, len(w.categoryCounts))
	for category := range w.categoryCounts {
		files = append(files, path.Join(w.exchange, categoryFilename(category)))
	}
	sort.Strings(files)
	return files
}

func categoryFilename(category string) string {
	return "class=" + safeFilename(category) + ".jsonl"
}

// safeFilename substitutes path-unsafe characters.
func safeFilename(s string) string {
	const unsafe = `/\:*?"<>|`
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafe, r) {
			return '_'
		}
		return r
	}, s)
}
