package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rliu/stock-universe/internal/api"
	"github.com/rliu/stock-universe/internal/config"
	"github.com/rliu/stock-universe/internal/model"
)

const (
	// MaxConsecutiveFailures is the number of consecutive failed pages
	// that halts a run.
	MaxConsecutiveFailures = 3
	// MaxPages is the absolute page-count ceiling, a circuit breaker
	// against runaway pagination.
	MaxPages = 500
	// MaxErrorSamples bounds the errors recorded in the manifest.
	MaxErrorSamples = 10
)

// RecordHandler receives each first-seen raw record with provenance.
// A non-nil error counts as a record-level failure and never aborts
// the page or the run.
type RecordHandler interface {
	HandleRecord(raw model.RawRecord, sourceURL string, asof time.Time) error
}

// RecordHandlerFunc is a function adapter for RecordHandler.
type RecordHandlerFunc func(model.RawRecord, string, time.Time) error

func (f RecordHandlerFunc) HandleRecord(raw model.RawRecord, sourceURL string, asof time.Time) error {
	return f(raw, sourceURL, asof)
}

// Fetcher paginates through the exchange's stock listing.
type Fetcher struct {
	cfg    config.FetchConfig
	client *api.Client
	logger *slog.Logger
}

// New creates a Fetcher. Each call to Run gets fresh progress state,
// so one Fetcher can serve repeated runs.
func New(cfg config.FetchConfig, client *api.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// Run fetches all pages, deduplicates by stock code, and hands each
// unique record to handler. It returns the run's statistics together
// with ctx.Err() if the run was interrupted; all other failure modes
// end the run early but successfully, with partial results.
func (f *Fetcher) Run(ctx context.Context, asof time.Time, handler RecordHandler) (*Stats, error) {
	p := newProgress()
	consecutiveFailures := 0

	f.logger.Info("starting universe fetch",
		"stock_type", f.cfg.Filters["STOCK_TYPE"],
		"page_size", f.cfg.Pagination.PageSize,
	)

	defer func() {
		f.logger.Info("fetch completed",
			"pages", p.pageNo,
			"unique_records", p.uniqueCount(),
			"failed_pages", p.failedPages,
			"duration", time.Since(p.start).Round(100*time.Millisecond),
		)
	}()

	for {
		if ctx.Err() != nil {
			return f.stats(p), ctx.Err()
		}

		p.pageNo++
		sourceURL := f.client.SourceURL(p.pageNo)

		records, meta, err := f.client.QueryPage(ctx, p.pageNo)
		if err != nil {
			if ctx.Err() != nil {
				return f.stats(p), ctx.Err()
			}
			consecutiveFailures++
			p.failedPages++
			f.recordPageFailure(p, err)

			if consecutiveFailures >= MaxConsecutiveFailures {
				f.logger.Error("too many consecutive failures, stopping",
					"consecutive", consecutiveFailures,
				)
				break
			}
			continue
		}
		consecutiveFailures = 0

		f.logger.Debug("page fetched",
			"page", p.pageNo,
			"records", len(records),
			"total_so_far", p.totalRecords,
		)

		for _, raw := range records {
			symbol := businessKey(raw)
			if symbol == "" {
				f.logger.Warn("record without stock code, skipping", "record", raw.String())
				continue
			}
			if _, dup := p.seen[symbol]; dup {
				f.logger.Debug("duplicate stock code", "symbol", symbol)
				continue
			}
			p.seen[symbol] = struct{}{}
			p.totalRecords++

			if err := handler.HandleRecord(raw, sourceURL, asof); err != nil {
				f.logger.Warn("failed to process record",
					"symbol", symbol,
					"error", err,
				)
				p.sample(model.ErrorSample{
					Type:   "record_error",
					Page:   p.pageNo,
					Symbol: symbol,
					Error:  err.Error(),
				})
			}
		}

		if f.shouldStop(records, meta, p) {
			break
		}

		if f.cfg.RateLimit.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return f.stats(p), ctx.Err()
			case <-time.After(f.cfg.RateLimit.PageDelay):
			}
		}
	}

	return f.stats(p), nil
}

// stats folds the run's progress and the client's retry counter into
// one summary.
func (f *Fetcher) stats(p *progress) *Stats {
	s := p.stats()
	s.RetryCount = f.client.RetryCount()
	return s
}

// recordPageFailure logs and samples one failed page.
func (f *Fetcher) recordPageFailure(p *progress, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		f.logger.Error("page failed", "page", p.pageNo, "error", err)
		p.sample(model.ErrorSample{
			Type:            "api_error",
			Page:            p.pageNo,
			Error:           err.Error(),
			ResponseSnippet: truncate(apiErr.Snippet, 200),
		})
		return
	}

	f.logger.Error("unexpected error on page", "page", p.pageNo, "error", err)
	p.sample(model.ErrorSample{
		Type:  "unexpected_error",
		Page:  p.pageNo,
		Error: err.Error(),
	})
}

// shouldStop evaluates the stop conditions in priority order.
//
// The exchange's pagination metadata is not always reliable, so the
// metadata-driven conditions are backed by heuristics (empty page,
// short page) with the page ceiling as a last-resort circuit breaker.
func (f *Fetcher) shouldStop(records []model.RawRecord, meta api.PageMeta, p *progress) bool {
	if meta.HasTotalPages && p.pageNo >= meta.TotalPages {
		f.logger.Info("reached total pages", "total_pages", meta.TotalPages)
		return true
	}

	if meta.HasTotal && p.totalRecords >= meta.Total {
		f.logger.Info("reached total records", "total", meta.Total)
		return true
	}

	if len(records) == 0 {
		f.logger.Info("empty page", "page", p.pageNo)
		return true
	}

	if len(records) < f.cfg.Pagination.PageSize {
		f.logger.Info("last page detected",
			"records", len(records),
			"page_size", f.cfg.Pagination.PageSize,
		)
		return true
	}

	if p.pageNo >= MaxPages {
		f.logger.Warn("safety page limit reached", "max_pages", MaxPages)
		return true
	}

	return false
}

// businessKey extracts the stock code used for deduplication.
// Priority: A_STOCK_CODE > B_STOCK_CODE > COMPANY_CODE; the exchange
// uses "-" as an empty-value sentinel.
func businessKey(raw model.RawRecord) string {
	for _, code := range []string{raw.AStockCode, raw.BStockCode, raw.CompanyCode} {
		if code != "" && code != "-" {
			return code
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
