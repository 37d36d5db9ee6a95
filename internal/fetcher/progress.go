package fetcher

import (
	"time"

	"github.com/rliu/stock-universe/internal/model"
)

// progress is the mutable state of one fetch run. It is created at the
// start of Run, owned exclusively by the run's loop, and discarded at
// the end; its summary is folded into Stats.
type progress struct {
	pageNo       int
	totalRecords int
	seen         map[string]struct{}
	failedPages  int
	errors       []model.ErrorSample
	start        time.Time
}

func newProgress() *progress {
	return &progress{
		seen:  make(map[string]struct{}),
		start: time.Now(),
	}
}

// sample records an error, bounded at MaxErrorSamples per run.
func (p *progress) sample(e model.ErrorSample) {
	if len(p.errors) < MaxErrorSamples {
		p.errors = append(p.errors, e)
	}
}

func (p *progress) uniqueCount() int {
	return len(p.seen)
}

// Stats is the summary of one completed (or partially completed) run.
type Stats struct {
	TotalPages      int
	TotalRecords    int
	UniqueRecords   int
	FailedPages     int
	RetryCount      int
	DurationSeconds float64
	Errors          []model.ErrorSample
}

func (p *progress) stats() *Stats {
	return &Stats{
		TotalPages:      p.pageNo,
		TotalRecords:    p.totalRecords,
		UniqueRecords:   p.uniqueCount(),
		FailedPages:     p.failedPages,
		DurationSeconds: time.Since(p.start).Seconds(),
		Errors:          p.errors,
	}
}
