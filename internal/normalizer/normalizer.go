// Package normalizer maps raw exchange records into the unified
// StockRecord schema.
package normalizer

import (
	"fmt"
	"time"

	"github.com/rliu/stock-universe/internal/model"
)

// emptySentinel is the exchange's placeholder for absent code fields.
const emptySentinel = "-"

// stockTypeLabels maps known STOCK_TYPE filter values to their
// human-readable board names.
var stockTypeLabels = map[string]string{
	"1": "主板A股",
	"2": "主板B股",
	"8": "科创板",
}

// ErrNoSymbol reports a record whose candidate code fields are all
// empty or sentinel. Such a record cannot be normalized; callers must
// treat it as a record-level failure, distinct from other error kinds.
type ErrNoSymbol struct {
	Record model.RawRecord
}

func (e *ErrNoSymbol) Error() string {
	return fmt.Sprintf("cannot extract symbol from record: %s", e.Record.String())
}

// Options configure normalization for one run.
type Options struct {
	// StockType is the STOCK_TYPE filter value active for the whole
	// run; the category tag derives from it, not from per-record data.
	StockType string
	// IncludeRaw embeds the original exchange payload in the output.
	IncludeRaw bool
}

// Normalize maps one raw SSE record into the unified schema. It is
// pure: the same inputs always produce the same record.
//
// Symbol and Name are guaranteed non-empty on success; a record with
// no usable code field fails with *ErrNoSymbol rather than producing
// an empty symbol.
func Normalize(raw model.RawRecord, sourceURL string, asof time.Time, opts Options) (model.StockRecord, error) {
	symbol := firstUsable(raw.AStockCode, raw.BStockCode, raw.CompanyCode)
	if symbol == "" {
		return model.StockRecord{}, &ErrNoSymbol{Record: raw}
	}

	name := firstNonEmpty(raw.SecNameCN, raw.CompanyAbbr, raw.SecNameFull)
	if name == "" {
		name = symbol
	}

	fullName := firstNonEmpty(raw.FullName, raw.SecNameFull)

	record := model.StockRecord{
		Exchange:  model.ExchangeShanghai,
		Symbol:    symbol,
		Name:      name,
		FullName:  fullName,
		Category:  Category(opts.StockType),
		ListDate:  raw.ListDate,
		CSRCCode:  raw.CSRCCode,
		CSRCDesc:  raw.CSRCCodeDesc,
		Province:  raw.AreaNameDesc,
		Status:    raw.StateCodeStock,
		SourceURL: sourceURL,
		Asof:      asof,
	}

	if opts.IncludeRaw {
		record.Raw = raw.Fields()
	}

	return record, nil
}

// Category derives the category tag from the run's STOCK_TYPE filter
// value. Known types get a readable label suffix; unknown values still
// produce a valid tag.
func Category(stockType string) string {
	category := "STOCK_TYPE_" + stockType
	if label, ok := stockTypeLabels[stockType]; ok {
		category += "_" + label
	}
	return category
}

// firstUsable returns the first value that is neither empty nor the
// exchange's "-" sentinel.
func firstUsable(candidates ...string) string {
	for _, c := range candidates {
		if c != "" && c != emptySentinel {
			return c
		}
	}
	return ""
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
