// Package storage persists universe snapshots on disk.
//
// Directory layout:
//
//	data/universe/
//	  snapshot=2026-01-30T12-00-00Z/
//	    manifest.json
//	    Shanghai_Stocks/
//	      class=STOCK_TYPE_1_主板A股.jsonl
//
// Data files are append-only JSON Lines, one record per line. A
// snapshot is immutable once its manifest is written; a new fetch
// always creates a new snapshot directory. A snapshot without a
// manifest is incomplete and must be treated as invalid.
package storage
