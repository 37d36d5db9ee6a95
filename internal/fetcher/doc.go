// Package fetcher drives the page-by-page retrieval of the stock
// universe.
//
// The engine owns the stop-condition state machine, deduplicates
// records by stock code, and hands each first-seen record to a
// RecordHandler together with its provenance. Individual record
// failures never abort a run; page failures are tolerated up to a
// small consecutive threshold, after which the run terminates early
// with partial results.
package fetcher
