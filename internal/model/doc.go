// Package model defines shared data types for the stock universe pipeline.
//
// Conventions:
//   - Raw exchange fields keep their upstream names exactly (A_STOCK_CODE, ...)
//   - Timestamps: time.Time in UTC, serialized as RFC 3339
//   - Optional fields are omitted from JSON output entirely, never null
package model
