// Package catalog records completed snapshots in a Postgres registry.
//
// The catalog is optional: fetch runs never fail because of catalog
// errors, and the on-disk snapshot plus its manifest remain the source
// of truth. Rows are append-only (insert with ON CONFLICT DO NOTHING,
// never update).
package catalog
