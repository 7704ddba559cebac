// Package writer records every accepted level refresh to PostgreSQL.
//
// A refresh becomes one snapshot: a fresh snapshot_id shared by one row per
// level, in feed order. Rows are append-only and are batched with pgx.Batch
// on a size or time trigger, whichever comes first.
package writer
