// Package table reads and writes the pipeline's tabular artifacts: the
// consolidated course table (Parquet, CSV, NDJSON, SQLite), the per-state
// golfability CSV, and the ranked city metrics outputs.
//
// All file writes go through a temp file and rename, so a failing run never
// leaves a partial output artifact behind. Readers report the column set a
// file actually declares; the metrics engine decides feature availability and
// schema validity from that set.
package table
