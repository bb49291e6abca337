// Package metrics implements the city metrics engine: grouping course
// records into per-city aggregates, min-max normalizing the available
// features, applying a validated weight configuration, and producing the
// ranked city table.
//
// Compute is side-effect free apart from data-quality logging and is the
// single source of truth for the aggregation and scoring math; the CLI and
// any interactive surface call the same function.
package metrics
