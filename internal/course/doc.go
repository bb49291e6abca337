// Package course defines the domain types shared across the pipeline: the
// consolidated course record, the optional per-state golfability record, and
// the error taxonomy used to classify failures (schema, configuration, empty
// input).
package course
