// Package consolidate merges raw Teeradar pages into the deduplicated
// course-level table consumed by the metrics engine.
package consolidate
