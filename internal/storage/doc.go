// Package storage persists raw Teeradar API pages on disk.
//
// Each fetched page is wrapped with its fetch timestamp and offset and written
// atomically to teeradar_page_<offset>.json, so an interrupted fetch never
// leaves a truncated page behind. The consolidator reads the wrapped pages
// back in offset order.
package storage
