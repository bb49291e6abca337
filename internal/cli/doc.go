// Package cli implements the command-line interface for golfcities.
//
// The cli package provides the Cobra-based CLI with the fetch, consolidate,
// rank and golfable subcommands. It coordinates the teeradar, storage,
// consolidate, metrics, golfable and table packages to fetch raw course
// pages, build the consolidated course table, and produce the ranked city
// metrics table in text or JSON.
package cli
