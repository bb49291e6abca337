// Package golfable scrapes a reference HTML page for the per-state
// year-round golfability table used as the optional second input of the rank
// command.
package golfable
