// Package teeradar implements the paginated Teeradar courses API client.
//
// The client authenticates with an X-API-Key header, walks the listing in
// fixed-size offset pages, retries rate limits and server errors with
// exponential backoff, and defensively filters out non-US courses. Pagination
// stops when a page reports fewer courses than the page size.
package teeradar
