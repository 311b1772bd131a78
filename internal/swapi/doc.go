// Package swapi fetches single catalog entities from the remote Star Wars API.
//
// Client issues one GET per card identifier against {base}/{resource}/{id}/,
// bounded by a fixed per-request timeout and optionally paced by a client-side
// rate limiter. Every failure is normalized through internal/services markers
// (timeout, upstream status, malformed shape, network, invalid identifier) so
// callers can classify errors without string matching. The client never
// retries on its own; retry is always an explicit caller decision.
package swapi
