// Package services defines shared utilities consumed by the core components
// and the catalog integration.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, envelope slots, and card
//     categories for logging.
//   - Structured error markers plus the Wrap helper that normalize catalog
//     failures into a small, stable taxonomy (network, timeout, upstream,
//     shape, invalid identifier).
//
// Use these helpers when wiring new components so failure handling and
// observability stay uniform.
package services
