// Package loader resolves drawn card identifiers into materialized cards.
//
// A Loader owns the per-item state of one envelope: every item starts
// pending and settles as loaded (holding a card) or failed (holding a
// normalized error). LoadBatch fetches all items concurrently, each under its
// own timeout, and writes each result back by index so one item's failure or
// timeout never affects its siblings. Retry re-enters exactly one failed item
// into pending and fetches it again; nothing is retried automatically.
//
// Tracker records every attempt for diagnostics.
package loader
