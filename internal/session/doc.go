// Package session runs the open-envelope transaction.
//
// Controller moves Idle -> Opening -> AwaitingDecisions -> Idle. Opening an
// available slot recharges every slot, composes a pack, and loads all of its
// cards concurrently. Once every item has settled the caller decides keep or
// discard for each loaded item; failed items may be retried individually and
// never block closing. Close is permitted only when every loaded item carries
// a decision and nothing is in flight.
package session
