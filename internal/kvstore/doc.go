// Package kvstore is the small key-value port behind album and cooldown
// persistence.
//
// Each persisted concern is one opaque blob under a fixed key. Backends:
// memory (tests and ephemeral runs), file (one JSON file per key, written
// atomically under an advisory lock), sqlite (modernc.org/sqlite, single table),
// and bolt (go.etcd.io/bbolt, single bucket). Open selects a backend from
// configuration. None of the backends coordinate state across processes; the
// last writer wins.
package kvstore
