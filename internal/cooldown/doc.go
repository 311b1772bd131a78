// Package cooldown gates envelope slots behind recharge deadlines.
//
// Manager keeps one optional absolute deadline per slot. A slot is available
// when it has no deadline or its deadline is not after now. Deadlines are
// persisted as a single blob mapping slot ids to Unix-millisecond deadlines;
// unreadable or malformed blobs load as "no cooldowns". Expired deadlines are
// dropped on load and by Purge, which Run invokes periodically.
package cooldown
