// Package album holds the collected cards.
//
// The album is three fixed-length slot arrays, one per category, addressed by
// catalog.CardID.SlotIndex. A non-empty slot always holds the card whose
// identifier resolves to that slot. Every mutation replaces the whole album
// value (copy-on-write) and is persisted immediately; persistence failures are
// logged and never surface to callers. A malformed or unreadable blob loads
// as an empty album, and entries that do not belong to their slot are
// dropped on load.
package album
