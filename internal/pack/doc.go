// Package pack draws the card identifiers that make up one envelope.
//
// Pool samples distinct identifiers from a category's valid-id set by repeated
// draw-and-remove over a working copy. Composer picks one Recipe uniformly,
// samples each category it names, and shuffles the combined list. Every random
// draw goes through the Rand interface so tests can fix the sequence.
package pack
