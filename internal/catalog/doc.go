// Package catalog defines the fixed card universe: the three categories, the
// closed set of remote ids each category can serve, and the deterministic rules
// derived from a (category, id) pair such as album slot position, rarity, and
// presentational image references.
//
// The valid-id lists are static configuration. They mirror what the remote
// catalog is known to serve and are never derived at runtime; both pack
// composition and the album's slot mapping consume them.
package catalog
