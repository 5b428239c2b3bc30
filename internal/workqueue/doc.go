// Package workqueue builds and persists per-annotator work orderings.
//
// The base order for an (annotator, dataset hash) pair is a pure function
// of that key: a keyed-hash-seeded Fisher-Yates shuffle applied to the
// evidence partition and then the remainder. Because the derivation is
// reproducible, a restarted session reconstructs an identical order even if
// the persisted record were lost. The persisted record is still the
// authority while the hash is unchanged; a dataset edit that does not move
// the hash keeps the materialized order, stale partitions and all.
package workqueue
