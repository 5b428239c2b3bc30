// Package consensus holds the pure decision rules that classify an item's
// label set and gate annotator assignment.
//
// Both functions are side-effect free and recomputed on every read. There is
// no cached status to invalidate: a stale read of the label set is tolerated
// because the next read re-derives everything from store state.
package consensus
