// Package dataset reads item-pool snapshots produced by the ingestion
// pipeline and computes the content fingerprint that keys cached work
// queues.
//
// The ingestion side owns every attribute beyond the request id, the
// evidence flag, and the creation time; this package carries the rest
// opaquely for filtering and display.
package dataset
