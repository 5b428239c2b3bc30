// Package session drives one annotator's pass over the work queue. It ties
// the dataset snapshot, label store, and queue tracker together behind
// explicit per-session state: current filter, pending undo context, and
// prefill. Sessions never share memory; concurrent sessions coordinate only
// through the stores, with eligibility re-checked at commit time.
package session
