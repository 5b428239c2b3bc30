// Package export flattens stored labels into analysis-ready CSV and JSONL
// files. Each row joins one label with its item's derived consensus status;
// a summary reports per-status item counts for the whole snapshot.
package export
