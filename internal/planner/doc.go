// Package planner handles the planning phase of bulk renames.
//
// The planner turns pair files and command-line arguments into rename pairs
// and predicts, without touching the filesystem, what executing them would do.
// Predictions follow the rename engine: every source is staged away before any
// target is committed, and pairs commit in order.
//
// Key responsibilities:
//   - Parse and format pair lists (TSV and JSON)
//   - Predict the final path of every pair under an overwrite mode
//   - Detect conflicts (missing or duplicate sources, unnamed or occupied targets)
//   - Flag plans that would make the run irreversible
package planner
