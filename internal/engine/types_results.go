package engine

import (
	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/planner"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// RunResult represents the result of a run.
type RunResult struct {
	// Plan is the prediction made before executing
	Plan *planner.Plan

	// DryRun is true when nothing was executed
	DryRun bool

	// Outcome tells whether the pairs were applied, rolled back or interrupted
	Outcome journal.Outcome

	// Ledger is the undo ledger of the executed operation
	Ledger rename.Ledger

	// EntryID is the journal entry recorded for the run (empty if none)
	EntryID string

	// Verified is the number of pairs whose content was verified
	Verified int

	// Pruned is the number of journal entries removed by the history limit
	Pruned int
}

// Irreversible reports whether the run overwrote existing entries.
func (r *RunResult) Irreversible() bool {
	return r.Ledger.State == rename.Irreversible
}

// UndoResult represents the result of reversing a journaled run.
type UndoResult struct {
	// Entry is the journal entry that was reversed
	Entry *journal.Entry

	// Plan is the prediction for the reverse pairs
	Plan *planner.Plan

	// DryRun is true when nothing was executed
	DryRun bool

	// Outcome of executing the reverse pairs
	Outcome journal.Outcome

	// EntryID is the journal entry recorded for an interrupted undo (empty if none)
	EntryID string
}

// CheckResult represents the result of a preflight check.
type CheckResult struct {
	// Total is the number of pairs checked
	Total int

	// Missing lists the pairs whose source does not exist
	Missing []rename.Pair
}

// HistoryResult represents a page of the journal.
type HistoryResult struct {
	Entries []*journal.Entry
}

// ExportResult represents an exported reverse pair list.
type ExportResult struct {
	Entry *journal.Entry
	Path  string
	Pairs int
}
