package engine

import (
	"github.com/danieljhkim/bulkren/internal/planner"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// RunRequest represents a request to rename a set of pairs.
type RunRequest struct {
	// Pairs are the renames to perform, in order
	Pairs []rename.Pair

	// Mode decides what happens when a final target exists
	Mode rename.OverwriteMode

	// Force executes even when the plan predicts conflicts
	Force bool

	// DryRun performs planning only without making changes
	DryRun bool

	// Rollback reverses partial progress when execution fails
	Rollback bool

	// Verify hashes content before and after execution
	Verify bool

	// HistoryLimit prunes the journal to this many entries (0 keeps all)
	HistoryLimit int
}

// UndoRequest represents a request to reverse a journaled run.
type UndoRequest struct {
	// ID selects the entry (full ID or unique prefix). Empty means the most
	// recent run that has not been undone.
	ID string

	// Force executes even when the reverse plan predicts conflicts
	Force bool

	// DryRun shows the reverse plan without executing it
	DryRun bool

	// Rollback reverses partial progress when the undo itself fails
	Rollback bool
}

// CheckRequest represents a request to preflight pairs.
type CheckRequest struct {
	Pairs []rename.Pair
}

// PreviewRequest represents a request for a dry-run plan.
type PreviewRequest struct {
	Pairs []rename.Pair
	Mode  rename.OverwriteMode
}

// HistoryRequest represents a request to list journal entries.
type HistoryRequest struct {
	// Limit caps the number of entries returned (0 returns all)
	Limit int
}

// ExportRequest represents a request to write a run's reverse pairs to a file.
type ExportRequest struct {
	// ID selects the entry. Empty means the latest entry.
	ID string

	// Path is the destination file
	Path string

	// Format is the pair list encoding
	Format planner.Format
}

// PruneRequest represents a request to trim the journal.
type PruneRequest struct {
	// Keep is the number of newest entries to retain
	Keep int
}
