package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/planner"
)

// History lists journaled runs, newest first.
func (e *Engine) History(ctx context.Context, req *HistoryRequest) (*HistoryResult, error) {
	if err := e.requireJournal(); err != nil {
		return nil, err
	}
	entries, err := e.journal.List(req.Limit)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{Entries: entries}, nil
}

// Show returns a single journal entry. An empty id selects the latest entry.
func (e *Engine) Show(ctx context.Context, id string) (*journal.Entry, error) {
	if err := e.requireJournal(); err != nil {
		return nil, err
	}
	if id == "" {
		return e.journal.Latest()
	}
	return e.journal.Get(id)
}

// ExportUndo writes the reverse pairs of a run to a file, so they can be
// reviewed, edited and fed back to `bulkren run`.
func (e *Engine) ExportUndo(ctx context.Context, req *ExportRequest) (*ExportResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("%w: export path is required", ErrValidation)
	}
	entry, err := e.Show(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := checkUndoable(entry); err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = planner.FormatForPath(req.Path)
	}
	data, err := planner.FormatPairs(entry.Undo, format)
	if err != nil {
		return nil, err
	}
	if err := e.fs.AtomicWrite(req.Path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", req.Path, err)
	}

	return &ExportResult{Entry: entry, Path: req.Path, Pairs: len(entry.Undo)}, nil
}

// Prune trims the journal to the newest req.Keep entries.
func (e *Engine) Prune(ctx context.Context, req *PruneRequest) (int, error) {
	if err := e.requireJournal(); err != nil {
		return 0, err
	}
	if req.Keep < 0 {
		return 0, fmt.Errorf("%w: keep must not be negative", ErrValidation)
	}
	return e.journal.Prune(req.Keep)
}
