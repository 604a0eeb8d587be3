package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/planner"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// Undo reverses a journaled run.
//
// Algorithm steps:
// 1. Select the entry (by ID, or the newest one not yet undone)
// 2. Refuse irreversible and already undone entries
// 3. Plan the reverse pairs under ModeError; stop here on DryRun
// 4. Execute the reverse pairs, rolling back on failure (if Rollback)
// 5. Mark the entry undone, or journal the interrupted undo
func (e *Engine) Undo(ctx context.Context, req *UndoRequest) (*UndoResult, error) {
	if err := e.requireJournal(); err != nil {
		return nil, err
	}

	entry, err := e.selectUndoEntry(req.ID)
	if err != nil {
		return nil, err
	}

	plan := planner.Build(e.fs, entry.Undo, rename.ModeError)
	result := &UndoResult{Entry: entry, Plan: plan, DryRun: req.DryRun}

	if req.DryRun {
		return result, nil
	}
	if plan.HasConflicts() && !req.Force {
		return result, fmt.Errorf("%w: %d conflicting pair(s)", ErrConflict, len(plan.Conflicts))
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	x := e.execute(entry.Undo, rename.ModeError, req.Rollback)
	result.Outcome = x.outcome

	if x.err != nil {
		// The interrupted undo is itself journaled, so the next undo
		// returns the tree to the state before this attempt.
		id, jerr := e.record(entry.Undo, rename.ModeError, x)
		result.EntryID = id
		return result, multierr.Append(x.err, jerr)
	}

	if err := e.journal.MarkUndone(entry.ID, e.clock.Now()); err != nil {
		return result, fmt.Errorf("failed to mark entry undone: %w", err)
	}
	e.logger.Debug("undone", zap.String("id", entry.ID))
	return result, nil
}

func (e *Engine) selectUndoEntry(id string) (*journal.Entry, error) {
	if id != "" {
		entry, err := e.journal.Get(id)
		if err != nil {
			return nil, err
		}
		return entry, checkUndoable(entry)
	}

	entries, err := e.journal.List(0)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Undone() {
			continue
		}
		return entry, checkUndoable(entry)
	}
	return nil, ErrNothingToUndo
}

func checkUndoable(entry *journal.Entry) error {
	switch {
	case entry.Undone():
		return fmt.Errorf("%w: %s", ErrAlreadyUndone, entry.ShortID())
	case entry.State == rename.Irreversible:
		return fmt.Errorf("%w: %s overwrote existing entries", ErrIrreversible, entry.ShortID())
	case len(entry.Undo) == 0:
		return fmt.Errorf("%w: %s has no recorded moves", ErrNothingToUndo, entry.ShortID())
	default:
		return nil
	}
}

// IsJournalMiss reports whether err means the requested entry does not exist.
func IsJournalMiss(err error) bool {
	return errors.Is(err, journal.ErrNotFound) || errors.Is(err, journal.ErrEmpty) || errors.Is(err, ErrNothingToUndo)
}
