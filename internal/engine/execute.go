package engine

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// execution is the outcome of running one rename operation, after any rollback.
type execution struct {
	ledger  rename.Ledger
	outcome journal.Outcome

	// undo moves every entry from where it is now back to where it was
	// before the operation started.
	undo  []rename.Pair
	state rename.UndoState

	err error
}

// execute runs pairs and, on failure, optionally reverses partial progress
// with the ledger's undo operation under ModeError.
func (e *Engine) execute(pairs []rename.Pair, mode rename.OverwriteMode, rollback bool) execution {
	op := rename.New(pairs, rename.WithFS(e.fs), rename.WithLogger(e.logger))
	err := op.Execute(mode)
	ledger := op.Ledger()

	x := execution{ledger: ledger, undo: ledger.Entries, state: ledger.State}
	if err == nil {
		x.outcome = journal.OutcomeApplied
		return x
	}

	x.err = err
	x.outcome = journal.OutcomeInterrupted
	if len(ledger.Entries) == 0 {
		x.outcome = journal.OutcomeNotApplied
		return x
	}

	undo := op.Undo()
	if !rollback || undo == nil {
		return x
	}

	e.logger.Info("rolling back", zap.Int("entries", len(ledger.Entries)))
	rbErr := undo.Execute(rename.ModeError)
	if rbErr == nil {
		x.outcome = journal.OutcomeNotApplied
		x.undo = nil
		return x
	}

	e.logger.Error("rollback failed", zap.Error(rbErr))
	x.undo = remaining(undo.Pairs(), undo.Ledger())
	x.state = rename.NotYetReversible
	x.err = multierr.Append(err, fmt.Errorf("rollback: %w", rbErr))
	return x
}

// remaining computes where every entry of a partially executed reverse
// operation lives now, paired with the location it still has to reach.
func remaining(pairs []rename.Pair, ledger rename.Ledger) []rename.Pair {
	var out []rename.Pair
	for i, pair := range pairs {
		current := pair.Source
		if i < len(ledger.Entries) {
			current = ledger.Entries[i].Source
		}
		if current != pair.Target {
			out = append(out, rename.Pair{Source: current, Target: pair.Target})
		}
	}
	return out
}

// record journals an execution unless nothing on disk changed.
func (e *Engine) record(pairs []rename.Pair, mode rename.OverwriteMode, x execution) (string, error) {
	if e.journal == nil || x.outcome == journal.OutcomeNotApplied {
		return "", nil
	}

	entry := &journal.Entry{
		CreatedAt: e.clock.Now(),
		Mode:      mode,
		Pairs:     pairs,
		Undo:      x.undo,
		State:     x.state,
		Outcome:   x.outcome,
	}
	if x.err != nil {
		entry.Error = x.err.Error()
	}

	if err := e.journal.Save(entry); err != nil {
		return "", fmt.Errorf("failed to journal run: %w", err)
	}
	e.logger.Debug("journaled", zap.String("id", entry.ID), zap.Stringer("state", entry.State))
	return entry.ID, nil
}
