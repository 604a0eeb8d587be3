package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/bulkren/internal/engine"
)

var (
	undoForce      bool
	undoDryRun     bool
	undoNoRollback bool
)

var undoCmd = &cobra.Command{
	Use:   "undo [id]",
	Short: "Reverse a journaled run",
	Long: `Move every entry of a run back to where it was before the run.

Without [id] the most recent run that has not been undone is reversed, so
repeated 'bulkren undo' walks back through history. [id] may be any unique
prefix of a journal ID (see 'bulkren history').

Runs that overwrote existing entries cannot be undone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &engine.UndoRequest{
			Force:  undoForce,
			DryRun: undoDryRun,
		}
		if len(args) > 0 {
			req.ID = args[0]
		}

		return withApp(true, func(a *app) error {
			req.Rollback = a.settings.RollbackOnFailure && !undoNoRollback

			result, err := a.engine.Undo(context.Background(), req)
			if jsonOutput && result != nil {
				if jerr := outputJSON(result); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				if engine.IsJournalMiss(err) && req.ID == "" {
					PrintEmptyState("Nothing to undo.")
					return nil
				}
				return reportUndoFailure(result, err)
			}

			if result.DryRun {
				PrintSection(fmt.Sprintf("Dry Run: undo %s", result.Entry.ShortID()))
				renderPlan(result.Plan)
				return nil
			}

			PrintSuccess(fmt.Sprintf("Undid run %s (%s)", result.Entry.ShortID(), PrintCount(len(result.Entry.Undo), "pair", "pairs")))
			return nil
		})
	},
}

func reportUndoFailure(result *engine.UndoResult, err error) error {
	if result == nil {
		return err
	}
	if errors.Is(err, engine.ErrConflict) {
		renderConflicts(result.Plan.Conflicts)
		fmt.Fprintln(stdout)
		PrintWarning("Use --force to undo anyway.")
		return err
	}
	if result.EntryID != "" {
		PrintWarning(fmt.Sprintf("The interrupted undo was journaled as %s.", result.EntryID))
		return fmt.Errorf("rename is interrupted: %w", err)
	}
	return fmt.Errorf("rename is not applied: %w", err)
}

func init() {
	undoCmd.Flags().BoolVar(&undoForce, "force", false, "Undo even when conflicts are predicted")
	undoCmd.Flags().BoolVar(&undoDryRun, "dry-run", false, "Show the reverse plan without renaming")
	undoCmd.Flags().BoolVar(&undoNoRollback, "no-rollback", false, "Leave partial progress in place when the undo fails")
}
