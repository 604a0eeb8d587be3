package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/bulkren/internal/engine"
	"github.com/danieljhkim/bulkren/internal/journal"
)

var (
	runForce      bool
	runDryRun     bool
	runNoRollback bool
	runVerify     bool
)

var runCmd = &cobra.Command{
	Use:   "run [source target]...",
	Short: "Rename pairs of files and directories",
	Long: `Rename every source to its target as one operation.

Pairs come from alternating positional arguments or from --file, one
"source<TAB>target" per line (or a JSON array with --format json).

All sources are first moved to placeholders next to their targets and only
then moved to the targets, so pairs may swap or cycle names freely.

When a target already exists the --mode decides:
  error        abort the run (default)
  change-name  prefix the target name with underscores until it is free
  overwrite    replace the existing entry (the run cannot be undone)

A run that fails part way is rolled back unless --no-rollback is given.
Every run that changed the filesystem is journaled for 'bulkren undo'.`,
	Example: `  bulkren run old.txt new.txt
  bulkren run a b b a
  bulkren run -f renames.tsv --mode change-name`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := loadPairs(args)
		if err != nil {
			return err
		}

		return withApp(!runDryRun, func(a *app) error {
			mode, err := resolveMode(cmd, a.settings)
			if err != nil {
				return err
			}

			req := &engine.RunRequest{
				Pairs:        pairs,
				Mode:         mode,
				Force:        runForce,
				DryRun:       runDryRun,
				Rollback:     a.settings.RollbackOnFailure && !runNoRollback,
				Verify:       a.settings.Verify || runVerify,
				HistoryLimit: a.settings.HistoryLimit,
			}

			result, err := a.engine.Run(context.Background(), req)
			if jsonOutput && result != nil {
				if jerr := outputJSON(result); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				return reportRunFailure(result, err)
			}

			if result.DryRun {
				PrintSection("Dry Run")
				renderPlan(result.Plan)
				renderSummary(result.Plan)
				return nil
			}

			PrintSuccess(fmt.Sprintf("Renamed %s", PrintCount(len(result.Ledger.Entries), "pair", "pairs")))
			if result.EntryID != "" {
				PrintLabelValue("Journal ID", result.EntryID)
			}
			if result.Verified > 0 {
				PrintLabelValue("Verified", PrintCount(result.Verified, "pair", "pairs"))
			}
			if result.Irreversible() {
				PrintWarning("Existing entries were overwritten. This run cannot be undone.")
			}
			return nil
		})
	},
}

// reportRunFailure prints what a failed run left behind and returns the
// error to surface.
func reportRunFailure(result *engine.RunResult, err error) error {
	if result == nil {
		return err
	}

	if errors.Is(err, engine.ErrConflict) {
		renderConflicts(result.Plan.Conflicts)
		fmt.Fprintln(stdout)
		PrintWarning("Use --force to run anyway, or --mode change-name to pick free names.")
		return err
	}

	switch result.Outcome {
	case journal.OutcomeNotApplied:
		return fmt.Errorf("rename is not applied: %w", err)
	case journal.OutcomeInterrupted:
		if result.EntryID != "" {
			PrintWarning(fmt.Sprintf("Partial progress was journaled as %s. Run 'bulkren undo' to restore.", result.EntryID))
		}
		return fmt.Errorf("rename is interrupted: %w", err)
	default:
		return err
	}
}

func init() {
	addPairFlags(runCmd)
	addModeFlag(runCmd)
	runCmd.Flags().BoolVar(&runForce, "force", false, "Run even when conflicts are predicted")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Show the plan without renaming")
	runCmd.Flags().BoolVar(&runNoRollback, "no-rollback", false, "Leave partial progress in place when a run fails")
	runCmd.Flags().BoolVar(&runVerify, "verify", false, "Hash content before and after renaming")
}
