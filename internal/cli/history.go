package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/bulkren/internal/engine"
	"github.com/danieljhkim/bulkren/internal/planner"
)

var (
	historyLimit int
	exportOutput string
	exportFormat string
	historyKeep  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and maintain the undo journal",
	Long: `Inspect and maintain the undo journal.

Without a subcommand, lists the most recent runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory()
	},
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List journaled runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory()
	},
}

func listHistory() error {
	return withApp(true, func(a *app) error {
		result, err := a.engine.History(context.Background(), &engine.HistoryRequest{Limit: historyLimit})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result.Entries)
		}

		PrintSection("History")
		if len(result.Entries) == 0 {
			PrintEmptyState("No runs recorded.")
			return nil
		}

		rows := make([][]string, 0, len(result.Entries))
		for _, entry := range result.Entries {
			rows = append(rows, []string{
				entry.ShortID(),
				humanize.Time(entry.CreatedAt),
				entry.Mode.String(),
				fmt.Sprintf("%d", len(entry.Pairs)),
				entryState(entry),
			})
		}
		PrintTable([]string{"ID", "WHEN", "MODE", "PAIRS", "STATE"}, rows, nil)
		return nil
	})
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the pairs and undo moves of a run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) > 0 {
			id = args[0]
		}

		return withApp(true, func(a *app) error {
			entry, err := a.engine.Show(context.Background(), id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(entry)
			}
			renderEntry(entry)
			return nil
		})
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Write the undo moves of a run as a pair file",
	Long: `Write the reverse pairs of a run to a pair file.

The file can be reviewed or edited and then passed to 'bulkren run -f'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &engine.ExportRequest{Path: exportOutput}
		if len(args) > 0 {
			req.ID = args[0]
		}
		if exportFormat != "" {
			format, err := planner.ParseFormat(exportFormat)
			if err != nil {
				return err
			}
			req.Format = format
		}

		return withApp(true, func(a *app) error {
			result, err := a.engine.ExportUndo(context.Background(), req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(result)
			}
			PrintSuccess(fmt.Sprintf("Wrote %s for run %s to %s", PrintCount(result.Pairs, "pair", "pairs"), result.Entry.ShortID(), result.Path))
			return nil
		})
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs from the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(true, func(a *app) error {
			keep := historyKeep
			if !cmd.Flags().Changed("keep") {
				if a.settings.HistoryLimit == 0 {
					return fmt.Errorf("history_limit is 0 (keep everything); pass --keep")
				}
				keep = a.settings.HistoryLimit
			}

			pruned, err := a.engine.Prune(context.Background(), &engine.PruneRequest{Keep: keep})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(map[string]int{"pruned": pruned, "kept": keep})
			}
			if pruned == 0 {
				PrintEmptyState("Nothing to prune.")
				return nil
			}
			PrintSuccess(fmt.Sprintf("Pruned %s", PrintCount(pruned, "run", "runs")))
			return nil
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{historyCmd, historyLsCmd} {
		cmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list (0 lists all)")
	}

	historyExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Destination pair file")
	historyExportCmd.Flags().StringVar(&exportFormat, "format", "", "Pair file format: tsv or json (default: by extension)")
	_ = historyExportCmd.MarkFlagRequired("output")

	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", 0, "Number of newest runs to keep (default: history_limit)")

	historyCmd.AddCommand(historyLsCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyPruneCmd)
}
