package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/bulkren/internal/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check [source target]...",
	Short: "Verify that every source exists",
	Long: `Check a pair list without renaming anything.

Every missing source is reported at once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := loadPairs(args)
		if err != nil {
			return err
		}

		return withApp(false, func(a *app) error {
			result, err := a.engine.Check(context.Background(), &engine.CheckRequest{Pairs: pairs})
			if jsonOutput && result != nil {
				if jerr := outputJSON(result); jerr != nil {
					return jerr
				}
				return err
			}
			if result == nil {
				return err
			}

			if len(result.Missing) > 0 {
				PrintSection("Missing Sources")
				items := make([]string, 0, len(result.Missing))
				for _, p := range result.Missing {
					items = append(items, displayPath(p.Source))
				}
				PrintList(items, 1)
				fmt.Fprintln(stdout)
				return fmt.Errorf("%s of %d missing", PrintCount(len(result.Missing), "source", "sources"), result.Total)
			}
			if err != nil {
				return err
			}

			PrintSuccess(fmt.Sprintf("All %s present", PrintCount(result.Total, "source", "sources")))
			return nil
		})
	},
}

func init() {
	addPairFlags(checkCmd)
}
