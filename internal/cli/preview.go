package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/bulkren/internal/engine"
	"github.com/danieljhkim/bulkren/internal/rename"
	"github.com/danieljhkim/bulkren/internal/watch"
)

var (
	previewWatch    bool
	previewDebounce time.Duration
)

var previewCmd = &cobra.Command{
	Use:   "preview [source target]...",
	Short: "Show the predicted result of a run",
	Long: `Show the final name every pair would get, without renaming anything.

With --watch the preview stays open and is rebuilt whenever the directories
of the sources or targets change. Press Ctrl-C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := loadPairs(args)
		if err != nil {
			return err
		}

		return withApp(false, func(a *app) error {
			mode, err := resolveMode(cmd, a.settings)
			if err != nil {
				return err
			}
			req := &engine.PreviewRequest{Pairs: pairs, Mode: mode}

			if !previewWatch {
				return showPreview(a.engine, req)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return watchPreview(ctx, a, req)
		})
	},
}

func showPreview(eng *engine.Engine, req *engine.PreviewRequest) error {
	plan, err := eng.Preview(context.Background(), req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(plan)
	}

	PrintSection(fmt.Sprintf("Preview (%s)", plan.Mode))
	renderPlan(plan)
	renderSummary(plan)
	return nil
}

// watchPreview re-renders the preview on every batch of directory changes
// until ctx is cancelled.
func watchPreview(ctx context.Context, a *app, req *engine.PreviewRequest) error {
	w := watch.New(watchedPaths(req.Pairs), previewDebounce, a.logger)

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	if err := showPreview(a.engine, req); err != nil {
		return err
	}

	errs := w.Errors()
	for {
		select {
		case event, ok := <-w.Events():
			if !ok {
				return <-done
			}
			if !jsonOutput {
				PrintInfo(dimColor.Sprintf("%s changed", PrintCount(len(event.Paths), "path", "paths")))
			}
			if err := showPreview(a.engine, req); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			PrintError(fmt.Sprintf("watch: %v", err))
		case err := <-done:
			return err
		}
	}
}

// watchedPaths lists every source and target of a pair list.
func watchedPaths(pairs []rename.Pair) []string {
	paths := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		paths = append(paths, p.Source, p.Target)
	}
	return paths
}

func init() {
	addPairFlags(previewCmd)
	addModeFlag(previewCmd)
	previewCmd.Flags().BoolVarP(&previewWatch, "watch", "w", false, "Rebuild the preview when the directories change")
	previewCmd.Flags().DurationVar(&previewDebounce, "debounce", 200*time.Millisecond, "Quiet period before a change triggers a rebuild")
}
