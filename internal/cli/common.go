package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/danieljhkim/bulkren/internal/clock"
	"github.com/danieljhkim/bulkren/internal/config"
	"github.com/danieljhkim/bulkren/internal/engine"
	"github.com/danieljhkim/bulkren/internal/fsops"
	"github.com/danieljhkim/bulkren/internal/hash"
	"github.com/danieljhkim/bulkren/internal/journal"
	"github.com/danieljhkim/bulkren/internal/logging"
	"github.com/danieljhkim/bulkren/internal/planner"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// Pair input flags shared by run, preview and check.
var (
	pairsFile   string
	pairsFormat string
	modeFlag    string
)

// app bundles an engine with the resources it holds open.
type app struct {
	engine   *engine.Engine
	settings config.Settings
	logger   *zap.Logger
	journal  *journal.BadgerStore
}

// newApp creates an engine with real implementations of all dependencies.
// The journal is only opened when withJournal is set, so read-only commands
// never contend for the badger directory lock.
func newApp(withJournal bool) (*app, error) {
	// Get default paths
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	settings, err := config.LoadSettings(paths.Config)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.LogLevel, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	hasher, err := hash.New(settings.VerifyAlgorithm)
	if err != nil {
		return nil, err
	}

	a := &app{settings: settings, logger: logger}
	clk := clock.NewRealClock()

	var store journal.Store
	if withJournal {
		// Ensure directories exist
		if err := paths.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to ensure directories: %w", err)
		}
		a.journal, err = journal.Open(paths.Journal, journal.WithClock(clk), journal.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		store = a.journal
	}

	a.engine = engine.New(fsops.NewRealFS(), hasher, clk, store, logger)
	return a, nil
}

// Close releases the journal and flushes the logger.
func (a *app) Close() error {
	var err error
	if a.journal != nil {
		err = a.journal.Close()
	}
	// Sync on stderr fails with EINVAL on some terminals.
	_ = a.logger.Sync()
	return err
}

// withApp runs fn with a fresh app and closes it afterwards.
func withApp(withJournal bool, fn func(a *app) error) (err error) {
	a, err := newApp(withJournal)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.Close())
	}()
	return fn(a)
}

// addPairFlags registers the flags that select the pair list.
func addPairFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pairsFile, "file", "f", "", "Read pairs from a file (- for stdin)")
	cmd.Flags().StringVar(&pairsFormat, "format", "", "Pair file format: tsv or json (default: by extension)")
}

// addModeFlag registers --mode.
func addModeFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Overwrite mode: error, change-name or overwrite (default from config)")
}

// resolveMode returns --mode when given, else the configured default.
func resolveMode(cmd *cobra.Command, settings config.Settings) (rename.OverwriteMode, error) {
	if cmd.Flags().Changed("mode") {
		return rename.ParseOverwriteMode(modeFlag)
	}
	return settings.Mode(), nil
}

// loadPairs reads pairs from --file or from alternating source/target
// arguments. Relative paths resolve against the working directory.
func loadPairs(args []string) ([]rename.Pair, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	if pairsFile == "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("no pairs given: pass --file or source/target arguments")
		}
		return planner.PairsFromArgs(args, cwd)
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("--file cannot be combined with source/target arguments")
	}

	format := planner.FormatForPath(pairsFile)
	if pairsFormat != "" {
		if format, err = planner.ParseFormat(pairsFormat); err != nil {
			return nil, err
		}
	}

	var r io.Reader = os.Stdin
	if pairsFile != "-" {
		f, err := os.Open(pairsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open pair file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return planner.ParsePairs(r, format, cwd)
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
