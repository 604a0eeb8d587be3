// Package engine provides the orchestration layer for bulkren operations.
//
// The engine package sits between CLI commands and the rename core. It plans
// runs, rejects predicted conflicts, executes renames, rolls back failed runs,
// records the undo journal and verifies content.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Run/Undo: Executes renames and reverses journaled runs
//   - Check/Preview: Read-only preflight and dry-run planning
//   - History/Export/Prune: Journal inspection and maintenance
package engine

import (
	"go.uber.org/zap"

	"github.com/danieljhkim/bulkren/internal/clock"
	"github.com/danieljhkim/bulkren/internal/fsops"
	"github.com/danieljhkim/bulkren/internal/hash"
	"github.com/danieljhkim/bulkren/internal/journal"
)

// Engine orchestrates all bulkren operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs      fsops.FS
	hasher  hash.Hasher
	clock   clock.Clock
	journal journal.Store
	logger  *zap.Logger
}

// New creates a new Engine with the given dependencies. store may be nil for
// commands that never touch the journal.
func New(
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	store journal.Store,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		fs:      fs,
		hasher:  hasher,
		clock:   clk,
		journal: store,
		logger:  logger,
	}
}

func (e *Engine) requireJournal() error {
	if e.journal == nil {
		return ErrNoJournal
	}
	return nil
}
