package rename

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/danieljhkim/bulkren/internal/fsops"
)

// Phase is the lifecycle state of an Operation.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseValidated
	PhaseStaging
	PhaseCommitting
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseValidated:
		return "validated"
	case PhaseStaging:
		return "staging"
	case PhaseCommitting:
		return "committing"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Operation is a single-use bulk rename.
type Operation struct {
	pairs  []Pair
	ledger Ledger
	phase  Phase

	fs     fsops.FS
	logger *zap.Logger
}

// Option configures an Operation.
type Option func(*Operation)

// WithFS sets the filesystem used by the operation (default: fsops.RealFS).
func WithFS(fs fsops.FS) Option {
	return func(o *Operation) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithLogger sets the logger used by the operation (default: no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(o *Operation) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an operation over pairs. The slice is copied.
func New(pairs []Pair, opts ...Option) *Operation {
	o := &Operation{
		pairs:  clonePairs(pairs),
		fs:     fsops.NewRealFS(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Pairs returns a copy of the pairs.
func (o *Operation) Pairs() []Pair {
	return clonePairs(o.pairs)
}

// Phase returns the current lifecycle phase.
func (o *Operation) Phase() Phase {
	return o.phase
}

// Ledger returns a copy of the undo ledger.
func (o *Operation) Ledger() Ledger {
	return o.ledger.clone()
}

// CheckSourcesExist fails with ErrSourceNotFound listing every pair whose
// source does not exist.
func (o *Operation) CheckSourcesExist() error {
	var missing []Pair
	for _, pair := range o.pairs {
		exists, err := o.fs.Exists(pair.Source)
		if err != nil {
			return newError(KindIO, pair, err)
		}
		if !exists {
			missing = append(missing, pair)
		}
	}
	if len(missing) > 0 {
		return &Error{Kind: KindSourceNotFound, Missing: missing}
	}
	return nil
}

// Execute renames every pair. It may be called once; later calls return
// ErrExecuted without touching the filesystem.
//
// On failure nothing is rolled back. The ledger reflects what was staged or
// committed, and Undo can be used to restore it.
func (o *Operation) Execute(mode OverwriteMode) error {
	if o.phase != PhaseCreated {
		return &Error{Kind: KindExecuted}
	}
	if !mode.Valid() {
		o.phase = PhaseFailed
		return &Error{Kind: KindIllegalOperation, Err: fmt.Errorf("invalid overwrite mode %d", int(mode))}
	}

	log := o.logger.With(zap.Stringer("mode", mode), zap.Int("pairs", len(o.pairs)))

	if err := o.CheckSourcesExist(); err != nil {
		o.phase = PhaseFailed
		log.Debug("preflight failed", zap.Error(err))
		return err
	}
	o.phase = PhaseValidated

	o.phase = PhaseStaging
	ledger, err := o.stage(o.ledger)
	o.ledger = ledger
	if err != nil {
		o.phase = PhaseFailed
		log.Warn("staging failed", zap.Int("staged", len(ledger.Entries)), zap.Error(err))
		return err
	}

	o.phase = PhaseCommitting
	ledger, err = o.commit(o.ledger, mode)
	o.ledger = ledger
	if err != nil {
		o.phase = PhaseFailed
		log.Warn("commit failed", zap.Stringer("undo", ledger.State), zap.Error(err))
		return err
	}

	o.phase = PhaseCompleted
	log.Debug("rename completed", zap.Stringer("undo", ledger.State))
	return nil
}

// Undo returns the operation that reverses this one, or nil when an
// overwrite made the run irreversible. The returned operation is
// independent of o and has not been executed.
func (o *Operation) Undo() *Operation {
	if o.ledger.State == Irreversible {
		return nil
	}
	return New(o.ledger.Entries, WithFS(o.fs), WithLogger(o.logger))
}
