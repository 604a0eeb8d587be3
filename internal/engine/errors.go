package engine

import "errors"

var (
	// ErrConflict indicates the plan predicted conflicts.
	ErrConflict = errors.New("conflict detected")

	// ErrValidation indicates a validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrNothingToUndo indicates there is no journaled run left to reverse.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrAlreadyUndone indicates the requested run was already reversed.
	ErrAlreadyUndone = errors.New("already undone")

	// ErrIrreversible indicates the run overwrote entries and cannot be reversed.
	ErrIrreversible = errors.New("run is irreversible")

	// ErrVerify indicates content changed between source and final path.
	ErrVerify = errors.New("verification failed")

	// ErrNoJournal indicates the engine was created without a journal.
	ErrNoJournal = errors.New("journal not available")
)
