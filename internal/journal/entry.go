// Package journal persists the undo history of bulk renames.
//
// Every run that changed the filesystem is recorded as an Entry holding the
// requested pairs and the reverse pairs taken from the rename ledger, so a
// later process can undo it. Entries are stored in badger, ordered by
// creation time.
package journal

import (
	"errors"
	"time"

	"github.com/danieljhkim/bulkren/internal/rename"
)

// Outcome describes how a run ended.
type Outcome string

const (
	// OutcomeApplied: every pair was renamed.
	OutcomeApplied Outcome = "applied"
	// OutcomeNotApplied: the run failed and its partial progress was rolled back.
	OutcomeNotApplied Outcome = "not-applied"
	// OutcomeInterrupted: the run failed and partial progress remains on disk.
	OutcomeInterrupted Outcome = "interrupted"
)

var (
	// ErrNotFound indicates no entry matches the requested ID.
	ErrNotFound = errors.New("journal entry not found")

	// ErrAmbiguous indicates an ID prefix matches more than one entry.
	ErrAmbiguous = errors.New("ambiguous journal entry id")

	// ErrEmpty indicates the journal has no entries.
	ErrEmpty = errors.New("journal is empty")
)

// Entry is one recorded run.
type Entry struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Mode      rename.OverwriteMode `json:"mode"`
	Pairs     []rename.Pair        `json:"pairs"`
	Undo      []rename.Pair        `json:"undo"`
	State     rename.UndoState     `json:"state"`
	Outcome   Outcome              `json:"outcome"`
	Error     string               `json:"error,omitempty"`
	UndoneAt  *time.Time           `json:"undone_at,omitempty"`
}

// Undone reports whether the entry has already been reversed.
func (e *Entry) Undone() bool {
	return e.UndoneAt != nil
}

// Reversible reports whether the entry can still be undone.
func (e *Entry) Reversible() bool {
	return e.State != rename.Irreversible && len(e.Undo) > 0 && !e.Undone()
}

// ShortID returns the first eight characters of the ID.
func (e *Entry) ShortID() string {
	if len(e.ID) <= 8 {
		return e.ID
	}
	return e.ID[:8]
}

func (e *Entry) clone() *Entry {
	c := *e
	c.Pairs = append([]rename.Pair(nil), e.Pairs...)
	c.Undo = append([]rename.Pair(nil), e.Undo...)
	if e.UndoneAt != nil {
		at := *e.UndoneAt
		c.UndoneAt = &at
	}
	return &c
}
