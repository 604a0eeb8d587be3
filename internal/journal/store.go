package journal

import "time"

// Store persists journal entries.
type Store interface {
	// Save records a new entry. An empty ID is assigned a fresh UUID and a
	// zero CreatedAt is set from the store's clock.
	Save(entry *Entry) error

	// Get returns the entry whose ID equals or uniquely starts with id.
	Get(id string) (*Entry, error)

	// Latest returns the most recent entry.
	Latest() (*Entry, error)

	// List returns up to limit entries, newest first. Zero means no limit.
	List(limit int) ([]*Entry, error)

	// MarkUndone records that the entry was reversed at the given time.
	MarkUndone(id string, at time.Time) error

	// Prune deletes all but the newest keep entries and returns how many
	// were removed.
	Prune(keep int) (int, error)

	// Close releases the underlying database.
	Close() error
}
