package journal

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/danieljhkim/bulkren/internal/clock"
)

const (
	entryPrefix = "journal:"
	indexPrefix = "journal-id:"

	defaultCacheSize = 128
)

// BadgerStore implements Store on a badger database.
//
// Entries live under journal:<created-unix-nano>:<id> so key order is
// creation order. journal-id:<id> maps an ID back to its entry key.
type BadgerStore struct {
	db    *badger.DB
	codec *codec
	cache *lru.Cache[string, *Entry]
	clock clock.Clock

	// mu serializes read-modify-write cycles on the same entry.
	mu sync.Mutex
}

type options struct {
	clock     clock.Clock
	logger    *zap.Logger
	cacheSize int
}

// Option configures a BadgerStore.
type Option func(*options)

// WithClock sets the clock used to stamp new entries.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger routes badger's internal logging to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCacheSize sets how many decoded entries are kept in memory.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// Open opens (or creates) the journal in dir. An empty dir opens an
// in-memory journal, which is useful for tests and dry runs.
func Open(dir string, opts ...Option) (*BadgerStore, error) {
	o := options{
		clock:     clock.NewRealClock(),
		logger:    zap.NewNop(),
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var bopts badger.Options
	if dir == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(dir)
	}
	bopts = bopts.WithLogger(&badgerLogger{o.logger.Sugar()})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	store, err := newBadgerStore(db, o)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func newBadgerStore(db *badger.DB, o options) (*BadgerStore, error) {
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, *Entry](o.cacheSize)
	if err != nil {
		_ = c.close()
		return nil, fmt.Errorf("creating entry cache: %w", err)
	}
	return &BadgerStore{db: db, codec: c, cache: cache, clock: o.clock}, nil
}

func entryKey(createdAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", entryPrefix, createdAt.UnixNano(), id))
}

func indexKey(id string) []byte {
	return []byte(indexPrefix + id)
}

// idFromEntryKey extracts the ID from journal:<nanos>:<id>.
func idFromEntryKey(key []byte) string {
	rest := strings.TrimPrefix(string(key), entryPrefix)
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		return rest[i+1:]
	}
	return rest
}

// Save records a new entry.
func (s *BadgerStore) Save(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry cannot be nil")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	data, err := s.codec.encode(entry)
	if err != nil {
		return err
	}

	key := entryKey(entry.CreatedAt, entry.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		// Check if key already exists
		_, err := txn.Get(indexKey(entry.ID))
		if err == nil {
			return fmt.Errorf("entry already exists: %s", entry.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(indexKey(entry.ID), key)
	})
	if err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}

	s.cache.Add(entry.ID, entry.clone())
	return nil
}

// Get returns the entry whose ID equals or uniquely starts with id.
func (s *BadgerStore) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	if cached, ok := s.cache.Get(id); ok {
		return cached.clone(), nil
	}

	var entry *Entry
	err := s.db.View(func(txn *badger.Txn) error {
		key, err := s.resolve(txn, id)
		if err != nil {
			return err
		}
		entry, err = s.read(txn, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Add(entry.ID, entry)
	return entry.clone(), nil
}

// resolve maps an ID or ID prefix to an entry key.
func (s *BadgerStore) resolve(txn *badger.Txn, id string) ([]byte, error) {
	item, err := txn.Get(indexKey(id))
	if err == nil {
		return item.ValueCopy(nil)
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}

	prefix := indexKey(id)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var key []byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if key != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
		}
		key, err = it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
	}
	if key == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return key, nil
}

func (s *BadgerStore) read(txn *badger.Txn, key []byte) (*Entry, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: dangling index for %s", ErrNotFound, idFromEntryKey(key))
	}
	if err != nil {
		return nil, err
	}

	var entry *Entry
	err = item.Value(func(val []byte) error {
		entry, err = s.codec.decode(val)
		return err
	})
	return entry, err
}

// Latest returns the most recent entry.
func (s *BadgerStore) Latest() (*Entry, error) {
	entries, err := s.List(1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return entries[0], nil
}

// List returns up to limit entries, newest first.
func (s *BadgerStore) List(limit int) ([]*Entry, error) {
	var entries []*Entry

	err := s.db.View(func(txn *badger.Txn) error {
		return s.iterateNewest(txn, true, func(key []byte, item *badger.Item) (bool, error) {
			var entry *Entry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = s.codec.decode(val)
				return err
			})
			if err != nil {
				return false, err
			}
			entries = append(entries, entry)
			return limit <= 0 || len(entries) < limit, nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	for _, entry := range entries {
		s.cache.Add(entry.ID, entry.clone())
	}
	return entries, nil
}

// iterateNewest walks entry keys from newest to oldest until fn returns false.
func (s *BadgerStore) iterateNewest(txn *badger.Txn, values bool, fn func(key []byte, item *badger.Item) (bool, error)) error {
	prefix := []byte(entryPrefix)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = values
	it := txn.NewIterator(opts)
	defer it.Close()

	// Reverse iteration seeks to the last key <= seek.
	seek := append(bytes.Clone(prefix), 0xFF)
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		more, err := fn(item.KeyCopy(nil), item)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// MarkUndone records that the entry was reversed.
func (s *BadgerStore) MarkUndone(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *Entry
	err := s.db.Update(func(txn *badger.Txn) error {
		key, err := s.resolve(txn, id)
		if err != nil {
			return err
		}
		entry, err := s.read(txn, key)
		if err != nil {
			return err
		}

		undoneAt := at.UTC()
		entry.UndoneAt = &undoneAt
		data, err := s.codec.encode(entry)
		if err != nil {
			return err
		}
		updated = entry
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("marking entry undone: %w", err)
	}

	s.cache.Add(updated.ID, updated)
	return nil
}

// Prune deletes all but the newest keep entries.
func (s *BadgerStore) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative, got %d", keep)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale [][]byte
	seen := 0
	err := s.db.View(func(txn *badger.Txn) error {
		return s.iterateNewest(txn, false, func(key []byte, _ *badger.Item) (bool, error) {
			seen++
			if seen > keep {
				stale = append(stale, key)
			}
			return true, nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("scanning entries: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		id := idFromEntryKey(key)
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("deleting entry: %w", err)
		}
		if err := wb.Delete(indexKey(id)); err != nil {
			return 0, fmt.Errorf("deleting index: %w", err)
		}
		s.cache.Remove(id)
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("pruning entries: %w", err)
	}

	return len(stale), nil
}

// Close releases the database and the codec.
func (s *BadgerStore) Close() error {
	s.cache.Purge()
	return multierr.Combine(s.db.Close(), s.codec.close())
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
