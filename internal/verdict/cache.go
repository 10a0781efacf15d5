package verdict

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"lastseen/internal/calendar"
	"lastseen/internal/logging"
)

// Entry pairs a key with its record for listing.
type Entry struct {
	Key    Key
	Record Record
}

// Cache is the in-memory verdict mapping for one run. It is safe for
// concurrent use; Persist must be called once by the run owner.
type Cache struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[Key]Record
	changed map[Key]struct{}
}

// New returns an empty cache bound to store.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		store:   store,
		logger:  logging.NewComponentLogger(logger, "verdict"),
		entries: make(map[Key]Record),
		changed: make(map[Key]struct{}),
	}
}

// Load reads the persisted verdicts. Any failure is logged and yields an
// empty cache so the run reprocesses every event.
func Load(ctx context.Context, store Store, logger *slog.Logger) *Cache {
	c := New(store, logger)
	if store == nil {
		return c
	}
	log := logging.WithContext(ctx, c.logger)
	records, err := store.Load(ctx)
	switch {
	case err == nil:
		c.entries = records
		if c.entries == nil {
			c.entries = make(map[Key]Record)
		}
		log.Debug("verdict cache loaded", logging.Int("entry_count", len(c.entries)))
	case IsMissing(err):
		log.Info("verdict cache not found; starting empty")
	default:
		logging.WarnWithContext(log, "verdict cache load failed; starting empty", "verdict_cache_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check store reachability and the cache document contents"),
			logging.String(logging.FieldImpact, "every event in the window will be decided again"),
		)
	}
	return c
}

// Get returns the record for ev.
func (c *Cache) Get(ev calendar.Event) (Record, bool) {
	return c.GetKey(KeyFor(ev))
}

// GetKey returns the record stored under key.
func (c *Cache) GetKey(key Key) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.entries[key]
	return rec, ok
}

// Set upserts the record for ev.
func (c *Cache) Set(ev calendar.Event, rec Record) {
	c.SetKey(KeyFor(ev), rec)
}

// SetKey upserts the record stored under key.
func (c *Cache) SetKey(key Key, rec Record) {
	if rec == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rec
	c.changed[key] = struct{}{}
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	c.changed[key] = struct{}{}
	return true
}

// Clear removes every entry and returns how many were dropped.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	for key := range c.entries {
		c.changed[key] = struct{}{}
	}
	c.entries = make(map[Key]Record)
	return n
}

// Len returns the number of cached verdicts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Pending returns the number of keys changed since load or the last persist.
func (c *Cache) Pending() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.changed)
}

// Keys returns the cached keys in sorted order.
func (c *Cache) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}

// Entries returns every key and record sorted by key.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := slices.Sorted(maps.Keys(c.entries))
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		out = append(out, Entry{Key: key, Record: c.entries[key]})
	}
	return out
}

// Persist hands the snapshot and the changed keys to the store. The changed
// set is cleared only after a successful save.
func (c *Cache) Persist(ctx context.Context) error {
	if c.store == nil {
		return errors.New("verdict cache has no store")
	}
	c.mu.RLock()
	snapshot := maps.Clone(c.entries)
	changed := slices.Sorted(maps.Keys(c.changed))
	c.mu.RUnlock()

	if err := c.store.Save(ctx, snapshot, changed); err != nil {
		return err
	}

	c.mu.Lock()
	for _, key := range changed {
		delete(c.changed, key)
	}
	c.mu.Unlock()

	logging.WithContext(ctx, c.logger).Debug("verdict cache persisted",
		logging.Int("entry_count", len(snapshot)),
		logging.Int("changed_count", len(changed)),
	)
	return nil
}
