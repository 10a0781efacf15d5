// Package verdict memoizes SHOW/HIDE decisions per calendar event.
//
// KeyFor derives a stable identity from an event's ID, its best available
// instant, and a short fingerprint of its location; a changed location yields
// a new key and therefore a fresh decision. Record is a closed union of Hide
// and Show. Cache holds the in-memory mapping for one run and remembers which
// keys changed so a Store can persist either the whole document or just the
// touched keys.
//
// Loading never fails a run: a missing, unreadable, or corrupt cache is
// logged and replaced by an empty one, which makes every event eligible for
// reprocessing.
package verdict
