// Package sqlitedb opens the lastseen SQLite database and owns its schema.
//
// The database backs two optional stores: the sqlite blob store backend
// (documents by key) and the per-key verdict store. Both share one file so a
// single path in configuration covers them. Writes retry briefly on
// SQLITE_BUSY because batch and incremental runs may overlap.
package sqlitedb
