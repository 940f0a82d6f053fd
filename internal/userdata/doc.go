// Package userdata owns the user's watchlist and movie ratings.
//
// A Store is opened explicitly against a Backend and handed to consumers.
// Open reads both records once; missing or unreadable records start empty
// with a warning. Every mutation writes the whole affected collection back
// through the backend before returning, and a failed write leaves the
// in-memory state untouched so the caller can retry.
//
// Backends persist opaque JSON documents under two keys, "watchlist" and
// "ratings": FileBackend keeps one file per key, SQLiteBackend one row per
// key, and MemoryBackend keeps them in process for tests.
package userdata
