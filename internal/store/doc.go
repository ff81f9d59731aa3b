// Package store keeps the history of saved documents in SQLite.
//
// data.json only ever holds the latest submission. Every save is also
// recorded here as a snapshot so earlier contexts can be listed, shown
// and restored.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The database is a single file next to the other user data
// 2. The CGO-free driver keeps cross-compilation easy
// 3. The JSON1 functions let listings read a few fields without decoding
//    whole documents
//
// Snapshots are identified by random UUIDs and carry a SHA3-256 digest of
// the document content. Saving a document whose digest equals the latest
// snapshot's does not add a row, so repeated submissions of the same form
// leave one entry.
package store
