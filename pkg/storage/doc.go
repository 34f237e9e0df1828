// Package storage provides persistence backends for TaskHub users and
// tasks. Two implementations of api.Store exist:
//
//   - FileSystemStore: users and tasks as JSON arrays in flat files. All
//     read-modify-write cycles hold a single writer lock, closing the
//     lost-update window inherent to whole-file persistence.
//   - SQLiteStore: an embedded transactional store on mattn/go-sqlite3,
//     where uniqueness and ordering are enforced by the schema.
//
// Both backends honor the same contract: duplicate registration fails
// with api.ErrDuplicateEmail, and any ownership-scoped task lookup that
// misses - whether the record is absent or owned by another user -
// fails with api.ErrNotFound.
package storage
