// Package sqlite implements allocation storage on SQLite.
//
// SQLite has no row locks. A character lock is an in-process keyed mutex held
// for the life of a BEGIN IMMEDIATE transaction, so spends for one character
// serialize inside the process while SQLite itself admits one writer at a
// time. Separate processes sharing a database file only get the database-wide
// write lock and must not spend for the same character concurrently.
package sqlite
