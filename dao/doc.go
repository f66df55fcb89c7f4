// Package dao opens named, shared record stores configured from YAML.
//
// A Registry creates each DAO lazily on its first Open and hands the same
// instance to every later caller that asks with equal options and the same
// key and record types. A DAO is a store.Store (a sharded MapStore, bounded
// by an LRUStore when Options.MaxSize is set) plus bbolt Backup and Restore
// driven by Options.Snapshot.
//
// Errors returned by this package are classified into *Error values with a
// stable Name; errors.Is still matches the underlying sentinels.
package dao
