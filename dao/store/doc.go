// Package store provides a concurrent in-memory record store with a push-based
// query pipeline.
//
// Records are opaque values identified by a key that an injected KeyFunc
// derives from each record. Queries are expressed as a Query (predicate, order,
// skip, limit) and answered by pushing matching records into a Sink, which is
// finalized with exactly one EOF or Error call.
//
// Consistency contract:
//
//   - Put, Remove and Find are atomic per key: a single key's mapping is never
//     observed half-written.
//   - Select is NOT a snapshot. Records inserted or removed by concurrent
//     writers while a query is running may or may not be delivered to it.
//   - RemoveAll atomically swaps the whole store for an empty one.
//
// Cancellation is cooperative: a sink asks to stop (or reports a failure)
// through the per-query FlowControl, and the driving loop honors it before the
// next record. Nothing preempts a sink that is already running.
package store
