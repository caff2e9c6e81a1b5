// Package inventory implements the banana inventory manager.
//
// A Manager owns an ordered list of items and an append-only action log.
// Every Manager is independent: ids, sequence numbers and the log start
// fresh for each instance and nothing is shared between instances.
//
// # Identity and Ordering
//
// Item ids come from a per-manager logical clock starting at 1 and are never
// reused, even after removal. Log entries are stamped with a second clock so
// Seq is strictly increasing in append order.
//
// # Action Log
//
// Only successful state changes are logged. Rejected operations and no-ops
// (removing an unknown id, sorting an already sorted list, purging when
// nothing is spoiled) leave the log untouched.
//
// Entries are hash-chained: each entry's Hash covers its Seq, Type, Payload
// and the previous entry's Hash, using canonical JSON from package canon.
// VerifyLog recomputes the chain for an exported log.
//
// # Concurrency
//
// All operations run to completion under a single mutex, so a Manager may be
// shared between goroutines. Reads return copies; callers can never mutate
// manager state through a returned slice.
package inventory
