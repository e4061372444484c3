// Package history keeps the bounded, newest-first log of completed sends.
//
// Every settled send produces one Record. The Ledger holds at most its
// capacity (50 by default); appending beyond that silently evicts the
// oldest record. A Ledger can be backed by a key-value store, in which case
// it is loaded once at startup and saved after every mutation.
package history
