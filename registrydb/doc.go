// Package registrydb persists the relational mirror of on-chain state: one
// row per registered event, one per registered tier, and at most one archival
// record per event together with its backing inventory unit and payment
// entry.
//
// Mirror rows are append-only. They are written only after a ledger
// transaction has confirmed, so a missing row always means "not on-chain yet"
// and a present row is never stale. The unique indexes double as the
// concurrency guard described in the coordinator package: a losing concurrent
// writer receives interfaces.ErrAlreadyRegistered and re-reads.
//
// MemoryStore implements the same interfaces in memory for tests and local
// development without Postgres.
package registrydb
