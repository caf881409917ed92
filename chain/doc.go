// Package chain implements the ledger client for the ticketing contract.
//
// It exposes exactly three primitives over go-ethereum: Simulate (dry-run a
// call without broadcasting), Execute (broadcast a signed call and return its
// transaction hash) and AwaitConfirmation (block until the transaction is
// mined, reverted, or a deadline elapses). The reconciliation coordinators are
// built entirely on these primitives and never touch the RPC connection
// directly.
//
// The client is constructed from an explicit, immutable Config so tests can
// substitute the testify mock in mock.go for the real thing.
package chain
