// Package interfaces defines the core interfaces and types shared by the
// chain-ticketing components. It provides the contract between the ledger
// client, the registry store, and the reconciliation coordinators without
// implementation details, so each side can be replaced by a mock in tests.
package interfaces
