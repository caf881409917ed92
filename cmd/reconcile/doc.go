// Package main (cmd/reconcile) implements the one-shot reconciliation CLI.
//
// The "run" command registers a catalog event on the ticketing ledger, then
// its active pricing tiers in descending-price order, then mints the
// permanently-reserved archival record to the custodial address. Every step
// is idempotent: re-running after a partial failure completes only the
// missing pieces. Use --skip-archival to stop after tier registration.
//
// The "status" command prints the registry mirror for an event without any
// ledger interaction.
//
// Example usage:
//
//	reconcile run 5e9c2a7b-4f1d-4f4e-9a3b-8c7d6e5f4a3b \
//	    --rpc-addr=http://localhost:8545 \
//	    --contract-address=0x5FbDB2315678afecb367f032d93F642f64180aa3 \
//	    --chain-id=31337 \
//	    --custodial-address=0x70997970C51812dc3A010C7d01b50e0d17dc79C8 \
//	    --signer-key=0x...
//
//	reconcile status 5e9c2a7b-4f1d-4f4e-9a3b-8c7d6e5f4a3b
package main
