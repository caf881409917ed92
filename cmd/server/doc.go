// Package main (cmd/server) implements the reconciliation API server.
//
// The server exposes an admin endpoint that projects catalog events onto the
// on-chain ticketing ledger, running the event, tier and archival
// coordinators in sequence for one event per request, and a public endpoint
// that reports the registry mirror without touching the ledger.
//
// Every ledger transaction is signed with a single custodial key, loaded
// from a hex flag, a key file, or a HashiCorp Vault KV v2 secret. Archival
// token metadata can be published to one or more content-addressed backends
// (file, S3, IPFS) before the mint is broadcast.
//
// Configuration is handled through command-line flags, with separate
// settings for blockchain connectivity, the registry database, HTTP
// endpoints, logging, and performance tuning. Database settings come from
// DB_* environment variables, optionally loaded from a .env file.
//
// The server implements graceful shutdown on receiving termination signals
// (SIGINT/SIGTERM) and supports health checks, drain control, and optional
// profiling endpoints.
//
// Example usage:
//
//	reconcile-server --rpc-addr=http://localhost:8545 \
//	    --listen-addr=0.0.0.0:8080 \
//	    --contract-address=0x5FbDB2315678afecb367f032d93F642f64180aa3 \
//	    --chain-id=31337 \
//	    --custodial-address=0x70997970C51812dc3A010C7d01b50e0d17dc79C8 \
//	    --signer-key-file=./minter.key \
//	    --metadata-backend=file:///var/lib/ticketing/metadata
package main
