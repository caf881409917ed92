package interfaces

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// LedgerCall is an ephemeral, not-yet-broadcast contract call. It carries the
// function name and argument tuple so a failed simulation can be logged
// without any side effects.
type LedgerCall struct {
	Method string
	Args   []any
}

// String renders the call for logs and error messages.
func (c LedgerCall) String() string {
	return fmt.Sprintf("%s(%d args)", c.Method, len(c.Args))
}

// TxOutcome classifies the result of waiting for a broadcast transaction.
type TxOutcome int

const (
	// TxConfirmed means the transaction was mined and executed successfully.
	TxConfirmed TxOutcome = iota
	// TxReverted means the transaction was mined but rejected on-chain.
	TxReverted
	// TxTimedOut means confirmation did not arrive within the deadline.
	// The transaction may still confirm later.
	TxTimedOut
)

// String returns the outcome name.
func (o TxOutcome) String() string {
	switch o {
	case TxConfirmed:
		return "confirmed"
	case TxReverted:
		return "reverted"
	case TxTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// ChainClient exposes the three ledger primitives the coordinators build on.
// Simulate dry-runs a call without broadcasting; Execute broadcasts a signed
// call and returns its transaction hash; AwaitConfirmation blocks until the
// transaction is finalized, rejected, or the timeout elapses.
//
// Implementations must never conflate a timeout with a revert: a timed-out
// transaction may still confirm, and retry logic depends on telling the two
// apart.
type ChainClient interface {
	Simulate(ctx context.Context, call LedgerCall) error
	Execute(ctx context.Context, call LedgerCall) (common.Hash, error)
	AwaitConfirmation(ctx context.Context, txHash common.Hash, timeout time.Duration) (TxOutcome, error)
	ContractAddress() common.Address
	ChainID() int64
}
