package interfaces

import "errors"

// Failure taxonomy for the reconciliation coordinators. Callers distinguish
// outcomes with errors.Is; implementations wrap these with fmt.Errorf("%w").
var (
	// ErrNotFound indicates a catalog entity that does not exist. Fatal,
	// retrying cannot help.
	ErrNotFound = errors.New("not found")

	// ErrEventNotRegistered indicates a precondition violation: tier or
	// archival work was requested before the event itself was registered.
	ErrEventNotRegistered = errors.New("event not registered on-chain")

	// ErrSimulationFailed indicates the dry-run of a ledger call was
	// rejected before broadcast. Zero side effects on either store;
	// retryable once the inputs are fixed.
	ErrSimulationFailed = errors.New("ledger call simulation failed")

	// ErrTransactionReverted indicates a broadcast transaction was rejected
	// on-chain. Nothing was persisted, so a retry broadcasts again.
	ErrTransactionReverted = errors.New("ledger transaction reverted")

	// ErrConfirmationTimedOut indicates confirmation did not arrive within
	// the deadline. The transaction may still confirm later: callers must
	// re-check state before any further broadcast, never retry blindly.
	ErrConfirmationTimedOut = errors.New("ledger confirmation timed out")

	// ErrStoreWriteAfterConfirm indicates the ledger confirmed a
	// transaction but the registry write failed afterwards. The ledger is
	// now ahead of the store and the divergence needs manual
	// reconciliation; the system does not self-heal this state.
	ErrStoreWriteAfterConfirm = errors.New("registry write failed after ledger confirmation")

	// ErrNoTiersRegistered indicates an archival mint was requested for an
	// event that has no registered tiers to bind to.
	ErrNoTiersRegistered = errors.New("no tiers registered for event")

	// ErrAlreadyRegistered is returned by registry stores when an insert
	// hits the unique key. Coordinators treat it as "another writer won the
	// race" and re-read instead of failing.
	ErrAlreadyRegistered = errors.New("registration already exists")
)
