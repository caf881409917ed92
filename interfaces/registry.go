package interfaces

import "context"

// CatalogReader is the read-only view of the catalog application's tables.
type CatalogReader interface {
	// GetEvent returns the event with its tiers in catalog order, or
	// ErrNotFound.
	GetEvent(ctx context.Context, catalogEventID string) (*CatalogEvent, error)
}

// EventRegistry persists the on-chain mirror rows for event registrations.
type EventRegistry interface {
	// GetEventRegistration returns the mirror row for a catalog event, or
	// ErrNotFound when the event has not been registered.
	GetEventRegistration(ctx context.Context, catalogEventID string) (*EventRegistration, error)

	// CreateEventRegistration inserts a new mirror row. Returns
	// ErrAlreadyRegistered when the unique key on the catalog event id is
	// violated, which callers treat as a concurrent registration winning.
	CreateEventRegistration(ctx context.Context, reg *EventRegistration) error
}

// TierRegistry persists the on-chain mirror rows for tier registrations.
type TierRegistry interface {
	// GetTierRegistration returns the mirror row for one tier, or ErrNotFound.
	GetTierRegistration(ctx context.Context, catalogEventID, catalogTierID string) (*TierRegistration, error)

	// ListTierRegistrations returns all registered tiers of an event
	// ordered by on-chain tier index.
	ListTierRegistrations(ctx context.Context, catalogEventID string) ([]TierRegistration, error)

	// CreateTierRegistration inserts a new mirror row. Returns
	// ErrAlreadyRegistered on the (event, tier) unique key.
	CreateTierRegistration(ctx context.Context, reg *TierRegistration) error
}

// ArchivalRegistry persists archival records and their backing inventory
// units with the payment-ledger bookkeeping the audit trail requires.
type ArchivalRegistry interface {
	// GetArchivalRecord returns the archival record of a catalog event, or
	// ErrNotFound.
	GetArchivalRecord(ctx context.Context, catalogEventID string) (*ArchivalRecord, error)

	// GetArchivalRecordByID returns a record by its own identifier, or
	// ErrNotFound.
	GetArchivalRecordByID(ctx context.Context, recordID string) (*ArchivalRecord, error)

	// CreateReservedUnit inserts a pending inventory unit together with its
	// zero-amount payment entry in a single transaction. The row must
	// exist before any ledger interaction so a confirmed mint can always
	// be linked back to it.
	CreateReservedUnit(ctx context.Context, unit *InventoryUnit) error

	// MarkUnitFailed moves a unit and its payment entry to the terminal
	// failed state. Failed rows are kept, not deleted.
	MarkUnitFailed(ctx context.Context, unitID string) error

	// CompleteMint marks the unit minted, completes the payment entry and
	// inserts the archival record, all in one transaction.
	CompleteMint(ctx context.Context, rec *ArchivalRecord) error

	// Reveal flips the record's unit to the used state and appends an
	// audit scan entry. It reports false without error when the record was
	// already revealed.
	Reveal(ctx context.Context, recordID string) (bool, error)
}
