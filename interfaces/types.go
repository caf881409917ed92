package interfaces

import (
	"time"
)

// CatalogEvent is the read-only projection of an event as the catalog
// application stores it. The coordinators never mutate catalog rows.
type CatalogEvent struct {
	ID       string
	Title    string
	VenueID  string
	StartsAt time.Time
	// EndsAt is zero when the organizer has not set an end time; the event
	// registration coordinator defaults it to StartsAt plus four hours.
	EndsAt time.Time
	Tiers  []PricingTier
}

// PricingTier is one price level of a catalog event. Price and capacity are
// immutable once the tier has been registered on-chain.
type PricingTier struct {
	ID              string
	Name            string
	PriceMinorUnits int64
	// Capacity is zero when the organizer left it unset; registration
	// substitutes a default per-tier capacity.
	Capacity int64
	Active   bool
}

// EventRegistration mirrors one confirmed "create event" ledger transaction.
// Rows are append-only: at most one per catalog event, never updated.
type EventRegistration struct {
	CatalogEventID  string
	OnChainEventID  uint64
	ContractAddress string
	TxRef           string
	ChainID         int64
	RegisteredAt    time.Time
}

// TierRegistration mirrors one confirmed "create tier" ledger transaction.
// OnChainTierIndex is 0-based and contiguous per event, assigned in
// descending-price order.
type TierRegistration struct {
	CatalogEventID   string
	CatalogTierID    string
	OnChainTierIndex uint32
	TxRef            string
	RegisteredAt     time.Time
}

// InventoryUnitStatus tracks the lifecycle of a reserved inventory unit.
type InventoryUnitStatus string

const (
	UnitPending InventoryUnitStatus = "pending"
	UnitMinted  InventoryUnitStatus = "minted"
	UnitFailed  InventoryUnitStatus = "failed"
	UnitUsed    InventoryUnitStatus = "used"
)

// InventoryUnit is the store-local reservation backing an archival record.
// Failed units stay in the table for audit, they are never deleted.
type InventoryUnit struct {
	ID             string
	CatalogEventID string
	CatalogTierID  string
	SlotLabel      string
	Status         InventoryUnitStatus
	CreatedAt      time.Time
}

// ArchivalRecord links a catalog event to its permanently-reserved archival
// mint. At most one exists per event and it is created only after the mint
// has confirmed on-chain.
type ArchivalRecord struct {
	ID              string
	CatalogEventID  string
	InventoryUnitID string
	SlotLabel       string
	TokenID         string
	TxRef           string
	MetadataURI     string
	Revealed        bool
	CreatedAt       time.Time
}

// ArchivalSlotLabel is the reserved slot assigned to every archival unit. It
// can never collide with sellable inventory, which always carries a real
// section/row/seat label.
const ArchivalSlotLabel = "archive/1/1"
