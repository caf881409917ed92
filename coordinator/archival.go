package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/interfaces"
	"github.com/venuelabs/chain-ticketing/metadata"
)

// ArchivalResult is the outcome of an archival mint.
type ArchivalResult struct {
	RecordID string
	TokenID  string
	TxRef    string

	// AlreadyMinted is true when an archival record existed and no ledger
	// call was made.
	AlreadyMinted bool
}

// ArchivalMinter creates the permanently-reserved archival record for an
// event: a zero-price inventory unit minted to the custodial address under
// the reserved slot label, revealed on demand for company record-keeping.
type ArchivalMinter struct {
	catalog interfaces.CatalogReader
	events  interfaces.EventRegistry
	tiers   interfaces.TierRegistry
	archive interfaces.ArchivalRegistry
	client  interfaces.ChainClient
	log     *slog.Logger

	// publisher, when set, stores the token metadata document before the
	// mint is broadcast so a confirmed mint always resolves to metadata.
	publisher interfaces.StorageBackend

	confirmTimeout time.Duration
}

// NewArchivalMinter constructs an ArchivalMinter. publisher may be nil when
// no metadata backend is configured.
func NewArchivalMinter(cat interfaces.CatalogReader, events interfaces.EventRegistry, tiers interfaces.TierRegistry, archive interfaces.ArchivalRegistry, client interfaces.ChainClient, publisher interfaces.StorageBackend, log *slog.Logger) *ArchivalMinter {
	return &ArchivalMinter{
		catalog:        cat,
		events:         events,
		tiers:          tiers,
		archive:        archive,
		client:         client,
		publisher:      publisher,
		log:            log,
		confirmTimeout: DefaultConfirmationTimeout,
	}
}

// SetConfirmationTimeout overrides the confirmation wait for the mint.
func (m *ArchivalMinter) SetConfirmationTimeout(d time.Duration) {
	m.confirmTimeout = d
}

// MintArchivalRecord mints the archival unit for an event to the custodial
// address, exactly once. A second call returns the stored identifiers without
// a second broadcast.
func (m *ArchivalMinter) MintArchivalRecord(ctx context.Context, catalogEventID string, onChainEventID uint64, custodial common.Address) (*ArchivalResult, error) {
	existing, err := m.archive.GetArchivalRecord(ctx, catalogEventID)
	if err == nil {
		return &ArchivalResult{
			RecordID:      existing.ID,
			TokenID:       existing.TokenID,
			TxRef:         existing.TxRef,
			AlreadyMinted: true,
		}, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("check existing archival record: %w", err)
	}

	reg, err := m.events.GetEventRegistration(ctx, catalogEventID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", catalogEventID, interfaces.ErrEventNotRegistered)
		}
		return nil, fmt.Errorf("check event registration: %w", err)
	}
	if reg.OnChainEventID != onChainEventID {
		return nil, fmt.Errorf("on-chain event id %d does not match registered id %d for event %s",
			onChainEventID, reg.OnChainEventID, catalogEventID)
	}

	// The archival record binds to the highest-priced registered tier,
	// which is index 0 by the tier registrar's ordering.
	registered, err := m.tiers.ListTierRegistrations(ctx, catalogEventID)
	if err != nil {
		return nil, fmt.Errorf("list registered tiers: %w", err)
	}
	if len(registered) == 0 {
		return nil, fmt.Errorf("event %s: %w", catalogEventID, interfaces.ErrNoTiersRegistered)
	}
	topTier := registered[0]

	// The local anchor rows come first: if the process dies right after the
	// broadcast succeeds, the confirmed mint can still be linked back here.
	unit := &interfaces.InventoryUnit{
		ID:             uuid.New().String(),
		CatalogEventID: catalogEventID,
		CatalogTierID:  topTier.CatalogTierID,
		SlotLabel:      interfaces.ArchivalSlotLabel,
		Status:         interfaces.UnitPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := m.archive.CreateReservedUnit(ctx, unit); err != nil {
		return nil, fmt.Errorf("reserve archival unit: %w", err)
	}

	tokenID := chain.DeriveTokenID(onChainEventID, interfaces.ArchivalSlotLabel)

	metadataURI, err := m.publishMetadata(ctx, catalogEventID, tokenID.String())
	if err != nil {
		m.failUnit(ctx, unit.ID)
		return nil, fmt.Errorf("publish archival metadata: %w", err)
	}

	call := chain.MintTicketCall(onChainEventID, custodial, interfaces.ArchivalSlotLabel, tokenID)

	if err := m.client.Simulate(ctx, call); err != nil {
		m.failUnit(ctx, unit.ID)
		return nil, err
	}

	txHash, err := m.client.Execute(ctx, call)
	if err != nil {
		m.failUnit(ctx, unit.ID)
		return nil, fmt.Errorf("broadcast archival mint: %w", err)
	}

	outcome, err := m.client.AwaitConfirmation(ctx, txHash, m.confirmTimeout)
	if err != nil {
		return nil, fmt.Errorf("await mint confirmation: %w", err)
	}
	switch outcome {
	case interfaces.TxReverted:
		m.failUnit(ctx, unit.ID)
		return nil, fmt.Errorf("archival mint for %s: %w", catalogEventID, interfaces.ErrTransactionReverted)
	case interfaces.TxTimedOut:
		// Ambiguous: the mint may still confirm. The unit stays pending so
		// an operator can resolve it; marking it failed here could
		// contradict a mint that lands a minute later.
		return nil, fmt.Errorf("archival mint for %s (tx %s): %w", catalogEventID, txHash.Hex(), interfaces.ErrConfirmationTimedOut)
	}

	rec := &interfaces.ArchivalRecord{
		ID:              uuid.New().String(),
		CatalogEventID:  catalogEventID,
		InventoryUnitID: unit.ID,
		SlotLabel:       interfaces.ArchivalSlotLabel,
		TokenID:         tokenID.String(),
		TxRef:           txHash.Hex(),
		MetadataURI:     metadataURI,
		CreatedAt:       time.Now().UTC(),
	}
	if err := m.archive.CompleteMint(ctx, rec); err != nil {
		m.log.Error("Registry write failed after confirmed archival mint",
			slog.String("catalogEventID", catalogEventID),
			slog.String("tokenID", rec.TokenID),
			slog.String("tx", txHash.Hex()),
			"err", err)
		return nil, fmt.Errorf("archival mint confirmed as %s: %w", txHash.Hex(), interfaces.ErrStoreWriteAfterConfirm)
	}

	m.log.Info("Minted archival record",
		slog.String("catalogEventID", catalogEventID),
		slog.String("recordID", rec.ID),
		slog.String("tokenID", rec.TokenID),
		slog.String("custodial", custodial.Hex()),
		slog.String("tx", txHash.Hex()))

	return &ArchivalResult{RecordID: rec.ID, TokenID: rec.TokenID, TxRef: rec.TxRef}, nil
}

// Reveal makes the archival record's artwork visible: the unit moves to the
// used state and an audit scan entry is appended. Revealing an
// already-revealed record is a no-op success reported as false. No ledger
// interaction, the visibility switch is store-local.
func (m *ArchivalMinter) Reveal(ctx context.Context, recordID string) (bool, error) {
	changed, err := m.archive.Reveal(ctx, recordID)
	if err != nil {
		return false, fmt.Errorf("reveal archival record %s: %w", recordID, err)
	}
	if changed {
		m.log.Info("Revealed archival record", slog.String("recordID", recordID))
	}
	return changed, nil
}

// publishMetadata stores the token metadata document and returns its content
// URI. With no publisher configured it is a no-op.
func (m *ArchivalMinter) publishMetadata(ctx context.Context, catalogEventID, tokenID string) (string, error) {
	if m.publisher == nil {
		return "", nil
	}

	event, err := m.catalog.GetEvent(ctx, catalogEventID)
	if err != nil {
		return "", fmt.Errorf("load catalog event for metadata: %w", err)
	}

	doc, err := metadata.BuildArchivalDocument(event, tokenID)
	if err != nil {
		return "", err
	}

	id, err := m.publisher.Store(ctx, doc)
	if err != nil {
		return "", err
	}

	m.log.Debug("Published archival metadata",
		slog.String("catalogEventID", catalogEventID),
		slog.String("contentID", id.String()))

	return "content://" + id.String(), nil
}

// failUnit moves the unit and its payment entry to the terminal failed
// state. Best effort: the audit trail matters but must not mask the original
// failure.
func (m *ArchivalMinter) failUnit(ctx context.Context, unitID string) {
	if err := m.archive.MarkUnitFailed(ctx, unitID); err != nil {
		m.log.Error("Failed to mark inventory unit as failed",
			slog.String("unitID", unitID),
			"err", err)
	}
}
