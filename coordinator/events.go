package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/interfaces"
)

// Defaults shared by the coordinators.
const (
	// DefaultConfirmationTimeout bounds the wait for a ledger confirmation.
	DefaultConfirmationTimeout = 5 * time.Minute

	// DefaultTierCapacity substitutes for a tier whose capacity the
	// organizer left unset.
	DefaultTierCapacity = 100

	// DefaultEventDuration is assumed when the catalog has no end time.
	DefaultEventDuration = 4 * time.Hour
)

// EventResult is the outcome of a successful event registration.
type EventResult struct {
	OnChainEventID uint64
	TxRef          string

	// AlreadyRegistered is true when the idempotency gate short-circuited
	// and no ledger call was made.
	AlreadyRegistered bool
}

// EventRegistrar projects one catalog event onto the ledger idempotently.
type EventRegistrar struct {
	catalog  interfaces.CatalogReader
	registry interfaces.EventRegistry
	client   interfaces.ChainClient
	log      *slog.Logger

	confirmTimeout time.Duration
}

// NewEventRegistrar constructs an EventRegistrar with the default
// confirmation timeout.
func NewEventRegistrar(cat interfaces.CatalogReader, reg interfaces.EventRegistry, client interfaces.ChainClient, log *slog.Logger) *EventRegistrar {
	return &EventRegistrar{
		catalog:        cat,
		registry:       reg,
		client:         client,
		log:            log,
		confirmTimeout: DefaultConfirmationTimeout,
	}
}

// SetConfirmationTimeout overrides how long RegisterEvent waits for a ledger
// confirmation before surfacing ErrConfirmationTimedOut.
func (r *EventRegistrar) SetConfirmationTimeout(d time.Duration) {
	r.confirmTimeout = d
}

// RegisterEvent registers the catalog event on the ledger exactly once and
// returns its on-chain identifier and transaction reference. A second call
// for the same event returns the stored result without touching the ledger.
func (r *EventRegistrar) RegisterEvent(ctx context.Context, catalogEventID string) (*EventResult, error) {
	// Idempotency gate: an existing mirror row means the ledger already has
	// this event.
	existing, err := r.registry.GetEventRegistration(ctx, catalogEventID)
	if err == nil {
		r.log.Debug("Event already registered",
			slog.String("catalogEventID", catalogEventID),
			slog.Uint64("onChainEventID", existing.OnChainEventID))
		return &EventResult{
			OnChainEventID:    existing.OnChainEventID,
			TxRef:             existing.TxRef,
			AlreadyRegistered: true,
		}, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("check existing registration: %w", err)
	}

	event, err := r.catalog.GetEvent(ctx, catalogEventID)
	if err != nil {
		return nil, fmt.Errorf("load catalog event %s: %w", catalogEventID, err)
	}

	onChainEventID := chain.DeriveOnChainEventID(catalogEventID)
	capacity := aggregateCapacity(event.Tiers)

	start := event.StartsAt.Unix()
	end := start + int64(DefaultEventDuration/time.Second)
	if !event.EndsAt.IsZero() {
		end = event.EndsAt.Unix()
	}

	call := chain.CreateEventCall(onChainEventID, start, end, capacity)

	if err := r.client.Simulate(ctx, call); err != nil {
		return nil, err
	}

	txHash, err := r.client.Execute(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("broadcast create event: %w", err)
	}

	outcome, err := r.client.AwaitConfirmation(ctx, txHash, r.confirmTimeout)
	if err != nil {
		return nil, fmt.Errorf("await create event confirmation: %w", err)
	}
	switch outcome {
	case interfaces.TxReverted:
		// Nothing persisted: the ledger has no event, the store has no
		// row, both sides agree. A retry broadcasts again.
		return nil, fmt.Errorf("create event %s: %w", catalogEventID, interfaces.ErrTransactionReverted)
	case interfaces.TxTimedOut:
		return nil, fmt.Errorf("create event %s (tx %s): %w", catalogEventID, txHash.Hex(), interfaces.ErrConfirmationTimedOut)
	}

	reg := &interfaces.EventRegistration{
		CatalogEventID:  catalogEventID,
		OnChainEventID:  onChainEventID,
		ContractAddress: r.client.ContractAddress().Hex(),
		TxRef:           txHash.Hex(),
		ChainID:         r.client.ChainID(),
		RegisteredAt:    time.Now().UTC(),
	}

	if err := r.registry.CreateEventRegistration(ctx, reg); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyRegistered) {
			// A concurrent registrar won the insert race. Its row is the
			// truth; ours duplicates the same on-chain event id, so
			// re-read and return the stored result.
			winner, rerr := r.registry.GetEventRegistration(ctx, catalogEventID)
			if rerr != nil {
				return nil, fmt.Errorf("re-read after registration race: %w", rerr)
			}
			r.log.Warn("Lost event registration race, using stored row",
				slog.String("catalogEventID", catalogEventID),
				slog.String("ourTx", txHash.Hex()),
				slog.String("storedTx", winner.TxRef))
			return &EventResult{
				OnChainEventID:    winner.OnChainEventID,
				TxRef:             winner.TxRef,
				AlreadyRegistered: true,
			}, nil
		}

		// The ledger confirmed but the store write failed. The ledger is
		// now ahead of the store and a blind retry would create the event
		// twice on-chain. Manual reconciliation required.
		r.log.Error("Registry write failed after confirmed event creation",
			slog.String("catalogEventID", catalogEventID),
			slog.Uint64("onChainEventID", onChainEventID),
			slog.String("tx", txHash.Hex()),
			"err", err)
		return nil, fmt.Errorf("event %s confirmed as %s: %w", catalogEventID, txHash.Hex(), interfaces.ErrStoreWriteAfterConfirm)
	}

	r.log.Info("Registered event on-chain",
		slog.String("catalogEventID", catalogEventID),
		slog.Uint64("onChainEventID", onChainEventID),
		slog.Uint64("capacity", capacity),
		slog.String("tx", txHash.Hex()))

	return &EventResult{OnChainEventID: onChainEventID, TxRef: txHash.Hex()}, nil
}

// aggregateCapacity sums tier capacities, substituting the default for tiers
// whose capacity is unset.
func aggregateCapacity(tiers []interfaces.PricingTier) uint64 {
	var total uint64
	for _, tier := range tiers {
		if tier.Capacity > 0 {
			total += uint64(tier.Capacity)
		} else {
			total += DefaultTierCapacity
		}
	}
	return total
}
