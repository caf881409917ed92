package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/interfaces"
)

// TierResult reports the outcome for one tier. Results for sibling tiers are
// independent: one tier failing never blocks the others.
type TierResult struct {
	TierID   string
	TierName string
	Success  bool

	// Set on success.
	OnChainTierIndex uint32
	TxRef            string

	// Set on failure.
	Err error
}

// TierRegistrar projects the active pricing tiers of an already-registered
// event onto the ledger, one call per tier.
type TierRegistrar struct {
	catalog interfaces.CatalogReader
	events  interfaces.EventRegistry
	tiers   interfaces.TierRegistry
	client  interfaces.ChainClient
	log     *slog.Logger

	confirmTimeout time.Duration
}

// NewTierRegistrar constructs a TierRegistrar with the default confirmation
// timeout.
func NewTierRegistrar(cat interfaces.CatalogReader, events interfaces.EventRegistry, tiers interfaces.TierRegistry, client interfaces.ChainClient, log *slog.Logger) *TierRegistrar {
	return &TierRegistrar{
		catalog:        cat,
		events:         events,
		tiers:          tiers,
		client:         client,
		log:            log,
		confirmTimeout: DefaultConfirmationTimeout,
	}
}

// SetConfirmationTimeout overrides the per-tier confirmation wait.
func (r *TierRegistrar) SetConfirmationTimeout(d time.Duration) {
	r.confirmTimeout = d
}

// RegisterTiers registers every active tier of the event, returning one
// result per tier. Tiers are processed in descending-price order so on-chain
// tier indices are deterministic: the highest-priced tier is always index 0,
// and an already-registered tier keeps occupying its index on retries.
//
// The only error return is for event-level problems (unregistered event,
// missing catalog row); per-tier failures are carried in the result list.
func (r *TierRegistrar) RegisterTiers(ctx context.Context, catalogEventID string) ([]TierResult, error) {
	reg, err := r.events.GetEventRegistration(ctx, catalogEventID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", catalogEventID, interfaces.ErrEventNotRegistered)
		}
		return nil, fmt.Errorf("check event registration: %w", err)
	}

	event, err := r.catalog.GetEvent(ctx, catalogEventID)
	if err != nil {
		return nil, fmt.Errorf("load catalog event %s: %w", catalogEventID, err)
	}

	active := make([]interfaces.PricingTier, 0, len(event.Tiers))
	for _, tier := range event.Tiers {
		if tier.Active {
			active = append(active, tier)
		}
	}
	// Descending price fixes index assignment regardless of catalog
	// insertion order. SliceStable keeps catalog order for equal prices.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].PriceMinorUnits > active[j].PriceMinorUnits
	})

	results := make([]TierResult, 0, len(active))
	for idx, tier := range active {
		results = append(results, r.registerOne(ctx, reg, tier, uint32(idx)))
	}
	return results, nil
}

// registerOne handles a single tier. The tier index is the tier's position in
// the sorted list, not a count of broadcasts: skipped idempotent tiers still
// occupy their index.
func (r *TierRegistrar) registerOne(ctx context.Context, reg *interfaces.EventRegistration, tier interfaces.PricingTier, index uint32) TierResult {
	result := TierResult{TierID: tier.ID, TierName: tier.Name}

	existing, err := r.tiers.GetTierRegistration(ctx, reg.CatalogEventID, tier.ID)
	if err == nil {
		result.Success = true
		result.OnChainTierIndex = existing.OnChainTierIndex
		result.TxRef = existing.TxRef
		return result
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		result.Err = fmt.Errorf("check tier registration: %w", err)
		return result
	}

	capacity := uint64(tier.Capacity)
	if capacity == 0 {
		capacity = DefaultTierCapacity
	}
	category := ClassifyTier(tier.Name)

	call := chain.CreateTierCall(reg.OnChainEventID, tier.Name, uint8(category), capacity, tier.PriceMinorUnits)

	if err := r.client.Simulate(ctx, call); err != nil {
		r.log.Warn("Tier simulation rejected",
			slog.String("tierID", tier.ID),
			slog.String("name", tier.Name),
			"err", err)
		result.Err = err
		return result
	}

	txHash, err := r.client.Execute(ctx, call)
	if err != nil {
		result.Err = fmt.Errorf("broadcast create tier: %w", err)
		return result
	}

	outcome, err := r.client.AwaitConfirmation(ctx, txHash, r.confirmTimeout)
	if err != nil {
		result.Err = fmt.Errorf("await tier confirmation: %w", err)
		return result
	}
	switch outcome {
	case interfaces.TxReverted:
		r.log.Warn("Tier registration reverted",
			slog.String("tierID", tier.ID),
			slog.String("tx", txHash.Hex()))
		result.Err = fmt.Errorf("tier %s: %w", tier.ID, interfaces.ErrTransactionReverted)
		return result
	case interfaces.TxTimedOut:
		result.Err = fmt.Errorf("tier %s (tx %s): %w", tier.ID, txHash.Hex(), interfaces.ErrConfirmationTimedOut)
		return result
	}

	row := &interfaces.TierRegistration{
		CatalogEventID:   reg.CatalogEventID,
		CatalogTierID:    tier.ID,
		OnChainTierIndex: index,
		TxRef:            txHash.Hex(),
		RegisteredAt:     time.Now().UTC(),
	}
	if err := r.tiers.CreateTierRegistration(ctx, row); err != nil {
		if errors.Is(err, interfaces.ErrAlreadyRegistered) {
			winner, rerr := r.tiers.GetTierRegistration(ctx, reg.CatalogEventID, tier.ID)
			if rerr == nil {
				result.Success = true
				result.OnChainTierIndex = winner.OnChainTierIndex
				result.TxRef = winner.TxRef
				return result
			}
			result.Err = fmt.Errorf("re-read after tier race: %w", rerr)
			return result
		}

		r.log.Error("Registry write failed after confirmed tier creation",
			slog.String("catalogEventID", reg.CatalogEventID),
			slog.String("tierID", tier.ID),
			slog.String("tx", txHash.Hex()),
			"err", err)
		result.Err = fmt.Errorf("tier %s confirmed as %s: %w", tier.ID, txHash.Hex(), interfaces.ErrStoreWriteAfterConfirm)
		return result
	}

	r.log.Info("Registered tier on-chain",
		slog.String("tierID", tier.ID),
		slog.String("name", tier.Name),
		slog.String("category", category.String()),
		slog.Uint64("index", uint64(index)),
		slog.String("tx", txHash.Hex()))

	result.Success = true
	result.OnChainTierIndex = index
	result.TxRef = txHash.Hex()
	return result
}
