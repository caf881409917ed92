package registrydb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// TierRepo implements interfaces.TierRegistry on Postgres.
type TierRepo struct {
	db *pgxpool.Pool
}

// NewTierRepo constructs a TierRepo.
func NewTierRepo(db *pgxpool.Pool) *TierRepo {
	return &TierRepo{db: db}
}

// GetTierRegistration returns the mirror row for one tier of an event.
func (r *TierRepo) GetTierRegistration(ctx context.Context, catalogEventID, catalogTierID string) (*interfaces.TierRegistration, error) {
	var reg interfaces.TierRegistration
	err := r.db.QueryRow(ctx,
		`SELECT catalog_event_id, catalog_tier_id, onchain_tier_index, tx_ref, registered_at
		 FROM tier_registrations
		 WHERE catalog_event_id = $1 AND catalog_tier_id = $2`,
		catalogEventID, catalogTierID,
	).Scan(&reg.CatalogEventID, &reg.CatalogTierID, &reg.OnChainTierIndex, &reg.TxRef, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("get tier registration: %w", err)
	}
	return &reg, nil
}

// ListTierRegistrations returns all registered tiers of an event ordered by
// their on-chain index.
func (r *TierRepo) ListTierRegistrations(ctx context.Context, catalogEventID string) ([]interfaces.TierRegistration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT catalog_event_id, catalog_tier_id, onchain_tier_index, tx_ref, registered_at
		 FROM tier_registrations
		 WHERE catalog_event_id = $1
		 ORDER BY onchain_tier_index`,
		catalogEventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tier registrations: %w", err)
	}
	defer rows.Close()

	var regs []interfaces.TierRegistration
	for rows.Next() {
		var reg interfaces.TierRegistration
		if err := rows.Scan(&reg.CatalogEventID, &reg.CatalogTierID, &reg.OnChainTierIndex, &reg.TxRef, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan tier registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// CreateTierRegistration inserts the mirror row for a confirmed tier.
func (r *TierRepo) CreateTierRegistration(ctx context.Context, reg *interfaces.TierRegistration) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tier_registrations (catalog_event_id, catalog_tier_id, onchain_tier_index, tx_ref, registered_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		reg.CatalogEventID, reg.CatalogTierID, reg.OnChainTierIndex, reg.TxRef, reg.RegisteredAt,
	)
	if err != nil {
		return mapInsertErr(err, "insert tier registration")
	}
	return nil
}
