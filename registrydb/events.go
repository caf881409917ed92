package registrydb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// EventRepo implements interfaces.EventRegistry on Postgres.
type EventRepo struct {
	db *pgxpool.Pool
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *pgxpool.Pool) *EventRepo {
	return &EventRepo{db: db}
}

// GetEventRegistration returns the mirror row for a catalog event.
func (r *EventRepo) GetEventRegistration(ctx context.Context, catalogEventID string) (*interfaces.EventRegistration, error) {
	var reg interfaces.EventRegistration
	err := r.db.QueryRow(ctx,
		`SELECT catalog_event_id, onchain_event_id, contract_address, tx_ref, chain_id, registered_at
		 FROM event_registrations WHERE catalog_event_id = $1`,
		catalogEventID,
	).Scan(&reg.CatalogEventID, &reg.OnChainEventID, &reg.ContractAddress, &reg.TxRef, &reg.ChainID, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("get event registration: %w", err)
	}
	return &reg, nil
}

// CreateEventRegistration inserts the mirror row. The primary key on the
// catalog event id is the registration race guard: a conflict comes back as
// interfaces.ErrAlreadyRegistered.
func (r *EventRepo) CreateEventRegistration(ctx context.Context, reg *interfaces.EventRegistration) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO event_registrations (catalog_event_id, onchain_event_id, contract_address, tx_ref, chain_id, registered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.CatalogEventID, int64(reg.OnChainEventID), reg.ContractAddress, reg.TxRef, reg.ChainID, reg.RegisteredAt,
	)
	if err != nil {
		return mapInsertErr(err, "insert event registration")
	}
	return nil
}
