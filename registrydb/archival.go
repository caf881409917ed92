package registrydb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// ArchivalRepo implements interfaces.ArchivalRegistry on Postgres.
type ArchivalRepo struct {
	db *pgxpool.Pool
}

// NewArchivalRepo constructs an ArchivalRepo.
func NewArchivalRepo(db *pgxpool.Pool) *ArchivalRepo {
	return &ArchivalRepo{db: db}
}

const archivalColumns = `id, catalog_event_id, inventory_unit_id, slot_label, token_id, tx_ref, metadata_uri, revealed, created_at`

func scanArchival(row pgx.Row) (*interfaces.ArchivalRecord, error) {
	var rec interfaces.ArchivalRecord
	err := row.Scan(&rec.ID, &rec.CatalogEventID, &rec.InventoryUnitID, &rec.SlotLabel,
		&rec.TokenID, &rec.TxRef, &rec.MetadataURI, &rec.Revealed, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("scan archival record: %w", err)
	}
	return &rec, nil
}

// GetArchivalRecord returns the archival record of a catalog event.
func (r *ArchivalRepo) GetArchivalRecord(ctx context.Context, catalogEventID string) (*interfaces.ArchivalRecord, error) {
	return scanArchival(r.db.QueryRow(ctx,
		`SELECT `+archivalColumns+` FROM archival_records WHERE catalog_event_id = $1`,
		catalogEventID,
	))
}

// GetArchivalRecordByID returns an archival record by its own identifier.
func (r *ArchivalRepo) GetArchivalRecordByID(ctx context.Context, recordID string) (*interfaces.ArchivalRecord, error) {
	return scanArchival(r.db.QueryRow(ctx,
		`SELECT `+archivalColumns+` FROM archival_records WHERE id = $1`,
		recordID,
	))
}

// CreateReservedUnit inserts the pending inventory unit and its zero-amount
// payment entry in one transaction, so the mint has a local anchor before any
// ledger interaction.
func (r *ArchivalRepo) CreateReservedUnit(ctx context.Context, unit *interfaces.InventoryUnit) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve unit: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO inventory_units (id, catalog_event_id, catalog_tier_id, slot_label, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		unit.ID, unit.CatalogEventID, unit.CatalogTierID, unit.SlotLabel, unit.Status, unit.CreatedAt,
	)
	if err != nil {
		return mapInsertErr(err, "insert inventory unit")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payment_entries (id, inventory_unit_id, amount_minor, status)
		 VALUES ($1, $2, 0, 'pending')`,
		uuid.New().String(), unit.ID,
	)
	if err != nil {
		return fmt.Errorf("insert payment entry: %w", err)
	}

	return tx.Commit(ctx)
}

// MarkUnitFailed moves the unit and its payment entry to the terminal failed
// state. The rows stay for audit.
func (r *ArchivalRepo) MarkUnitFailed(ctx context.Context, unitID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin mark failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE inventory_units SET status = 'failed' WHERE id = $1`, unitID); err != nil {
		return fmt.Errorf("fail inventory unit: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE payment_entries SET status = 'failed' WHERE inventory_unit_id = $1`, unitID); err != nil {
		return fmt.Errorf("fail payment entry: %w", err)
	}

	return tx.Commit(ctx)
}

// CompleteMint records a confirmed archival mint: the unit becomes minted,
// the payment entry completes, and the archival record row is inserted, all
// atomically. The unique key on catalog_event_id guards the race.
func (r *ArchivalRepo) CompleteMint(ctx context.Context, rec *interfaces.ArchivalRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin complete mint: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE inventory_units SET status = 'minted' WHERE id = $1`, rec.InventoryUnitID); err != nil {
		return fmt.Errorf("mark unit minted: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE payment_entries SET status = 'completed' WHERE inventory_unit_id = $1`, rec.InventoryUnitID); err != nil {
		return fmt.Errorf("complete payment entry: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO archival_records (id, catalog_event_id, inventory_unit_id, slot_label, token_id, tx_ref, metadata_uri, revealed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.CatalogEventID, rec.InventoryUnitID, rec.SlotLabel, rec.TokenID, rec.TxRef, rec.MetadataURI, rec.Revealed, rec.CreatedAt,
	)
	if err != nil {
		return mapInsertErr(err, "insert archival record")
	}

	return tx.Commit(ctx)
}

// Reveal flips the record's inventory unit to used and appends an audit scan
// entry. Re-revealing is a no-op reported as false.
func (r *ArchivalRepo) Reveal(ctx context.Context, recordID string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin reveal: %w", err)
	}
	defer tx.Rollback(ctx)

	var unitID string
	var revealed bool
	err = tx.QueryRow(ctx,
		`SELECT inventory_unit_id, revealed FROM archival_records WHERE id = $1 FOR UPDATE`,
		recordID,
	).Scan(&unitID, &revealed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, interfaces.ErrNotFound
		}
		return false, fmt.Errorf("lock archival record: %w", err)
	}

	if revealed {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE archival_records SET revealed = TRUE WHERE id = $1`, recordID); err != nil {
		return false, fmt.Errorf("mark revealed: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE inventory_units SET status = 'used' WHERE id = $1`, unitID); err != nil {
		return false, fmt.Errorf("mark unit used: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO scan_entries (id, inventory_unit_id, note) VALUES ($1, $2, 'archival reveal')`,
		uuid.New().String(), unitID); err != nil {
		return false, fmt.Errorf("insert scan entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit reveal: %w", err)
	}
	return true, nil
}
