package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// Reader implements interfaces.CatalogReader over the catalog's Postgres
// tables using pgx directly, no ORM.
type Reader struct {
	db *pgxpool.Pool
}

// NewReader constructs a Reader on an existing connection pool.
func NewReader(db *pgxpool.Pool) *Reader {
	return &Reader{db: db}
}

// GetEvent returns the event with all its tiers in catalog order, or
// interfaces.ErrNotFound when no such event exists.
func (r *Reader) GetEvent(ctx context.Context, catalogEventID string) (*interfaces.CatalogEvent, error) {
	var ev interfaces.CatalogEvent
	var endsAt *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT id, title, venue_id, starts_at, ends_at
		 FROM events WHERE id = $1`,
		catalogEventID,
	).Scan(&ev.ID, &ev.Title, &ev.VenueID, &ev.StartsAt, &endsAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// A NULL ends_at stays the zero time; the event coordinator applies the
	// default duration.
	if endsAt != nil {
		ev.EndsAt = *endsAt
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name, price_minor_units, COALESCE(capacity, 0), active
		 FROM ticket_tiers
		 WHERE event_id = $1
		 ORDER BY position, id`,
		catalogEventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tier interfaces.PricingTier
		if err := rows.Scan(&tier.ID, &tier.Name, &tier.PriceMinorUnits, &tier.Capacity, &tier.Active); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		ev.Tiers = append(ev.Tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tiers: %w", err)
	}

	return &ev, nil
}
