package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// Status summarizes the registry mirror for one catalog event. Nil fields
// mean the corresponding registration has not happened yet.
type Status struct {
	Event    *interfaces.EventRegistration
	Tiers    []interfaces.TierRegistration
	Archival *interfaces.ArchivalRecord
}

// StatusReader aggregates the three registry tables into a Status.
type StatusReader struct {
	events  interfaces.EventRegistry
	tiers   interfaces.TierRegistry
	archive interfaces.ArchivalRegistry
}

// NewStatusReader constructs a StatusReader.
func NewStatusReader(events interfaces.EventRegistry, tiers interfaces.TierRegistry, archive interfaces.ArchivalRegistry) *StatusReader {
	return &StatusReader{events: events, tiers: tiers, archive: archive}
}

// Fetch returns the current mirror state for a catalog event. An event with
// no registrations at all yields a Status with all fields empty, not an
// error callers must special-case.
func (r *StatusReader) Fetch(ctx context.Context, catalogEventID string) (*Status, error) {
	var status Status

	event, err := r.events.GetEventRegistration(ctx, catalogEventID)
	switch {
	case err == nil:
		status.Event = event
	case !errors.Is(err, interfaces.ErrNotFound):
		return nil, fmt.Errorf("fetch event registration: %w", err)
	}

	tiers, err := r.tiers.ListTierRegistrations(ctx, catalogEventID)
	if err != nil {
		return nil, fmt.Errorf("fetch tier registrations: %w", err)
	}
	status.Tiers = tiers

	rec, err := r.archive.GetArchivalRecord(ctx, catalogEventID)
	switch {
	case err == nil:
		status.Archival = rec
	case !errors.Is(err, interfaces.ErrNotFound):
		return nil, fmt.Errorf("fetch archival record: %w", err)
	}

	return &status, nil
}
