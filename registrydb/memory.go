package registrydb

import (
	"context"
	"sort"
	"sync"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// MemoryStore implements EventRegistry, TierRegistry and ArchivalRegistry in
// memory. It backs coordinator tests and local development without Postgres,
// with the same unique-key semantics as the SQL implementation.
type MemoryStore struct {
	mu sync.Mutex

	events   map[string]*interfaces.EventRegistration          // catalog event id
	tiers    map[string]map[string]*interfaces.TierRegistration // event id -> tier id
	units    map[string]*interfaces.InventoryUnit               // unit id
	payments map[string]string                                  // unit id -> payment status
	records  map[string]*interfaces.ArchivalRecord              // record id
	byEvent  map[string]string                                  // catalog event id -> record id
	scans    []string                                           // unit ids with scan entries
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:   make(map[string]*interfaces.EventRegistration),
		tiers:    make(map[string]map[string]*interfaces.TierRegistration),
		units:    make(map[string]*interfaces.InventoryUnit),
		payments: make(map[string]string),
		records:  make(map[string]*interfaces.ArchivalRecord),
		byEvent:  make(map[string]string),
	}
}

// GetEventRegistration implements interfaces.EventRegistry.
func (s *MemoryStore) GetEventRegistration(ctx context.Context, catalogEventID string) (*interfaces.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.events[catalogEventID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

// CreateEventRegistration implements interfaces.EventRegistry.
func (s *MemoryStore) CreateEventRegistration(ctx context.Context, reg *interfaces.EventRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[reg.CatalogEventID]; ok {
		return interfaces.ErrAlreadyRegistered
	}
	cp := *reg
	s.events[reg.CatalogEventID] = &cp
	return nil
}

// GetTierRegistration implements interfaces.TierRegistry.
func (s *MemoryStore) GetTierRegistration(ctx context.Context, catalogEventID, catalogTierID string) (*interfaces.TierRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.tiers[catalogEventID][catalogTierID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

// ListTierRegistrations implements interfaces.TierRegistry.
func (s *MemoryStore) ListTierRegistrations(ctx context.Context, catalogEventID string) ([]interfaces.TierRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var regs []interfaces.TierRegistration
	for _, reg := range s.tiers[catalogEventID] {
		regs = append(regs, *reg)
	}
	// Ordered by on-chain index, matching the SQL implementation.
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].OnChainTierIndex < regs[j].OnChainTierIndex
	})
	return regs, nil
}

// CreateTierRegistration implements interfaces.TierRegistry.
func (s *MemoryStore) CreateTierRegistration(ctx context.Context, reg *interfaces.TierRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byTier, ok := s.tiers[reg.CatalogEventID]
	if !ok {
		byTier = make(map[string]*interfaces.TierRegistration)
		s.tiers[reg.CatalogEventID] = byTier
	}
	if _, ok := byTier[reg.CatalogTierID]; ok {
		return interfaces.ErrAlreadyRegistered
	}
	cp := *reg
	byTier[reg.CatalogTierID] = &cp
	return nil
}

// GetArchivalRecord implements interfaces.ArchivalRegistry.
func (s *MemoryStore) GetArchivalRecord(ctx context.Context, catalogEventID string) (*interfaces.ArchivalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recordID, ok := s.byEvent[catalogEventID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *s.records[recordID]
	return &cp, nil
}

// GetArchivalRecordByID implements interfaces.ArchivalRegistry.
func (s *MemoryStore) GetArchivalRecordByID(ctx context.Context, recordID string) (*interfaces.ArchivalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// CreateReservedUnit implements interfaces.ArchivalRegistry.
func (s *MemoryStore) CreateReservedUnit(ctx context.Context, unit *interfaces.InventoryUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *unit
	s.units[unit.ID] = &cp
	s.payments[unit.ID] = "pending"
	return nil
}

// MarkUnitFailed implements interfaces.ArchivalRegistry.
func (s *MemoryStore) MarkUnitFailed(ctx context.Context, unitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[unitID]
	if !ok {
		return interfaces.ErrNotFound
	}
	unit.Status = interfaces.UnitFailed
	s.payments[unitID] = "failed"
	return nil
}

// CompleteMint implements interfaces.ArchivalRegistry.
func (s *MemoryStore) CompleteMint(ctx context.Context, rec *interfaces.ArchivalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEvent[rec.CatalogEventID]; ok {
		return interfaces.ErrAlreadyRegistered
	}
	unit, ok := s.units[rec.InventoryUnitID]
	if !ok {
		return interfaces.ErrNotFound
	}
	unit.Status = interfaces.UnitMinted
	s.payments[rec.InventoryUnitID] = "completed"
	cp := *rec
	s.records[rec.ID] = &cp
	s.byEvent[rec.CatalogEventID] = rec.ID
	return nil
}

// Reveal implements interfaces.ArchivalRegistry.
func (s *MemoryStore) Reveal(ctx context.Context, recordID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	if !ok {
		return false, interfaces.ErrNotFound
	}
	if rec.Revealed {
		return false, nil
	}
	rec.Revealed = true
	if unit, ok := s.units[rec.InventoryUnitID]; ok {
		unit.Status = interfaces.UnitUsed
	}
	s.scans = append(s.scans, rec.InventoryUnitID)
	return true, nil
}

// Unit returns a copy of an inventory unit, for assertions in tests.
func (s *MemoryStore) Unit(unitID string) (interfaces.InventoryUnit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[unitID]
	if !ok {
		return interfaces.InventoryUnit{}, false
	}
	return *unit, true
}

// Units returns copies of all inventory units, for assertions in tests.
func (s *MemoryStore) Units() []interfaces.InventoryUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	units := make([]interfaces.InventoryUnit, 0, len(s.units))
	for _, unit := range s.units {
		units = append(units, *unit)
	}
	return units
}

// PaymentStatus returns the payment entry status for a unit.
func (s *MemoryStore) PaymentStatus(unitID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[unitID]
}

// ScanCount returns the number of audit scan entries recorded.
func (s *MemoryStore) ScanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scans)
}
