package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/interfaces"
	"github.com/venuelabs/chain-ticketing/registrydb"
)

func TestRegisterEvent_IdempotentSingleBroadcast(t *testing.T) {
	f := newFixture(t)
	f.expectHappyPath()
	f.cat.On("GetEvent", mock.Anything, testEventID).
		Return(testCatalogEvent(tier(testTierA, "General", 5000, 100)), nil)

	r := NewEventRegistrar(f.cat, f.store, f.client, f.log)

	first, err := r.RegisterEvent(context.Background(), testEventID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyRegistered)
	assert.Equal(t, testTxHash.Hex(), first.TxRef)
	assert.Equal(t, chain.DeriveOnChainEventID(testEventID), first.OnChainEventID)

	second, err := r.RegisterEvent(context.Background(), testEventID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyRegistered)
	assert.Equal(t, first.OnChainEventID, second.OnChainEventID)
	assert.Equal(t, first.TxRef, second.TxRef)

	// The second call must short-circuit before any ledger work.
	f.client.AssertNumberOfCalls(t, "Execute", 1)
	f.client.AssertNumberOfCalls(t, "Simulate", 1)
}

func TestRegisterEvent_AggregatesCapacity(t *testing.T) {
	f := newFixture(t)
	f.expectChainIdentity()
	f.cat.On("GetEvent", mock.Anything, testEventID).
		Return(testCatalogEvent(
			tier(testTierA, "VIP", 30000, 50),
			tier(testTierB, "Premium", 15000, 100),
			tier(testTierC, "General", 5000, 300),
		), nil)

	matchCapacity := mock.MatchedBy(func(call interfaces.LedgerCall) bool {
		return call.Method == chain.MethodCreateEvent && call.Args[3] == uint64(450)
	})
	f.client.On("Simulate", mock.Anything, matchCapacity).Return(nil)
	f.client.On("Execute", mock.Anything, matchCapacity).Return(testTxHash, nil)
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxConfirmed, nil)

	_, err := NewEventRegistrar(f.cat, f.store, f.client, f.log).
		RegisterEvent(context.Background(), testEventID)
	require.NoError(t, err)
	f.client.AssertExpectations(t)
}

func TestRegisterEvent_DefaultsCapacityAndEndTime(t *testing.T) {
	f := newFixture(t)
	f.expectChainIdentity()

	event := testCatalogEvent(tier(testTierA, "General", 5000, 0))
	event.EndsAt = time.Time{}
	f.cat.On("GetEvent", mock.Anything, testEventID).Return(event, nil)

	wantEnd := uint64(event.StartsAt.Add(4 * time.Hour).Unix())
	matchDefaults := mock.MatchedBy(func(call interfaces.LedgerCall) bool {
		return call.Args[2] == wantEnd && call.Args[3] == uint64(DefaultTierCapacity)
	})
	f.client.On("Simulate", mock.Anything, matchDefaults).Return(nil)
	f.client.On("Execute", mock.Anything, matchDefaults).Return(testTxHash, nil)
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxConfirmed, nil)

	_, err := NewEventRegistrar(f.cat, f.store, f.client, f.log).
		RegisterEvent(context.Background(), testEventID)
	require.NoError(t, err)
	f.client.AssertExpectations(t)
}

func TestRegisterEvent_CatalogMissing(t *testing.T) {
	f := newFixture(t)
	f.cat.On("GetEvent", mock.Anything, testEventID).Return(nil, interfaces.ErrNotFound)

	_, err := NewEventRegistrar(f.cat, f.store, f.client, f.log).
		RegisterEvent(context.Background(), testEventID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	f.client.AssertNotCalled(t, "Simulate", mock.Anything, mock.Anything)
}

func TestRegisterEvent_SimulationFailureHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	f.expectChainIdentity()
	f.cat.On("GetEvent", mock.Anything, testEventID).
		Return(testCatalogEvent(tier(testTierA, "General", 5000, 100)), nil)
	f.client.On("Simulate", mock.Anything, mock.Anything).
		Return(interfaces.ErrSimulationFailed)

	_, err := NewEventRegistrar(f.cat, f.store, f.client, f.log).
		RegisterEvent(context.Background(), testEventID)
	assert.ErrorIs(t, err, interfaces.ErrSimulationFailed)

	f.client.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	_, err = f.store.GetEventRegistration(context.Background(), testEventID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound, "no mirror row after failed simulation")
}

func TestRegisterEvent_RevertLeavesBothSidesEmpty(t *testing.T) {
	f := newFixture(t)
	f.expectChainIdentity()
	f.cat.On("GetEvent", mock.Anything, testEventID).
		Return(testCatalogEvent(tier(testTierA, "General", 5000, 100)), nil)
	f.client.On("Simulate", mock.Anything, mock.Anything).Return(nil)
	f.client.On("Execute", mock.Anything, mock.Anything).Return(testTxHash, nil)
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxReverted, nil).Once()
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxConfirmed, nil).Once()

	r := NewEventRegistrar(f.cat, f.store, f.client, f.log)

	_, err := r.RegisterEvent(context.Background(), testEventID)
	assert.ErrorIs(t, err, interfaces.ErrTransactionReverted)

	_, err = f.store.GetEventRegistration(context.Background(), testEventID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound, "revert must not persist a mirror row")

	// A retry is not short-circuited: it broadcasts again and succeeds.
	result, err := r.RegisterEvent(context.Background(), testEventID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyRegistered)
	f.client.AssertNumberOfCalls(t, "Execute", 2)
}

func TestRegisterEvent_TimeoutIsNotRevert(t *testing.T) {
	f := newFixture(t)
	f.expectChainIdentity()
	f.cat.On("GetEvent", mock.Anything, testEventID).
		Return(testCatalogEvent(tier(testTierA, "General", 5000, 100)), nil)
	f.client.On("Simulate", mock.Anything, mock.Anything).Return(nil)
	f.client.On("Execute", mock.Anything, mock.Anything).Return(testTxHash, nil)
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxTimedOut, nil)

	_, err := NewEventRegistrar(f.cat, f.store, f.client, f.log).
		RegisterEvent(context.Background(), testEventID)
	assert.ErrorIs(t, err, interfaces.ErrConfirmationTimedOut)
	assert.NotErrorIs(t, err, interfaces.ErrTransactionReverted)
}

// racingStore simulates a concurrent registrar winning the insert: the first
// create hits the unique key after the gate already reported "not found".
type racingStore struct {
	*registrydb.MemoryStore
	winner interfaces.EventRegistration
	raced  bool
}

func (s *racingStore) CreateEventRegistration(ctx context.Context, reg *interfaces.EventRegistration) error {
	if !s.raced {
		s.raced = true
		w := s.winner
		_ = s.MemoryStore.CreateEventRegistration(ctx, &w)
		return interfaces.ErrAlreadyRegistered
	}
	return s.MemoryStore.CreateEventRegistration(ctx, reg)
}

func TestRegisterEvent_LosingRaceReturnsStoredRow(t *testing.T) {
	f := newFixture(t)
	f.expectHappyPath()
	f.cat.On("GetEvent", mock.Anything, testEventID).
		Return(testCatalogEvent(tier(testTierA, "General", 5000, 100)), nil)

	winnerTx := "0x1111111111111111111111111111111111111111111111111111111111111111"
	store := &racingStore{
		MemoryStore: f.store,
		winner: interfaces.EventRegistration{
			CatalogEventID: testEventID,
			OnChainEventID: chain.DeriveOnChainEventID(testEventID),
			TxRef:          winnerTx,
		},
	}

	result, err := NewEventRegistrar(f.cat, store, f.client, f.log).
		RegisterEvent(context.Background(), testEventID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyRegistered)
	assert.Equal(t, winnerTx, result.TxRef, "the winner's transaction is the stored truth")
}

func TestRegisterEvent_StoreWriteFailureAfterConfirm(t *testing.T) {
	f := newFixture(t)
	f.expectHappyPath()
	f.cat.On("GetEvent", mock.Anything, testEventID).
		Return(testCatalogEvent(tier(testTierA, "General", 5000, 100)), nil)

	store := &failingStore{MemoryStore: f.store}

	_, err := NewEventRegistrar(f.cat, store, f.client, f.log).
		RegisterEvent(context.Background(), testEventID)
	assert.ErrorIs(t, err, interfaces.ErrStoreWriteAfterConfirm)
}

type failingStore struct {
	*registrydb.MemoryStore
}

func (s *failingStore) CreateEventRegistration(ctx context.Context, reg *interfaces.EventRegistration) error {
	return context.DeadlineExceeded
}
