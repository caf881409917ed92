package coordinator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/interfaces"
	"github.com/venuelabs/chain-ticketing/metadata"
)

// seedRegisteredTiers seeds an event registration plus one registered tier so
// archival tests start from a mintable state. Returns the on-chain event id.
func seedRegisteredTiers(t *testing.T, f *fixture) uint64 {
	t.Helper()
	reg := registerTestEvent(t, f)
	require.NoError(t, f.store.CreateTierRegistration(context.Background(), &interfaces.TierRegistration{
		CatalogEventID:   testEventID,
		CatalogTierID:    testTierA,
		OnChainTierIndex: 0,
		TxRef:            testTxHash.Hex(),
		RegisteredAt:     time.Now().UTC(),
	}))
	return reg.OnChainEventID
}

func newTestMinter(f *fixture, publisher interfaces.StorageBackend) *ArchivalMinter {
	return NewArchivalMinter(f.cat, f.store, f.store, f.store, f.client, publisher, f.log)
}

func TestMintArchivalRecord_SingleBroadcast(t *testing.T) {
	f := newFixture(t)
	onChainID := seedRegisteredTiers(t, f)
	f.expectHappyPath()

	minter := newTestMinter(f, nil)

	first, err := minter.MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	require.NoError(t, err)
	assert.False(t, first.AlreadyMinted)
	assert.Equal(t, testTxHash.Hex(), first.TxRef)

	wantToken := chain.DeriveTokenID(onChainID, interfaces.ArchivalSlotLabel)
	assert.Equal(t, wantToken.String(), first.TokenID)

	second, err := minter.MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	require.NoError(t, err)
	assert.True(t, second.AlreadyMinted)
	assert.Equal(t, first.RecordID, second.RecordID)
	assert.Equal(t, first.TokenID, second.TokenID)

	f.client.AssertNumberOfCalls(t, "Execute", 1)

	rec, err := f.store.GetArchivalRecord(context.Background(), testEventID)
	require.NoError(t, err)
	unit, ok := f.store.Unit(rec.InventoryUnitID)
	require.True(t, ok)
	assert.Equal(t, interfaces.UnitMinted, unit.Status)
	assert.Equal(t, interfaces.ArchivalSlotLabel, unit.SlotLabel)
	assert.Equal(t, "completed", f.store.PaymentStatus(rec.InventoryUnitID))
}

func TestMintArchivalRecord_RequiresRegisteredEvent(t *testing.T) {
	f := newFixture(t)

	_, err := newTestMinter(f, nil).
		MintArchivalRecord(context.Background(), testEventID, 42, testCustodial)
	assert.ErrorIs(t, err, interfaces.ErrEventNotRegistered)
	f.client.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestMintArchivalRecord_RequiresRegisteredTiers(t *testing.T) {
	f := newFixture(t)
	reg := registerTestEvent(t, f)

	_, err := newTestMinter(f, nil).
		MintArchivalRecord(context.Background(), testEventID, reg.OnChainEventID, testCustodial)
	assert.ErrorIs(t, err, interfaces.ErrNoTiersRegistered)
	f.client.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestMintArchivalRecord_RejectsMismatchedEventID(t *testing.T) {
	f := newFixture(t)
	onChainID := seedRegisteredTiers(t, f)

	_, err := newTestMinter(f, nil).
		MintArchivalRecord(context.Background(), testEventID, onChainID+1, testCustodial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
	f.client.AssertNotCalled(t, "Simulate", mock.Anything, mock.Anything)
}

func TestMintArchivalRecord_RevertFailsUnitAndRetryReservesFresh(t *testing.T) {
	f := newFixture(t)
	onChainID := seedRegisteredTiers(t, f)
	f.expectChainIdentity()

	f.client.On("Simulate", mock.Anything, mock.Anything).Return(nil)
	f.client.On("Execute", mock.Anything, mock.Anything).Return(testTxHash, nil)
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxReverted, nil).Once()
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxConfirmed, nil).Once()

	minter := newTestMinter(f, nil)

	_, err := minter.MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	assert.ErrorIs(t, err, interfaces.ErrTransactionReverted)

	units := f.store.Units()
	require.Len(t, units, 1)
	assert.Equal(t, interfaces.UnitFailed, units[0].Status)
	assert.Equal(t, "failed", f.store.PaymentStatus(units[0].ID))

	// The retry reserves a fresh unit rather than reusing the failed one.
	res, err := minter.MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	require.NoError(t, err)
	assert.False(t, res.AlreadyMinted)

	units = f.store.Units()
	require.Len(t, units, 2)
	rec, err := f.store.GetArchivalRecord(context.Background(), testEventID)
	require.NoError(t, err)
	assert.NotEqual(t, units[0].ID, rec.InventoryUnitID, "minted record uses a new unit")
}

func TestMintArchivalRecord_TimeoutLeavesUnitPending(t *testing.T) {
	f := newFixture(t)
	onChainID := seedRegisteredTiers(t, f)
	f.expectChainIdentity()

	f.client.On("Simulate", mock.Anything, mock.Anything).Return(nil)
	f.client.On("Execute", mock.Anything, mock.Anything).Return(testTxHash, nil)
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxTimedOut, nil)

	_, err := newTestMinter(f, nil).
		MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	assert.ErrorIs(t, err, interfaces.ErrConfirmationTimedOut)

	// The mint may still land on-chain, so the unit is not failed.
	units := f.store.Units()
	require.Len(t, units, 1)
	assert.Equal(t, interfaces.UnitPending, units[0].Status)
	assert.Equal(t, "pending", f.store.PaymentStatus(units[0].ID))
}

func TestMintArchivalRecord_SimulationFailureHasNoLedgerSideEffects(t *testing.T) {
	f := newFixture(t)
	onChainID := seedRegisteredTiers(t, f)
	f.expectChainIdentity()

	f.client.On("Simulate", mock.Anything, mock.Anything).
		Return(interfaces.ErrSimulationFailed)

	_, err := newTestMinter(f, nil).
		MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	assert.ErrorIs(t, err, interfaces.ErrSimulationFailed)

	f.client.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	units := f.store.Units()
	require.Len(t, units, 1)
	assert.Equal(t, interfaces.UnitFailed, units[0].Status)
}

func TestMintArchivalRecord_PublishesMetadataBeforeBroadcast(t *testing.T) {
	f := newFixture(t)
	onChainID := seedRegisteredTiers(t, f)
	f.expectHappyPath()
	f.cat.On("GetEvent", mock.Anything, testEventID).
		Return(testCatalogEvent(tier(testTierA, "VIP", 300, 50)), nil)

	backend, err := metadata.NewFileBackend(t.TempDir(), f.log)
	require.NoError(t, err)

	res, err := newTestMinter(f, backend).
		MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	require.NoError(t, err)

	rec, err := f.store.GetArchivalRecord(context.Background(), testEventID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rec.MetadataURI, "content://"))

	id, err := interfaces.NewContentIDFromHex(strings.TrimPrefix(rec.MetadataURI, "content://"))
	require.NoError(t, err)
	doc, err := backend.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Midnight Orchestra")
	assert.Contains(t, string(doc), res.TokenID)
}

func TestReveal_Idempotent(t *testing.T) {
	f := newFixture(t)
	onChainID := seedRegisteredTiers(t, f)
	f.expectHappyPath()

	minter := newTestMinter(f, nil)
	res, err := minter.MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	require.NoError(t, err)

	changed, err := minter.Reveal(context.Background(), res.RecordID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = minter.Reveal(context.Background(), res.RecordID)
	require.NoError(t, err)
	assert.False(t, changed, "second reveal is a no-op")

	assert.Equal(t, 1, f.store.ScanCount(), "exactly one scan entry")

	rec, err := f.store.GetArchivalRecordByID(context.Background(), res.RecordID)
	require.NoError(t, err)
	assert.True(t, rec.Revealed)
	unit, ok := f.store.Unit(rec.InventoryUnitID)
	require.True(t, ok)
	assert.Equal(t, interfaces.UnitUsed, unit.Status)
}

func TestReveal_UnknownRecord(t *testing.T) {
	f := newFixture(t)

	_, err := newTestMinter(f, nil).Reveal(context.Background(), "missing-record")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}
