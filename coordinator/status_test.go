package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusReader_EmptyEvent(t *testing.T) {
	f := newFixture(t)

	status, err := NewStatusReader(f.store, f.store, f.store).
		Fetch(context.Background(), testEventID)
	require.NoError(t, err, "unregistered events are not an error")
	assert.Nil(t, status.Event)
	assert.Empty(t, status.Tiers)
	assert.Nil(t, status.Archival)
}

func TestStatusReader_FullMirror(t *testing.T) {
	f := newFixture(t)
	onChainID := seedRegisteredTiers(t, f)
	f.expectHappyPath()

	_, err := newTestMinter(f, nil).
		MintArchivalRecord(context.Background(), testEventID, onChainID, testCustodial)
	require.NoError(t, err)

	status, err := NewStatusReader(f.store, f.store, f.store).
		Fetch(context.Background(), testEventID)
	require.NoError(t, err)

	require.NotNil(t, status.Event)
	assert.Equal(t, onChainID, status.Event.OnChainEventID)
	require.Len(t, status.Tiers, 1)
	assert.Equal(t, testTierA, status.Tiers[0].CatalogTierID)
	require.NotNil(t, status.Archival)
	assert.False(t, status.Archival.Revealed)
}
