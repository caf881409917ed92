package coordinator

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/venuelabs/chain-ticketing/catalog"
	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/interfaces"
	"github.com/venuelabs/chain-ticketing/registrydb"
)

const (
	testEventID = "5e9c2a7b-4f1d-4f4e-9a3b-8c7d6e5f4a3b"
	testTierA   = "a1111111-1111-4111-8111-111111111111"
	testTierB   = "b2222222-2222-4222-8222-222222222222"
	testTierC   = "c3333333-3333-4333-8333-333333333333"
)

var (
	testTxHash    = common.HexToHash("0x9a1d3c5e7f9b1d3c5e7f9b1d3c5e7f9b1d3c5e7f9b1d3c5e7f9b1d3c5e7f9b1d")
	testContract  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testCustodial = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

type fixture struct {
	cat    *catalog.MockReader
	client *chain.MockClient
	store  *registrydb.MemoryStore
	log    *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		cat:    &catalog.MockReader{},
		client: &chain.MockClient{},
		store:  registrydb.NewMemoryStore(),
		log:    slog.Default(),
	}
}

// expectChainIdentity wires the static identity calls every coordinator may
// make on the client.
func (f *fixture) expectChainIdentity() {
	f.client.On("ContractAddress").Return(testContract).Maybe()
	f.client.On("ChainID").Return(int64(31337)).Maybe()
}

// expectHappyPath makes every simulate/execute/await succeed.
func (f *fixture) expectHappyPath() {
	f.expectChainIdentity()
	f.client.On("Simulate", mock.Anything, mock.Anything).Return(nil)
	f.client.On("Execute", mock.Anything, mock.Anything).Return(testTxHash, nil)
	f.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxConfirmed, nil)
}

func testCatalogEvent(tiers ...interfaces.PricingTier) *interfaces.CatalogEvent {
	return &interfaces.CatalogEvent{
		ID:       testEventID,
		Title:    "Midnight Orchestra",
		VenueID:  "d4444444-4444-4444-8444-444444444444",
		StartsAt: time.Date(2026, 11, 5, 20, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 11, 5, 23, 30, 0, 0, time.UTC),
		Tiers:    tiers,
	}
}

func tier(id, name string, price, capacity int64) interfaces.PricingTier {
	return interfaces.PricingTier{
		ID:              id,
		Name:            name,
		PriceMinorUnits: price,
		Capacity:        capacity,
		Active:          true,
	}
}
