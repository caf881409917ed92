package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuelabs/chain-ticketing/catalog"
	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/coordinator"
	"github.com/venuelabs/chain-ticketing/interfaces"
	"github.com/venuelabs/chain-ticketing/registrydb"
)

const (
	testEventID = "5e9c2a7b-4f1d-4f4e-9a3b-8c7d6e5f4a3b"
	testTierID  = "a1111111-1111-4111-8111-111111111111"
)

var (
	testTxHash    = common.HexToHash("0x9a1d3c5e7f9b1d3c5e7f9b1d3c5e7f9b1d3c5e7f9b1d3c5e7f9b1d3c5e7f9b1d")
	testCustodial = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

type testEnv struct {
	cat    *catalog.MockReader
	client *chain.MockClient
	store  *registrydb.MemoryStore
	server *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.Default()

	env := &testEnv{
		cat:    &catalog.MockReader{},
		client: &chain.MockClient{},
		store:  registrydb.NewMemoryStore(),
	}

	handler := NewHandler(
		coordinator.NewEventRegistrar(env.cat, env.store, env.client, log),
		coordinator.NewTierRegistrar(env.cat, env.store, env.store, env.client, log),
		coordinator.NewArchivalMinter(env.cat, env.store, env.store, env.store, env.client, nil, log),
		coordinator.NewStatusReader(env.store, env.store, env.store),
		testCustodial,
		log,
	)

	server, err := New(&HTTPServerConfig{
		ListenAddr: "127.0.0.1:0",
		Log:        log,
	}, handler)
	require.NoError(t, err)
	env.server = server
	return env
}

func (env *testEnv) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	env.server.getRouter().ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) expectHappyChain() {
	env.client.On("ContractAddress").Return(common.HexToAddress("0x1000000000000000000000000000000000000001")).Maybe()
	env.client.On("ChainID").Return(int64(31337)).Maybe()
	env.client.On("Simulate", mock.Anything, mock.Anything).Return(nil)
	env.client.On("Execute", mock.Anything, mock.Anything).Return(testTxHash, nil)
	env.client.On("AwaitConfirmation", mock.Anything, testTxHash, mock.Anything).
		Return(interfaces.TxConfirmed, nil)
}

func testCatalogEvent() *interfaces.CatalogEvent {
	return &interfaces.CatalogEvent{
		ID:       testEventID,
		Title:    "Midnight Orchestra",
		VenueID:  "d4444444-4444-4444-8444-444444444444",
		StartsAt: time.Date(2026, 11, 5, 20, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 11, 5, 23, 30, 0, 0, time.UTC),
		Tiers: []interfaces.PricingTier{
			{ID: testTierID, Name: "General", PriceMinorUnits: 100, Capacity: 300, Active: true},
		},
	}
}

func TestHandleReconcile_FullPipeline(t *testing.T) {
	env := newTestEnv(t)
	env.expectHappyChain()
	env.cat.On("GetEvent", mock.Anything, testEventID).Return(testCatalogEvent(), nil)

	rec := env.request(http.MethodPost, "/api/admin/reconcile/"+testEventID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp reconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.NotNil(t, resp.Event)
	assert.False(t, resp.Event.AlreadyRegistered)
	assert.Equal(t, chain.DeriveOnChainEventID(testEventID), resp.Event.OnChainEventID)

	require.Len(t, resp.Tiers, 1)
	assert.True(t, resp.Tiers[0].Success)
	assert.Equal(t, uint32(0), resp.Tiers[0].OnChainTierIndex)

	require.NotNil(t, resp.Archival)
	assert.False(t, resp.Archival.AlreadyMinted)
	assert.NotEmpty(t, resp.Archival.TokenID)

	// A second run is a no-op against the ledger.
	rec = env.request(http.MethodPost, "/api/admin/reconcile/"+testEventID)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Event.AlreadyRegistered)
	assert.True(t, resp.Archival.AlreadyMinted)
	env.client.AssertNumberOfCalls(t, "Execute", 3)
}

func TestHandleReconcile_UnknownEvent(t *testing.T) {
	env := newTestEnv(t)
	env.client.On("ContractAddress").Return(common.Address{}).Maybe()
	env.client.On("ChainID").Return(int64(0)).Maybe()
	env.cat.On("GetEvent", mock.Anything, testEventID).Return(nil, interfaces.ErrNotFound)

	rec := env.request(http.MethodPost, "/api/admin/reconcile/"+testEventID)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp reconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "event", resp.FailedStage)
}

func TestHandleReconcile_InvalidEventID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/admin/reconcile/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReveal(t *testing.T) {
	env := newTestEnv(t)
	env.expectHappyChain()
	env.cat.On("GetEvent", mock.Anything, testEventID).Return(testCatalogEvent(), nil)

	rec := env.request(http.MethodPost, "/api/admin/reconcile/"+testEventID)
	require.Equal(t, http.StatusOK, rec.Code)

	record, err := env.store.GetArchivalRecord(context.Background(), testEventID)
	require.NoError(t, err)

	rec = env.request(http.MethodPost, "/api/admin/archival/"+record.ID+"/reveal")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revealed":true}`, rec.Body.String())

	rec = env.request(http.MethodPost, "/api/admin/archival/"+record.ID+"/reveal")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revealed":false}`, rec.Body.String())
}

func TestHandleRegistrationStatus(t *testing.T) {
	env := newTestEnv(t)

	// Unregistered event: empty mirror, not an error.
	rec := env.request(http.MethodGet, "/api/public/registration/"+testEventID)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp registrationStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Registered)
	assert.Empty(t, resp.Tiers)

	env.expectHappyChain()
	env.cat.On("GetEvent", mock.Anything, testEventID).Return(testCatalogEvent(), nil)
	require.Equal(t, http.StatusOK, env.request(http.MethodPost, "/api/admin/reconcile/"+testEventID).Code)

	rec = env.request(http.MethodGet, "/api/public/registration/"+testEventID)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Registered)
	require.Len(t, resp.Tiers, 1)
	require.NotNil(t, resp.Archival)
	assert.Equal(t, interfaces.ArchivalSlotLabel, resp.Archival.SlotLabel)
	assert.False(t, resp.Archival.Revealed)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.request(http.MethodGet, "/livez").Code)
	assert.Equal(t, http.StatusOK, env.request(http.MethodGet, "/readyz").Code)

	assert.Equal(t, http.StatusOK, env.request(http.MethodGet, "/drain").Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.request(http.MethodGet, "/readyz").Code)

	assert.Equal(t, http.StatusOK, env.request(http.MethodGet, "/undrain").Code)
	assert.Equal(t, http.StatusOK, env.request(http.MethodGet, "/readyz").Code)
}
