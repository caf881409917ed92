package metadata

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestFileBackend_StoreFetch(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), testLogger())
	require.NoError(t, err)

	data := []byte(`{"name":"test document"}`)
	id, err := backend.Store(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ComputeID(data), id)

	got, err := backend.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = backend.Fetch(context.Background(), interfaces.ComputeID([]byte("other")))
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)

	assert.True(t, backend.Available(context.Background()))
}

// brokenBackend always fails, for multi-backend fallback tests.
type brokenBackend struct{ up bool }

func (b *brokenBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	return interfaces.ComputeID(data), errors.New("write refused")
}

func (b *brokenBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	return nil, interfaces.ErrContentNotFound
}

func (b *brokenBackend) Available(ctx context.Context) bool { return b.up }
func (b *brokenBackend) Name() string                       { return "broken" }
func (b *brokenBackend) LocationURI() string                { return "broken://" }

func TestMultiBackend_FallsBackPastFailures(t *testing.T) {
	fileBackend, err := NewFileBackend(t.TempDir(), testLogger())
	require.NoError(t, err)

	multi := NewMultiBackend([]interfaces.StorageBackend{
		&brokenBackend{up: true},
		fileBackend,
	}, testLogger())

	data := []byte(`{"name":"redundant"}`)
	id, err := multi.Store(context.Background(), data)
	require.NoError(t, err, "one healthy backend is enough")

	got, err := multi.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMultiBackend_AllFail(t *testing.T) {
	multi := NewMultiBackend([]interfaces.StorageBackend{
		&brokenBackend{up: true},
	}, testLogger())

	_, err := multi.Store(context.Background(), []byte("doc"))
	assert.Error(t, err)

	// An unavailable backend is skipped, leaving nothing to store to.
	multi = NewMultiBackend([]interfaces.StorageBackend{
		&brokenBackend{up: false},
	}, testLogger())
	_, err = multi.Store(context.Background(), []byte("doc"))
	assert.Error(t, err)
	assert.False(t, multi.Available(context.Background()))
}

func TestBackendFactory_Schemes(t *testing.T) {
	factory := NewBackendFactory(testLogger())

	backend, err := factory.BackendFor(interfaces.StorageBackendLocation("file://" + t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "file", backend.Name())

	backend, err = factory.BackendFor("ipfs://127.0.0.1:5001")
	require.NoError(t, err)
	assert.Equal(t, "ipfs", backend.Name())

	backend, err = factory.BackendFor("s3://bucket/metadata?region=us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "s3", backend.Name())

	_, err = factory.BackendFor("gopher://nope")
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestBuildArchivalDocument_Deterministic(t *testing.T) {
	event := &interfaces.CatalogEvent{
		ID:       "7b0c2a44-9f6e-4f6e-8d35-0a1b2c3d4e5f",
		Title:    "Midnight Orchestra",
		VenueID:  "c7a1b2c3-d4e5-4f60-8a9b-0c1d2e3f4a5b",
		StartsAt: time.Date(2026, 11, 5, 20, 0, 0, 0, time.UTC),
	}

	a, err := BuildArchivalDocument(event, "42")
	require.NoError(t, err)
	b, err := BuildArchivalDocument(event, "42")
	require.NoError(t, err)

	assert.Equal(t, a, b, "same inputs must produce the same document bytes")
	assert.Equal(t, interfaces.ComputeID(a), interfaces.ComputeID(b))
	assert.Contains(t, string(a), interfaces.ArchivalSlotLabel)
}
