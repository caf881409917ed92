package catalog

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// MockReader mocks the interfaces.CatalogReader interface.
type MockReader struct {
	mock.Mock
}

// GetEvent mocks the GetEvent method.
func (m *MockReader) GetEvent(ctx context.Context, catalogEventID string) (*interfaces.CatalogEvent, error) {
	args := m.Called(ctx, catalogEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.CatalogEvent), args.Error(1)
}
