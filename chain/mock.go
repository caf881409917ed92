package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// MockClient mocks the interfaces.ChainClient interface for coordinator tests.
type MockClient struct {
	mock.Mock
}

// Simulate mocks the Simulate method.
func (m *MockClient) Simulate(ctx context.Context, call interfaces.LedgerCall) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

// Execute mocks the Execute method.
func (m *MockClient) Execute(ctx context.Context, call interfaces.LedgerCall) (common.Hash, error) {
	args := m.Called(ctx, call)
	return args.Get(0).(common.Hash), args.Error(1)
}

// AwaitConfirmation mocks the AwaitConfirmation method.
func (m *MockClient) AwaitConfirmation(ctx context.Context, txHash common.Hash, timeout time.Duration) (interfaces.TxOutcome, error) {
	args := m.Called(ctx, txHash, timeout)
	return args.Get(0).(interfaces.TxOutcome), args.Error(1)
}

// ContractAddress mocks the ContractAddress method.
func (m *MockClient) ContractAddress() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

// ChainID mocks the ChainID method.
func (m *MockClient) ChainID() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}
