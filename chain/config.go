package chain

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Config carries everything the ledger client needs at construction time.
// It is read once and never mutated afterwards; there is no ambient global
// chain state anywhere in this module.
type Config struct {
	// RPCEndpoint is the JSON-RPC address of the chain node.
	RPCEndpoint string

	// ContractAddress is the deployed ticketing contract.
	ContractAddress common.Address

	// ChainID identifies the network for transaction signing.
	ChainID int64

	// SigningKey signs every broadcast transaction. All registrations and
	// mints originate from this custodial identity.
	SigningKey *ecdsa.PrivateKey
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.RPCEndpoint == "" {
		return errors.New("chain config: RPC endpoint is required")
	}
	if c.ContractAddress == (common.Address{}) {
		return errors.New("chain config: contract address is required")
	}
	if c.ChainID == 0 {
		return errors.New("chain config: chain ID is required")
	}
	if c.SigningKey == nil {
		return errors.New("chain config: signing key is required")
	}
	return nil
}
