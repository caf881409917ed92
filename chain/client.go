package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// Client implements interfaces.ChainClient against the ticketing contract
// over a JSON-RPC connection.
type Client struct {
	eth     *ethclient.Client
	abi     abi.ABI
	address common.Address
	from    common.Address
	chainID *big.Int
	cfg     *Config
	log     *slog.Logger
}

// Dial connects to the configured RPC endpoint and prepares the contract ABI.
func Dial(ctx context.Context, cfg *Config, log *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCEndpoint, err)
	}

	parsed, err := abi.JSON(strings.NewReader(ticketingABI))
	if err != nil {
		return nil, fmt.Errorf("parse ticketing ABI: %w", err)
	}

	return &Client{
		eth:     eth,
		abi:     parsed,
		address: cfg.ContractAddress,
		from:    crypto.PubkeyToAddress(cfg.SigningKey.PublicKey),
		chainID: big.NewInt(cfg.ChainID),
		cfg:     cfg,
		log:     log,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// ContractAddress returns the ticketing contract this client talks to.
func (c *Client) ContractAddress() common.Address {
	return c.address
}

// ChainID returns the network identifier used for signing.
func (c *Client) ChainID() int64 {
	return c.chainID.Int64()
}

// Simulate dry-runs a call via eth_call without broadcasting anything. Any
// rejection, including argument packing problems, is reported as
// ErrSimulationFailed so callers can abort before spending gas.
func (c *Client) Simulate(ctx context.Context, call interfaces.LedgerCall) error {
	data, err := c.abi.Pack(call.Method, call.Args...)
	if err != nil {
		return fmt.Errorf("%w: pack %s: %v", interfaces.ErrSimulationFailed, call.Method, err)
	}

	msg := ethereum.CallMsg{From: c.from, To: &c.address, Data: data}
	if _, err := c.eth.CallContract(ctx, msg, nil); err != nil {
		c.log.Debug("Ledger call simulation rejected",
			slog.String("call", call.String()),
			"err", err)
		return fmt.Errorf("%w: %s: %v", interfaces.ErrSimulationFailed, call.Method, err)
	}

	return nil
}

// Execute signs and broadcasts the call, returning the transaction hash. It
// does not wait for the transaction to be mined.
func (c *Client) Execute(ctx context.Context, call interfaces.LedgerCall) (common.Hash, error) {
	data, err := c.abi.Pack(call.Method, call.Args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s: %w", call.Method, err)
	}

	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	msg := ethereum.CallMsg{From: c.from, To: &c.address, Data: data}
	gasLimit, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas for %s: %w", call.Method, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce: nonce,
		To:    &c.address,
		// Headroom over the estimate; unused gas is refunded.
		Gas:      gasLimit + gasLimit/5,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.cfg.SigningKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign %s: %w", call.Method, err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast %s: %w", call.Method, err)
	}

	c.log.Info("Broadcast ledger transaction",
		slog.String("call", call.String()),
		slog.String("tx", signed.Hash().Hex()),
		slog.Uint64("nonce", nonce))

	return signed.Hash(), nil
}

// AwaitConfirmation blocks until the transaction is mined or the timeout
// elapses. A timeout is reported as TxTimedOut, never as a revert: the
// transaction may still confirm after we stop waiting, and callers must not
// broadcast a duplicate while the original is in flight.
func (c *Client) AwaitConfirmation(ctx context.Context, txHash common.Hash, timeout time.Duration) (interfaces.TxOutcome, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := bind.WaitMinedHash(waitCtx, c.eth, txHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.log.Warn("Ledger confirmation timed out",
				slog.String("tx", txHash.Hex()),
				slog.Duration("timeout", timeout))
			return interfaces.TxTimedOut, nil
		}
		return 0, fmt.Errorf("wait for %s: %w", txHash.Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		c.log.Warn("Ledger transaction reverted",
			slog.String("tx", txHash.Hex()),
			slog.Uint64("block", receipt.BlockNumber.Uint64()))
		return interfaces.TxReverted, nil
	}

	c.log.Debug("Ledger transaction confirmed",
		slog.String("tx", txHash.Hex()),
		slog.Uint64("block", receipt.BlockNumber.Uint64()),
		slog.Uint64("gasUsed", receipt.GasUsed))

	return interfaces.TxConfirmed, nil
}
