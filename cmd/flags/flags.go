// Package flags holds the CLI flags and construction helpers shared by the
// chain-ticketing binaries.
package flags

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/venuelabs/chain-ticketing/chain"
	ticommon "github.com/venuelabs/chain-ticketing/common"
	"github.com/venuelabs/chain-ticketing/interfaces"
	"github.com/venuelabs/chain-ticketing/metadata"
	"github.com/venuelabs/chain-ticketing/signer"
)

// Chain flags.
var (
	RPCAddr = &cli.StringFlag{
		Name:  "rpc-addr",
		Value: "http://127.0.0.1:8545",
		Usage: "address to connect to RPC",
	}
	ContractAddress = &cli.StringFlag{
		Name:     "contract-address",
		Required: true,
		Usage:    "deployed ticketing contract address",
	}
	ChainID = &cli.Int64Flag{
		Name:  "chain-id",
		Value: 1,
		Usage: "chain ID for transaction signing",
	}
	ConfirmationTimeout = &cli.Int64Flag{
		Name:  "confirmation-timeout-seconds",
		Value: 300,
		Usage: "seconds to wait for a ledger confirmation",
	}
	CustodialAddress = &cli.StringFlag{
		Name:     "custodial-address",
		Required: true,
		Usage:    "address archival records are minted to",
	}
)

// Signer flags. Exactly one key source must be set.
var (
	SignerKeyHex = &cli.StringFlag{
		Name:    "signer-key",
		EnvVars: []string{"SIGNER_KEY"},
		Usage:   "hex-encoded signing key",
	}
	SignerKeyFile = &cli.StringFlag{
		Name:  "signer-key-file",
		Usage: "path to a file with the hex-encoded signing key",
	}
	VaultAddr = &cli.StringFlag{
		Name:    "vault-addr",
		EnvVars: []string{"VAULT_ADDR"},
		Usage:   "HashiCorp Vault address for the signing key",
	}
	VaultToken = &cli.StringFlag{
		Name:    "vault-token",
		EnvVars: []string{"VAULT_TOKEN"},
		Usage:   "Vault token",
	}
	VaultPath = &cli.StringFlag{
		Name:  "vault-path",
		Usage: "Vault KV v2 path of the signing key, e.g. ticketing/minter",
	}
)

// Metadata flags.
var MetadataBackends = &cli.StringSliceFlag{
	Name:  "metadata-backend",
	Usage: "metadata backend URI (file://, s3://, ipfs://); repeatable",
}

// Logging flags, shared verbatim between the binaries.
var (
	LogJSON = &cli.BoolFlag{
		Name:  "log-json",
		Value: false,
		Usage: "log in JSON format",
	}
	LogDebug = &cli.BoolFlag{
		Name:  "log-debug",
		Value: false,
		Usage: "log debug messages",
	}
	LogUID = &cli.BoolFlag{
		Name:  "log-uid",
		Value: false,
		Usage: "generate a uuid and add to all log messages",
	}
	LogService = &cli.StringFlag{
		Name:  "log-service",
		Value: ticommon.PackageName,
		Usage: "add 'service' tag to logs",
	}
)

// Logger builds the process logger from the logging flags.
func Logger(cCtx *cli.Context) *slog.Logger {
	logger := ticommon.SetupLogger(&ticommon.LoggingOpts{
		Debug:   cCtx.Bool(LogDebug.Name),
		JSON:    cCtx.Bool(LogJSON.Name),
		Service: cCtx.String(LogService.Name),
		Version: ticommon.Version,
	})
	if cCtx.Bool(LogUID.Name) {
		logger = logger.With("uid", uuid.Must(uuid.NewRandom()).String())
	}
	return logger
}

// ChainConfig resolves the signing key and assembles the ledger client
// configuration from the chain and signer flags.
func ChainConfig(ctx context.Context, cCtx *cli.Context) (*chain.Config, error) {
	contract := cCtx.String(ContractAddress.Name)
	if !common.IsHexAddress(contract) {
		return nil, errors.New("invalid contract address")
	}

	key, err := signer.Load(ctx, &signer.Config{
		KeyHex:     cCtx.String(SignerKeyHex.Name),
		KeyFile:    cCtx.String(SignerKeyFile.Name),
		VaultAddr:  cCtx.String(VaultAddr.Name),
		VaultToken: cCtx.String(VaultToken.Name),
		VaultPath:  cCtx.String(VaultPath.Name),
	})
	if err != nil {
		return nil, err
	}

	return &chain.Config{
		RPCEndpoint:     cCtx.String(RPCAddr.Name),
		ContractAddress: common.HexToAddress(contract),
		ChainID:         cCtx.Int64(ChainID.Name),
		SigningKey:      key,
	}, nil
}

// Custodial parses the custodial address flag.
func Custodial(cCtx *cli.Context) (common.Address, error) {
	raw := cCtx.String(CustodialAddress.Name)
	if !common.IsHexAddress(raw) {
		return common.Address{}, errors.New("invalid custodial address")
	}
	return common.HexToAddress(raw), nil
}

// ConfirmTimeout returns the configured confirmation wait.
func ConfirmTimeout(cCtx *cli.Context) time.Duration {
	return time.Duration(cCtx.Int64(ConfirmationTimeout.Name)) * time.Second
}

// MetadataBackend builds the metadata publisher from the backend URI flags.
// It returns nil when no backend is configured.
func MetadataBackend(cCtx *cli.Context, log *slog.Logger) (interfaces.StorageBackend, error) {
	uris := cCtx.StringSlice(MetadataBackends.Name)
	if len(uris) == 0 {
		return nil, nil
	}

	locations := make([]interfaces.StorageBackendLocation, len(uris))
	for i, uri := range uris {
		locations[i] = interfaces.StorageBackendLocation(uri)
	}
	return metadata.NewBackendFactory(log).MultiBackendFor(locations)
}
