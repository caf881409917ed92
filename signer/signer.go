// Package signer loads the custodial signing credential the service uses for
// every ledger transaction. The key can come from a hex string, a key file,
// or a HashiCorp Vault KV v2 secret; it is loaded once at startup and the
// resulting key is immutable for the life of the process.
package signer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	vault "github.com/hashicorp/vault/api"
)

// Config selects the key source. Exactly one of KeyHex, KeyFile, or the
// Vault fields must be set.
type Config struct {
	// KeyHex is a hex-encoded secp256k1 private key, with or without 0x.
	KeyHex string

	// KeyFile is a path to a file containing the hex-encoded key.
	KeyFile string

	// VaultAddr, VaultToken and VaultPath locate the key in a Vault KV v2
	// mount. VaultPath is mount-relative, e.g. "ticketing/minter"; the key
	// material is read from the "key" field of the secret.
	VaultAddr  string
	VaultToken string
	VaultPath  string
}

// ErrNoKeySource is returned when the config names no key source at all.
var ErrNoKeySource = errors.New("signer: no key source configured")

// Load resolves the signing key from the configured source.
func Load(ctx context.Context, cfg *Config) (*ecdsa.PrivateKey, error) {
	switch {
	case cfg.KeyHex != "":
		return parseKey(cfg.KeyHex)
	case cfg.KeyFile != "":
		raw, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("signer: read key file: %w", err)
		}
		return parseKey(string(raw))
	case cfg.VaultAddr != "":
		return loadFromVault(ctx, cfg)
	default:
		return nil, ErrNoKeySource
	}
}

func parseKey(raw string) (*ecdsa.PrivateKey, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "0x")

	key, err := crypto.HexToECDSA(clean)
	if err != nil {
		return nil, fmt.Errorf("signer: parse private key: %w", err)
	}
	return key, nil
}

func loadFromVault(ctx context.Context, cfg *Config) (*ecdsa.PrivateKey, error) {
	if cfg.VaultPath == "" {
		return nil, errors.New("signer: vault path is required")
	}

	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.VaultAddr
	vaultCfg.Timeout = 30 * time.Second

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("signer: create vault client: %w", err)
	}
	client.SetToken(cfg.VaultToken)

	mount, path, found := strings.Cut(strings.Trim(cfg.VaultPath, "/"), "/")
	if !found {
		return nil, fmt.Errorf("signer: vault path %q must be mount/secret", cfg.VaultPath)
	}

	secret, err := client.KVv2(mount).Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("signer: read vault secret %s: %w", cfg.VaultPath, err)
	}

	raw, ok := secret.Data["key"].(string)
	if !ok {
		return nil, fmt.Errorf("signer: vault secret %s has no string \"key\" field", cfg.VaultPath)
	}

	return parseKey(raw)
}
