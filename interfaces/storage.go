package interfaces

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ContentID is a 32-byte SHA-256 hash uniquely identifying a published
// metadata document.
type ContentID [32]byte

// ComputeID calculates the content ID of a document.
func ComputeID(data []byte) ContentID {
	return ContentID(sha256.Sum256(data))
}

// NewContentIDFromHex parses a hex content ID, with or without 0x prefix.
func NewContentIDFromHex(source string) (ContentID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ContentID{}, errors.New("invalid content ID length: hex string must be 64 characters")
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	var id ContentID
	copy(id[:], raw)
	return id, nil
}

// String returns the hex representation.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 32-byte hash.
func (id ContentID) Bytes() []byte {
	return id[:]
}

// Equal compares two content IDs.
func (id ContentID) Equal(other ContentID) bool {
	return bytes.Equal(id[:], other[:])
}

// StorageBackendLocation is a URI describing where a metadata backend lives,
// for example file:///var/lib/ticketing or s3://bucket/prefix?region=us-east-1.
type StorageBackendLocation string

// Metadata backend errors.
var (
	// ErrContentNotFound indicates the requested document is not present in
	// the backend.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable indicates the backend cannot be reached.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI indicates a malformed backend location URI.
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageBackend stores and retrieves token metadata documents addressed by
// their content hash.
type StorageBackend interface {
	// Store saves a document and returns its content ID.
	Store(ctx context.Context, data []byte) (ContentID, error)

	// Fetch retrieves a document by content ID. Returns ErrContentNotFound
	// when absent.
	Fetch(ctx context.Context, id ContentID) ([]byte, error)

	// Available reports whether the backend is currently reachable.
	Available(ctx context.Context) bool

	// Name returns a short identifier for logs.
	Name() string

	// LocationURI returns the canonical URI of this backend.
	LocationURI() string
}
