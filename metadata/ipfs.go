package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// IPFSBackend stores metadata documents on an IPFS node. Content IDs are
// still the SHA-256 of the document; the backend keeps the mapping to the
// IPFS CIDs returned by the node.
type IPFSBackend struct {
	shell       *shell.Shell
	apiURL      string
	log         *slog.Logger
	locationURI string

	mu   sync.Mutex
	cids map[interfaces.ContentID]string
}

// NewIPFSBackend creates an IPFS storage backend connected to the node API at
// host:port.
func NewIPFSBackend(host, port string, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	return &IPFSBackend{
		shell:       shell.NewShell(apiURL),
		apiURL:      apiURL,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/", apiURL),
		cids:        make(map[interfaces.ContentID]string),
	}, nil
}

// Store pins a document to the node and returns its content ID.
func (b *IPFSBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)

	if !b.shell.IsUp() {
		return id, interfaces.ErrBackendUnavailable
	}

	cid, err := b.shell.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return id, fmt.Errorf("failed to add content to IPFS: %w", err)
	}

	b.mu.Lock()
	b.cids[id] = cid
	b.mu.Unlock()

	b.log.Debug("Stored content to IPFS",
		slog.String("cid", cid),
		slog.String("contentID", id.String()),
		slog.Int("size", len(data)))

	return id, nil
}

// Fetch retrieves a document by content ID. Only documents stored through
// this backend instance can be resolved, since the CID mapping is local.
func (b *IPFSBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	b.mu.Lock()
	cid, ok := b.cids[id]
	b.mu.Unlock()
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}

	if !b.shell.IsUp() {
		return nil, interfaces.ErrBackendUnavailable
	}

	reader, err := b.shell.Cat(cid)
	if err != nil {
		if strings.Contains(err.Error(), "no link named") {
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to fetch content from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read content from IPFS: %w", err)
	}
	return data, nil
}

// Available reports whether the IPFS node answers.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a short identifier for logs.
func (b *IPFSBackend) Name() string {
	return "ipfs"
}

// LocationURI returns the canonical URI of this backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}
