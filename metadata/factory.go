package metadata

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// BackendFactory creates metadata storage backends from URI strings.
type BackendFactory struct {
	log *slog.Logger
}

// NewBackendFactory creates a factory instance.
func NewBackendFactory(log *slog.Logger) *BackendFactory {
	return &BackendFactory{log: log}
}

// BackendFor creates a storage backend from a location URI.
//
// Supported schemes:
//   - file:///path for local filesystem storage
//   - s3://bucket/prefix?region=r&endpoint=e&access_key=a&secret_key=s
//   - ipfs://host:port for an IPFS node API
func (f *BackendFactory) BackendFor(locationURI interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	u, err := url.Parse(string(locationURI))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return NewFileBackend(u.Path, f.log)
	case "s3":
		q := u.Query()
		return NewS3Backend(
			u.Host,
			strings.TrimPrefix(u.Path, "/"),
			q.Get("region"),
			q.Get("endpoint"),
			q.Get("access_key"),
			q.Get("secret_key"),
			f.log,
		)
	case "ipfs":
		port := u.Port()
		if port == "" {
			port = "5001"
		}
		return NewIPFSBackend(u.Hostname(), port, f.log)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// MultiBackendFor creates a redundant multi-backend from several URIs,
// skipping URIs that fail to construct. It errors only when no backend could
// be created.
func (f *BackendFactory) MultiBackendFor(locationURIs []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	backends := make([]interfaces.StorageBackend, 0, len(locationURIs))
	for _, uri := range locationURIs {
		backend, err := f.BackendFor(uri)
		if err != nil {
			f.log.Warn("Failed to create storage backend",
				slog.String("locationURI", string(uri)),
				"err", err)
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no usable metadata backends out of %d URIs", len(locationURIs))
	}
	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewMultiBackend(backends, f.log), nil
}
