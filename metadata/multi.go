package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// MultiBackend wraps several backends for redundancy: Store writes to every
// available backend, Fetch returns from the first one that has the content.
type MultiBackend struct {
	backends []interfaces.StorageBackend
	log      *slog.Logger
}

// NewMultiBackend creates a multi-storage backend over the given backends.
func NewMultiBackend(backends []interfaces.StorageBackend, log *slog.Logger) *MultiBackend {
	if log == nil {
		log = slog.Default()
	}
	return &MultiBackend{backends: backends, log: log}
}

// Store saves the document to all available backends. It succeeds when at
// least one backend accepted the write.
func (m *MultiBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	start := time.Now()
	id := interfaces.ComputeID(data)

	var stored int
	var errs []error
	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable for store", slog.String("backend", backend.Name()))
			continue
		}

		if _, err := backend.Store(ctx, data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Warn("Failed to store to backend",
				slog.String("backend", backend.Name()),
				slog.String("contentID", id.String()),
				"err", err)
			continue
		}
		stored++
	}

	if stored == 0 {
		return id, fmt.Errorf("all backends failed to store %s: %v", id.String(), errs)
	}

	m.log.Debug("Stored content",
		slog.String("contentID", id.String()),
		slog.Int("backends", stored),
		slog.Duration("duration", time.Since(start)))

	return id, nil
}

// Fetch retrieves the document from the first backend that has it.
func (m *MultiBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	var errs []error
	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			continue
		}

		data, err := backend.Fetch(ctx, id)
		if err == nil {
			return data, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
	}

	return nil, fmt.Errorf("all backends failed to fetch %s: %v", id.String(), errs)
}

// Available reports whether any wrapped backend is reachable.
func (m *MultiBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns a short identifier for logs.
func (m *MultiBackend) Name() string {
	return "multi"
}

// LocationURI returns the URIs of all wrapped backends.
func (m *MultiBackend) LocationURI() string {
	uri := "multi://"
	for i, backend := range m.backends {
		if i > 0 {
			uri += ","
		}
		uri += backend.LocationURI()
	}
	return uri
}
