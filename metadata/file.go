package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/venuelabs/chain-ticketing/interfaces"
)

// FileBackend stores metadata documents on the local filesystem, one file per
// content ID.
type FileBackend struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a file storage backend rooted at baseDir.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileBackend{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Store saves a document and returns its content ID.
func (b *FileBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	path := b.pathFor(id)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return id, fmt.Errorf("failed to write file: %w", err)
	}

	b.log.Debug("Stored content to file",
		slog.String("path", path),
		slog.Int("size", len(data)))

	return id, nil
}

// Fetch retrieves a document by content ID. Returns ErrContentNotFound when
// no file exists for the ID.
func (b *FileBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	path := b.pathFor(id)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, interfaces.ErrContentNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Available reports whether the base directory is accessible.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	return err == nil
}

// Name returns a short identifier for logs.
func (b *FileBackend) Name() string {
	return "file"
}

// LocationURI returns the canonical URI of this backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

func (b *FileBackend) pathFor(id interfaces.ContentID) string {
	return filepath.Join(b.baseDir, id.String()+".json")
}
