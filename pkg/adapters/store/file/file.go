package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
)

// HandleStore persists each reference handle as one JSON file in a
// directory. Writes go through a temp file and rename so a crash never
// leaves a half-written handle behind. Handles are written whole and
// never mutated in place, so concurrent readers from independent
// processes need no coordination.
type HandleStore struct {
	dir    string
	logger *zap.Logger
}

// NewHandleStore creates a file-backed handle store rooted at dir,
// creating the directory if needed.
func NewHandleStore(dir string, logger *zap.Logger) (*HandleStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create handle directory: %w", err)
	}
	return &HandleStore{dir: dir, logger: logger}, nil
}

// Save persists a handle, overwriting any previous version.
func (s *HandleStore) Save(ctx context.Context, handle *domain.ReferenceHandle) error {
	data, err := handle.Encode()
	if err != nil {
		return err
	}

	path := s.path(handle.ID)
	tmp, err := os.CreateTemp(s.dir, ".handle-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write handle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace handle file: %w", err)
	}

	s.logger.Debug("handle saved",
		zap.String("handle_id", handle.ID),
		zap.String("path", path))

	return nil
}

// Load retrieves a handle by ID.
func (s *HandleStore) Load(ctx context.Context, id string) (*domain.ReferenceHandle, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrHandleNotFound
		}
		return nil, fmt.Errorf("failed to read handle file: %w", err)
	}
	return domain.DecodeHandle(data)
}

// ListScope returns every stored handle filed under the scope.
func (s *HandleStore) ListScope(ctx context.Context, scope domain.Scope) ([]*domain.ReferenceHandle, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var handles []*domain.ReferenceHandle
	for _, id := range ids {
		handle, err := s.Load(ctx, id)
		if err != nil {
			// A handle deleted between List and Load is not an error.
			if errors.Is(err, domain.ErrHandleNotFound) {
				continue
			}
			return nil, err
		}
		if handle.Scope == scope {
			handles = append(handles, handle)
		}
	}
	return handles, nil
}

// List returns the IDs of all stored handles.
func (s *HandleStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read handle directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// Delete removes a handle. Deleting a missing handle is a no-op.
func (s *HandleStore) Delete(ctx context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete handle file: %w", err)
	}
	return nil
}

func (s *HandleStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
