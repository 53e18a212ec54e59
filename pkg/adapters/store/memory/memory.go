package memory

import (
	"context"
	"sync"

	"github.com/aescanero/alquimia/pkg/domain"
)

// HandleStore implements handle storage using an in-memory map.
// This is for testing purposes only.
type HandleStore struct {
	mu      sync.RWMutex
	handles map[string]*domain.ReferenceHandle
}

// NewHandleStore creates a new in-memory handle store.
func NewHandleStore() *HandleStore {
	return &HandleStore{handles: make(map[string]*domain.ReferenceHandle)}
}

// Save persists a handle, overwriting any previous version.
func (s *HandleStore) Save(ctx context.Context, handle *domain.ReferenceHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so later caller mutations don't leak into the store.
	stored := *handle
	stored.Tasks = append([]domain.TaskRef(nil), handle.Tasks...)
	s.handles[handle.ID] = &stored
	return nil
}

// Load retrieves a handle by ID.
func (s *HandleStore) Load(ctx context.Context, id string) (*domain.ReferenceHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handle, ok := s.handles[id]
	if !ok {
		return nil, domain.ErrHandleNotFound
	}
	loaded := *handle
	loaded.Tasks = append([]domain.TaskRef(nil), handle.Tasks...)
	return &loaded, nil
}

// ListScope returns every stored handle filed under the scope.
func (s *HandleStore) ListScope(ctx context.Context, scope domain.Scope) ([]*domain.ReferenceHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var handles []*domain.ReferenceHandle
	for _, handle := range s.handles {
		if handle.Scope == scope {
			loaded := *handle
			loaded.Tasks = append([]domain.TaskRef(nil), handle.Tasks...)
			handles = append(handles, &loaded)
		}
	}
	return handles, nil
}

// List returns the IDs of all stored handles.
func (s *HandleStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.handles))
	for id := range s.handles {
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes a handle. Deleting a missing handle is a no-op.
func (s *HandleStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.handles, id)
	return nil
}
