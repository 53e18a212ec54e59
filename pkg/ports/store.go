package ports

import (
	"context"

	"github.com/aescanero/alquimia/pkg/domain"
)

// HandleStore persists reference handles on durable storage so that
// monitor, restart and gather can run from a process other than the
// one that submitted. Implementations must be safe for concurrent use
// by independent operators; handles are written whole and never
// mutated in place.
type HandleStore interface {
	// Save persists a handle. Saving an existing ID overwrites it.
	Save(ctx context.Context, handle *domain.ReferenceHandle) error

	// Load retrieves a handle by ID. Returns domain.ErrHandleNotFound
	// when no such handle exists.
	Load(ctx context.Context, id string) (*domain.ReferenceHandle, error)

	// ListScope returns every stored handle filed under the scope,
	// used to deduplicate re-submissions at experiment granularity.
	ListScope(ctx context.Context, scope domain.Scope) ([]*domain.ReferenceHandle, error)

	// List returns the IDs of all stored handles.
	List(ctx context.Context) ([]string, error)

	// Delete removes a handle. Deleting a missing handle is a no-op.
	Delete(ctx context.Context, id string) error
}
