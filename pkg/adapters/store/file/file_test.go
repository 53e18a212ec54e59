package file

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
)

func newTestStore(t *testing.T) *HandleStore {
	t.Helper()
	store, err := NewHandleStore(filepath.Join(t.TempDir(), "handles"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create handle store: %v", err)
	}
	return store
}

func newTestHandle(id string, scope domain.Scope) *domain.ReferenceHandle {
	return &domain.ReferenceHandle{
		ID:        id,
		Scope:     scope,
		Repeats:   3,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Tasks: []domain.TaskRef{
			{ID: "task-1", Experiment: "experiment-aaaa", Repeat: 0},
			{ID: "", Experiment: "experiment-aaaa", Repeat: 1, QueueError: "queue failed: backpressure"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := domain.Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}
	original := newTestHandle("handle-1", scope)

	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("failed to save handle: %v", err)
	}
	loaded, err := store.Load(ctx, "handle-1")
	if err != nil {
		t.Fatalf("failed to load handle: %v", err)
	}

	if loaded.ID != original.ID || loaded.Scope != original.Scope || loaded.Repeats != original.Repeats {
		t.Errorf("loaded handle differs: got %+v, want %+v", loaded, original)
	}
	if len(loaded.Tasks) != len(original.Tasks) {
		t.Fatalf("task count = %d, want %d", len(loaded.Tasks), len(original.Tasks))
	}
	for i := range original.Tasks {
		if loaded.Tasks[i] != original.Tasks[i] {
			t.Errorf("task ref %d differs: got %+v, want %+v", i, loaded.Tasks[i], original.Tasks[i])
		}
	}
}

func TestLoadMissingHandle(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load(context.Background(), "missing")
	if !errors.Is(err, domain.ErrHandleNotFound) {
		t.Errorf("want ErrHandleNotFound, got %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := domain.Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}

	first := newTestHandle("handle-1", scope)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("failed to save handle: %v", err)
	}
	second := newTestHandle("handle-1", scope)
	second.Repeats = 5
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("failed to overwrite handle: %v", err)
	}

	loaded, err := store.Load(ctx, "handle-1")
	if err != nil {
		t.Fatalf("failed to load handle: %v", err)
	}
	if loaded.Repeats != 5 {
		t.Errorf("repeats = %d, want 5", loaded.Repeats)
	}
}

func TestListScopeFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	solvation := domain.Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}
	binding := domain.Scope{Org: "openff", Campaign: "sage21", Project: "binding"}

	for i, scope := range []domain.Scope{solvation, solvation, binding} {
		h := newTestHandle(string(rune('a'+i)), scope)
		if err := store.Save(ctx, h); err != nil {
			t.Fatalf("failed to save handle %d: %v", i, err)
		}
	}

	handles, err := store.ListScope(ctx, solvation)
	if err != nil {
		t.Fatalf("failed to list scope: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("handle count = %d, want 2", len(handles))
	}
	for _, h := range handles {
		if h.Scope != solvation {
			t.Errorf("handle %s has scope %v, want %v", h.ID, h.Scope, solvation)
		}
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := domain.Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}

	if err := store.Save(ctx, newTestHandle("handle-1", scope)); err != nil {
		t.Fatalf("failed to save handle: %v", err)
	}
	if err := store.Delete(ctx, "handle-1"); err != nil {
		t.Fatalf("failed to delete handle: %v", err)
	}
	if _, err := store.Load(ctx, "handle-1"); !errors.Is(err, domain.ErrHandleNotFound) {
		t.Errorf("deleted handle still loads: %v", err)
	}
	if err := store.Delete(ctx, "handle-1"); err != nil {
		t.Errorf("deleting a missing handle should be a no-op: %v", err)
	}
}

func TestListIgnoresTempFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	scope := domain.Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}

	if err := store.Save(ctx, newTestHandle("handle-1", scope)); err != nil {
		t.Fatalf("failed to save handle: %v", err)
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("failed to list handles: %v", err)
	}
	if len(ids) != 1 || ids[0] != "handle-1" {
		t.Errorf("ids = %v, want [handle-1]", ids)
	}
}
