package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/alquimia/pkg/domain"
)

const (
	handleKeyPrefix = "alquimia:handle:"
	scopeKeyPrefix  = "alquimia:scope:"
)

// HandleStore implements handle storage using Redis, for setups where
// several operators share one campaign. Each handle is stored as JSON
// under its own key; a per-scope set indexes handle IDs so scope
// lookups avoid a full key scan.
type HandleStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewHandleStore creates a new Redis handle store.
func NewHandleStore(client *redis.Client, logger *zap.Logger) *HandleStore {
	return &HandleStore{client: client, logger: logger}
}

// Save persists a handle and indexes it under its scope.
func (s *HandleStore) Save(ctx context.Context, handle *domain.ReferenceHandle) error {
	data, err := json.Marshal(handle)
	if err != nil {
		return fmt.Errorf("failed to marshal handle: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, handleKey(handle.ID), data, 0)
	pipe.SAdd(ctx, scopeKey(handle.Scope), handle.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save handle: %w", err)
	}

	s.logger.Debug("handle saved",
		zap.String("handle_id", handle.ID),
		zap.String("scope", handle.Scope.String()))

	return nil
}

// Load retrieves a handle by ID.
func (s *HandleStore) Load(ctx context.Context, id string) (*domain.ReferenceHandle, error) {
	data, err := s.client.Get(ctx, handleKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrHandleNotFound
		}
		return nil, fmt.Errorf("failed to get handle: %w", err)
	}

	var handle domain.ReferenceHandle
	if err := json.Unmarshal(data, &handle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal handle: %w", err)
	}
	return &handle, nil
}

// ListScope returns every stored handle filed under the scope.
func (s *HandleStore) ListScope(ctx context.Context, scope domain.Scope) ([]*domain.ReferenceHandle, error) {
	ids, err := s.client.SMembers(ctx, scopeKey(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scope index: %w", err)
	}

	handles := make([]*domain.ReferenceHandle, 0, len(ids))
	for _, id := range ids {
		handle, err := s.Load(ctx, id)
		if err != nil {
			if err == domain.ErrHandleNotFound {
				// Stale index entry; drop it and move on.
				s.client.SRem(ctx, scopeKey(scope), id)
				continue
			}
			return nil, err
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

// List returns the IDs of all stored handles.
func (s *HandleStore) List(ctx context.Context) ([]string, error) {
	var cursor uint64
	var ids []string

	for {
		batch, next, err := s.client.Scan(ctx, cursor, handleKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan handle keys: %w", err)
		}
		for _, key := range batch {
			if len(key) > len(handleKeyPrefix) {
				ids = append(ids, key[len(handleKeyPrefix):])
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}

// Delete removes a handle and its scope index entry.
func (s *HandleStore) Delete(ctx context.Context, id string) error {
	handle, err := s.Load(ctx, id)
	if err != nil {
		if err == domain.ErrHandleNotFound {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, handleKey(id))
	pipe.SRem(ctx, scopeKey(handle.Scope), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete handle: %w", err)
	}
	return nil
}

func handleKey(id string) string {
	return handleKeyPrefix + id
}

func scopeKey(scope domain.Scope) string {
	return scopeKeyPrefix + scope.String()
}
