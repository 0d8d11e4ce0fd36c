// Package store keeps built diagrams between requests so a later import can
// be reconciled against them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"erdgraph/internal/diagram"
)

// ErrNotFound is returned by Get for unknown diagram ids.
var ErrNotFound = errors.New("diagram not found")

type Store interface {
	Get(ctx context.Context, id string) (diagram.Diagram, error)
	Put(ctx context.Context, d diagram.Diagram) error
}

// MemoryStore keeps diagrams in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[string]diagram.Diagram
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: make(map[string]diagram.Diagram)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (diagram.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diagrams[id]
	if !ok {
		return diagram.Diagram{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, d diagram.Diagram) error {
	if d.ID == "" {
		return errors.New("diagram has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagrams[d.ID] = d.Clone()
	return nil
}

// RedisStore keeps diagrams as JSON documents in Redis. A zero TTL keeps
// them forever.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(id string) string {
	return "erdgraph:diagram:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (diagram.Diagram, error) {
	var d diagram.Diagram
	raw, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return d, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return d, fmt.Errorf("get diagram %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("decode diagram %s: %w", id, err)
	}
	return d, nil
}

func (s *RedisStore) Put(ctx context.Context, d diagram.Diagram) error {
	if d.ID == "" {
		return errors.New("diagram has no id")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode diagram %s: %w", d.ID, err)
	}
	return s.rdb.Set(ctx, key(d.ID), raw, s.ttl).Err()
}
