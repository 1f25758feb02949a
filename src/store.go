package bookster

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrPromptNotFound is returned by stores that hold no value for a key.
var ErrPromptNotFound = errors.New("prompt setting not found")

// ErrReadOnlyStore is returned when writing through a store that cannot be edited.
var ErrReadOnlyStore = errors.New("prompt store is read-only")

// PromptStore reads admin settings. Get returns the raw JSON value stored
// under key, for prompts {"prompt": "..."}.
type PromptStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// PromptWriter is implemented by stores the admin console can edit.
type PromptWriter interface {
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryStore keeps settings in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrPromptNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// CachedStore fronts a slower store with a short-lived in-memory cache.
// Misses are not cached so a new override shows up on the next read.
// A store built with a non-positive ttl passes every call through.
type CachedStore struct {
	store PromptStore
	cache *cache.Cache
}

func NewCachedStore(store PromptStore, ttl time.Duration) *CachedStore {
	c := &CachedStore{store: store}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if c.cache != nil {
		if v, found := c.cache.Get(key); found {
			return v.([]byte), nil
		}
	}
	v, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(key, v, cache.DefaultExpiration)
	}
	return v, nil
}

// Set writes through to the wrapped store when it is writable.
func (c *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	w, ok := c.store.(PromptWriter)
	if !ok {
		return ErrReadOnlyStore
	}
	if err := w.Set(ctx, key, value); err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Delete(key)
	}
	return nil
}

// Invalidate drops every cached value.
func (c *CachedStore) Invalidate() {
	if c.cache != nil {
		c.cache.Flush()
	}
}
