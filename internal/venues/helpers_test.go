package venues

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"karaoke/internal/session"
	"karaoke/pkg/cache"
)

type noopTimer struct{}

func (noopTimer) Stop() {}

// noopScheduler never fires, so countdowns stay at zero in handler tests
type noopScheduler struct{}

func (noopScheduler) Every(time.Duration, func()) session.Timer { return noopTimer{} }

// memoryStore is an in-memory Store with injectable failures
type memoryStore struct {
	mu      sync.Mutex
	states  map[string]session.VenueState
	loads   int
	saves   int
	loadErr error
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: make(map[string]session.VenueState)}
}

func (m *memoryStore) Load(_ context.Context, venueKey string) (*session.VenueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	state, ok := m.states[venueKey]
	if !ok {
		return nil, fmt.Errorf("venue %s: %w", venueKey, session.ErrNotFound)
	}
	clone := state.Clone()
	return &clone, nil
}

func (m *memoryStore) Save(_ context.Context, venueKey string, update session.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	state := m.states[venueKey]
	update.ApplyTo(&state)
	m.states[venueKey] = state
	return nil
}

func (m *memoryStore) CreateVenue(_ context.Context, venueKey, venueName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[venueKey]; !ok {
		m.states[venueKey] = session.VenueState{VenueName: venueName, Spots: session.InitializeSeats()}
	}
	return nil
}

func (m *memoryStore) state(venueKey string) (session.VenueState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[venueKey]
	return s, ok
}

// memoryCache is a cache.Service over a map
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) Exists(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *memoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	data, err := fetcher()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

func (c *memoryCache) Ping(context.Context) error { return nil }
