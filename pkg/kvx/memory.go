package kvx

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemorySize bounds a memory store when no size is configured.
const DefaultMemorySize = 10_000

// MemoryConfig configures a Memory store.
type MemoryConfig struct {
	// Size is the maximum number of live entries.
	Size int

	// TTL caps how long any entry is retained regardless of its own
	// expiry. Zero disables the cap.
	TTL time.Duration

	// Now is the clock used to find expired entries when the store is full.
	Now func() time.Time
}

// Memory is a bounded in-process store backed by an expirable LRU.
//
// When full it drops expired entries and otherwise refuses new keys with
// ErrFull. It never evicts a live entry to make room, since a one-time
// token record that disappears early could be used twice.
type Memory struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, Entry]
	size  int
	now   func() time.Time
}

var (
	_ Store   = (*Memory)(nil)
	_ Claimer = (*Memory)(nil)
	_ Sweeper = (*Memory)(nil)
)

// NewMemory creates a memory store.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Size <= 0 {
		cfg.Size = DefaultMemorySize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	// One extra slot so Add never evicts; room is checked before adding.
	return &Memory{
		cache: expirable.NewLRU[string, Entry](cfg.Size+1, nil, cfg.TTL),
		size:  cfg.Size,
		now:   cfg.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (Entry, error) {
	e, ok := m.cache.Peek(key)
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *Memory) Put(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.makeRoom(key); err != nil {
		return err
	}
	m.cache.Add(key, e)
	return nil
}

func (m *Memory) PutIfAbsent(_ context.Context, key string, e Entry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache.Contains(key) {
		return false, nil
	}
	if err := m.makeRoom(key); err != nil {
		return false, err
	}
	m.cache.Add(key, e)
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.cache.Remove(key)
	return nil
}

// DeleteExpired drops every entry whose own expiry has passed.
func (m *Memory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sweep(now), nil
}

// Len returns the number of entries currently retained.
func (m *Memory) Len() int { return m.cache.Len() }

// makeRoom must be called with mu held.
func (m *Memory) makeRoom(key string) error {
	if m.cache.Contains(key) || m.cache.Len() < m.size {
		return nil
	}
	if m.sweep(m.now()) == 0 && m.cache.Len() >= m.size {
		return ErrFull
	}
	return nil
}

func (m *Memory) sweep(now time.Time) int {
	removed := 0
	for _, k := range m.cache.Keys() {
		e, ok := m.cache.Peek(k)
		if ok && e.Expired(now) {
			m.cache.Remove(k)
			removed++
		}
	}
	return removed
}
