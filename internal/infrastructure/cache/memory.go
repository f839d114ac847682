package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"FormatConverter/internal/ports"
)

const (
	defaultCapacity = 10000
	defaultTTL      = 24 * time.Hour
)

// Memory is a bounded LRU cache with per-entry expiry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      *list.List
	capacity   int
	defaultTTL time.Duration
	now        func() time.Time
}

type entry struct {
	key       string
	value     string
	expiresAt time.Time
	element   *list.Element
}

var _ ports.TTLCache = (*Memory)(nil)
var _ ports.ExpiringStore = (*Memory)(nil)

// MemoryOption customizes a Memory cache.
type MemoryOption func(*Memory)

// WithClock replaces the time source; used by tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates a cache; non-positive capacity or TTL fall back to defaults.
func NewMemory(capacity int, ttl time.Duration, opts ...MemoryOption) *Memory {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	m := &Memory{
		entries:    make(map[string]*entry),
		order:      list.New(),
		capacity:   capacity,
		defaultTTL: ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the value for key unless it is missing or expired.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.remove(e)
		return "", false, nil
	}

	m.order.MoveToFront(e.element)
	return e.value, true, nil
}

// Set replaces the entry for key; a non-positive ttl uses the default.
func (m *Memory) Set(_ context.Context, key, content string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		m.remove(old)
	}

	for len(m.entries) >= m.capacity {
		m.evictOldest()
	}

	e := &entry{key: key, value: content, expiresAt: m.now().Add(ttl)}
	e.element = m.order.PushFront(e)
	m.entries[key] = e
	return nil
}

// Clear removes entries matching pattern: an exact key or a prefix ending in "*".
func (m *Memory) Clear(_ context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !strings.HasSuffix(pattern, "*") {
		if e, ok := m.entries[pattern]; ok {
			m.remove(e)
			return 1, nil
		}
		return 0, nil
	}

	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key, e := range m.entries {
		if strings.HasPrefix(key, prefix) {
			m.remove(e)
			removed++
		}
	}
	return removed, nil
}

// PurgeExpired drops every expired entry and reports how many were removed.
func (m *Memory) PurgeExpired(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var expired []*entry
	for _, e := range m.entries {
		if !now.Before(e.expiresAt) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		m.remove(e)
	}
	return len(expired), nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Must be called with lock held.
func (m *Memory) evictOldest() {
	oldest := m.order.Back()
	if oldest == nil {
		return
	}
	if e, ok := oldest.Value.(*entry); ok {
		m.remove(e)
	}
}

// Must be called with lock held.
func (m *Memory) remove(e *entry) {
	m.order.Remove(e.element)
	delete(m.entries, e.key)
}
