package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	key     Key
	resp    []byte
	expires time.Time
}

// Memory is an in-process LRU cache with per-entry TTL.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	order   *list.List
	entries map[Key]*list.Element
	now     func() time.Time
}

// NewMemory builds a memory cache holding at most max entries for ttl each.
func NewMemory(ttl time.Duration, max int) *Memory {
	if max <= 0 {
		max = 256
	}
	return &Memory{
		ttl:     ttl,
		max:     max,
		order:   list.New(),
		entries: make(map[Key]*list.Element),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, k Key) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.entries[k]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*memoryEntry)
	if m.now().After(ent.expires) {
		m.order.Remove(el)
		delete(m.entries, k)
		return nil, false
	}
	m.order.MoveToFront(el)
	return ent.resp, true
}

func (m *Memory) Put(_ context.Context, k Key, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[k]; ok {
		ent := el.Value.(*memoryEntry)
		ent.resp = raw
		ent.expires = m.now().Add(m.ttl)
		m.order.MoveToFront(el)
		return
	}
	el := m.order.PushFront(&memoryEntry{key: k, resp: raw, expires: m.now().Add(m.ttl)})
	m.entries[k] = el
	for m.order.Len() > m.max {
		back := m.order.Back()
		m.order.Remove(back)
		delete(m.entries, back.Value.(*memoryEntry).key)
	}
}
