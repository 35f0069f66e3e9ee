package solver

import (
	"container/list"
	"sync"

	"github.com/icheered/RummikubBot/internal/tile"
)

// memo caches one Result per inventory key. With capacity > 0 it evicts the
// least recently used entry; with capacity 0 it grows without bound for the
// life of the Solver. Safe for concurrent use.
type memo struct {
	mu       sync.Mutex
	capacity int
	entries  map[tile.Key]*list.Element
	order    *list.List // front = most recently used
}

type memoEntry struct {
	key tile.Key
	res Result
}

func newMemo(capacity int) *memo {
	if capacity < 0 {
		capacity = 0
	}
	return &memo{
		capacity: capacity,
		entries:  make(map[tile.Key]*list.Element),
		order:    list.New(),
	}
}

func (m *memo) get(k tile.Key) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.entries[k]
	if !ok {
		return Result{}, false
	}
	if m.capacity > 0 {
		m.order.MoveToFront(el)
	}
	return el.Value.(*memoEntry).res, true
}

func (m *memo) put(k tile.Key, r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[k]; ok {
		el.Value.(*memoEntry).res = r
		m.order.MoveToFront(el)
		return
	}
	m.entries[k] = m.order.PushFront(&memoEntry{key: k, res: r})
	if m.capacity > 0 && m.order.Len() > m.capacity {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoEntry).key)
	}
}

func (m *memo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *memo) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[tile.Key]*list.Element)
	m.order.Init()
}
