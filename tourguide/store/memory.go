// Package store provides UserStore implementations.
package store

import (
	"sort"
	"sync"

	"github.com/warp/tourguide/tourguide"
)

// =============================================================================
// MEMORY STORE - In-memory user directory
// =============================================================================

// Memory maps user names to users. Entries are never replaced or removed,
// so callers may keep and mutate the *User they get back.
type Memory struct {
	mu    sync.RWMutex
	users map[string]*tourguide.User
}

var _ tourguide.UserStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]*tourguide.User),
	}
}

// Add inserts u if its name is free. A second Add for the same name is a no-op.
func (m *Memory) Add(u *tourguide.User) bool {
	if u == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Name]; ok {
		return false
	}
	m.users[u.Name] = u
	return true
}

func (m *Memory) Get(name string) (*tourguide.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[name]
	return u, ok
}

// All copies the current entries under the read lock, ordered by name.
// Users added after the copy are picked up by the next call.
func (m *Memory) All() []*tourguide.User {
	m.mu.RLock()
	result := make([]*tourguide.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, u)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
