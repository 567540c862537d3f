// Package favorites holds the set of favorited track ids.
package favorites

import (
	"sort"
	"sync"
)

// Backend persists favorite ids between runs. A nil backend keeps the set
// in memory only.
type Backend interface {
	Load() ([]int, error)
	Save(ids []int) error
}

// Fresh is implemented by backends that can tell they have never been
// written. A fresh backend is seeded from the in-memory set instead of
// replacing it with nothing.
type Fresh interface {
	Fresh() bool
}

// Set is a concurrency-safe set of track ids.
type Set struct {
	ids   map[int]struct{}
	mutex sync.RWMutex
}

// New creates a set seeded with the given ids.
func New(seed ...int) *Set {
	s := &Set{ids: make(map[int]struct{}, len(seed))}
	for _, id := range seed {
		s.ids[id] = struct{}{}
	}
	return s
}

// Add inserts id. It reports whether the set changed.
func (s *Set) Add(id int) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Remove deletes id. It reports whether the set changed.
func (s *Set) Remove(id int) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	return true
}

// Toggle removes id if present, inserts it otherwise, and returns the new
// membership.
func (s *Set) Toggle(id int) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Contains reports whether id is a favorite.
func (s *Set) Contains(id int) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, ok := s.ids[id]
	return ok
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.ids)
}

// IDs returns the favorites in ascending order.
func (s *Set) IDs() []int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]int, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Replace swaps the whole membership, e.g. after loading from a backend.
func (s *Set) Replace(ids []int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ids = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}
