package container

import (
	"reflect"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store maps (type, qualifier) to exactly one live instance.
//
// A Container owns one process store for Singleton entries; every request
// extent gets its own Store for Request entries. All operations run to
// completion under the store lock and never call back into user code.
type Store struct {
	mu      sync.RWMutex
	entries map[reflect.Type]map[string]any

	// collapses concurrent misses for the same key into one construction
	builds singleflight.Group
}

// Entry is one row of a Store snapshot.
type Entry struct {
	Type      reflect.Type
	Qualifier string
	Instance  any
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[reflect.Type]map[string]any)}
}

// Put inserts or overwrites the entry for (typ, qualifier).
func (s *Store) Put(typ reflect.Type, qualifier string, instance any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(typ, qualifier, instance)
}

// Get is a pure lookup; it never constructs.
func (s *Store) Get(typ reflect.Type, qualifier string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instance, ok := s.entries[typ][qualifier]
	return instance, ok
}

// Remove deletes (typ, qualifier). When it was the last qualifier for typ the
// type key goes too, so no empty inner maps survive.
func (s *Store) Remove(typ reflect.Type, qualifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(typ, qualifier)
}

// Swap evicts the current entry and inserts instance in one critical section.
func (s *Store) Swap(typ reflect.Type, qualifier string, instance any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(typ, qualifier)
	s.put(typ, qualifier, instance)
}

// Has reports whether typ has any entry at all, for any qualifier.
func (s *Store) Has(typ reflect.Type) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[typ]
	return ok
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[reflect.Type]map[string]any)
}

// Len returns the number of live entries across all types.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byQualifier := range s.entries {
		n += len(byQualifier)
	}
	return n
}

// Entries returns a snapshot sorted by type name, then qualifier.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for typ, byQualifier := range s.entries {
		for q, inst := range byQualifier {
			out = append(out, Entry{Type: typ, Qualifier: q, Instance: inst})
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Type.String(), out[j].Type.String()
		if a != b {
			return a < b
		}
		return out[i].Qualifier < out[j].Qualifier
	})
	return out
}

// put and remove must hold mu.Lock.
func (s *Store) put(typ reflect.Type, qualifier string, instance any) {
	byQualifier, ok := s.entries[typ]
	if !ok {
		byQualifier = make(map[string]any)
		s.entries[typ] = byQualifier
	}
	byQualifier[qualifier] = instance
}

func (s *Store) remove(typ reflect.Type, qualifier string) {
	byQualifier, ok := s.entries[typ]
	if !ok {
		return
	}
	delete(byQualifier, qualifier)
	if len(byQualifier) == 0 {
		delete(s.entries, typ)
	}
}
