package warp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned for an unknown warp name.
	ErrNotFound = errors.New("warp not found")

	// ErrExists is returned when setting a warp name that is taken.
	ErrExists = errors.New("warp already exists")
)

// Warp is a named location.
type Warp struct {
	Name      string
	Owner     string
	CreatedAt time.Time
}

// Store keeps warps in memory. Names are case-insensitive.
type Store struct {
	mu    sync.RWMutex
	warps map[string]Warp
	now   func() time.Time
}

// NewStore creates an empty store. now defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{warps: make(map[string]Warp), now: now}
}

// Set creates a warp owned by owner.
func (s *Store) Set(name, owner string) (Warp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := s.warps[key]; exists {
		return Warp{}, fmt.Errorf("%w: %s", ErrExists, name)
	}

	w := Warp{Name: name, Owner: owner, CreatedAt: s.now()}
	s.warps[key] = w
	return w, nil
}

// Get returns the warp called name.
func (s *Store) Get(name string) (Warp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.warps[strings.ToLower(name)]
	if !ok {
		return Warp{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return w, nil
}

// Delete removes the warp called name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := s.warps[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(s.warps, key)
	return nil
}

// List returns every warp sorted by name.
func (s *Store) List() []Warp {
	s.mu.RLock()
	defer s.mu.RUnlock()

	warps := make([]Warp, 0, len(s.warps))
	for _, w := range s.warps {
		warps = append(warps, w)
	}
	sort.Slice(warps, func(i, j int) bool {
		return strings.ToLower(warps[i].Name) < strings.ToLower(warps[j].Name)
	})
	return warps
}

// Age returns how long ago w was set.
func (s *Store) Age(w Warp) time.Duration {
	return s.now().Sub(w.CreatedAt)
}
