// Package findings holds the destinations for confirmed detections.
package findings

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rmello/clamtap/pkg/types"
)

// Sink is an append-only destination for confirmed detections. Append is
// fire-and-forget from the caller's perspective; implementations must be
// safe for concurrent use.
type Sink interface {
	Append(category string, f types.Finding)
}

// entry pairs a finding with the category it was filed under.
type entry struct {
	Category string
	Finding  types.Finding
}

// Store is an in-memory Sink that also serves reads for the API and the
// end-of-run report.
type Store struct {
	mu      sync.RWMutex
	entries []entry
	byID    map[string]int
}

// NewStore creates an empty findings store.
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Append records a finding under the given category.
func (s *Store) Append(category string, f types.Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[f.ID] = len(s.entries)
	s.entries = append(s.entries, entry{Category: category, Finding: f})
}

// List returns findings filed under category, or all findings when
// category is empty, newest first.
func (s *Store) List(category string) []types.Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.Finding, 0, len(s.entries))
	for _, e := range s.entries {
		if category == "" || e.Category == category {
			result = append(result, e.Finding)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// Get returns the finding with the given ID.
func (s *Store) Get(id string) (types.Finding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return types.Finding{}, fmt.Errorf("finding %q not found", id)
	}
	return s.entries[i].Finding, nil
}

// Count returns the total number of recorded findings.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
