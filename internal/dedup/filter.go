// Package dedup provides a scalable probabilistic set used to avoid
// resubmitting already-scanned resources. It may report false positives
// (an unseen resource treated as seen) but never false negatives, and it
// only ever grows for the life of the process.
package dedup

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	// DefaultCapacity is the expected cardinality of the first layer.
	DefaultCapacity = 10_000

	// DefaultFPRate is the target false-positive rate for the first layer.
	DefaultFPRate = 0.001

	// Each new layer doubles capacity and halves the false-positive rate,
	// keeping the compound rate bounded near the first layer's target.
	growthFactor    = 2
	tighteningRatio = 0.5
)

// Filter is a layered bloom filter that grows as cardinality increases.
// Safe for concurrent use. A Seen/MarkSeen race on the same key from two
// goroutines may admit one duplicate, which callers accept.
type Filter struct {
	mu     sync.RWMutex
	layers []*bloom.BloomFilter

	capacity uint    // capacity of the newest layer
	fpRate   float64 // false-positive rate of the newest layer
	count    uint    // adds into the newest layer
	total    uint64
}

// New creates a Filter sized for the given initial capacity and target
// false-positive rate. Zero values select the defaults.
func New(capacity uint, fpRate float64) *Filter {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultFPRate
	}
	return &Filter{
		layers:   []*bloom.BloomFilter{bloom.NewWithEstimates(capacity, fpRate)},
		capacity: capacity,
		fpRate:   fpRate,
	}
}

// Seen reports whether id was previously marked. False positives are
// possible; false negatives are not.
func (f *Filter) Seen(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, layer := range f.layers {
		if layer.TestString(id) {
			return true
		}
	}
	return false
}

// MarkSeen adds id to the set, growing a new layer when the current one
// reaches its sized capacity.
func (f *Filter) MarkSeen(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.count >= f.capacity {
		f.capacity *= growthFactor
		f.fpRate *= tighteningRatio
		f.layers = append(f.layers, bloom.NewWithEstimates(f.capacity, f.fpRate))
		f.count = 0
	}

	f.layers[len(f.layers)-1].AddString(id)
	f.count++
	f.total++
}

// Len returns the number of adds performed, duplicates included.
func (f *Filter) Len() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.total
}
