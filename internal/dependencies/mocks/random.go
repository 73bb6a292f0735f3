package mocks

import (
	"sync"

	"github.com/mcoot/mogg-backend/internal/dependencies/random"
)

// MockRandom returns queued values from Intn, then Fallback once the queue is drained
type MockRandom struct {
	mu       sync.Mutex
	results  []int
	next     int
	Fallback int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or Fallback if none remain.
// Queued values are reduced modulo n so they always stay in range.
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 {
		return 0
	}
	if r.next >= len(r.results) {
		return r.Fallback % n
	}
	result := r.results[r.next]
	r.next++
	return result % n
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = nil
	r.next = 0
}
