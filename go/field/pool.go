package field

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Internable is implemented by immutable values that can be hash-consed.
// Key returns a canonical encoding of the value's structure: two values
// are structurally equal iff their keys are equal.
type Internable interface {
	Key() string
}

// A Pool canonicalizes Internable values, so that structurally equal
// values share a single instance and can be compared by identity.
//
// The pool keeps strong references to every canonical instance until
// Reset is called, which should only happen between two analysis runs.
// A Pool is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[uint64][]Internable
	size    int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{buckets: make(map[uint64][]Internable)}
}

// Intern returns the canonical instance structurally equal to candidate,
// registering candidate as canonical if no such instance exists yet.
func (p *Pool) Intern(candidate Internable) Internable {
	key := candidate.Key()
	h := xxhash.Sum64String(key)

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.buckets[h] {
		if existing.Key() == key {
			return existing
		}
	}
	p.buckets[h] = append(p.buckets[h], candidate)
	p.size++
	return candidate
}

// Len returns the number of canonical instances held by the pool.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Reset drops every canonical instance. Values interned before the reset
// must not be compared by identity with values interned after it.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets = make(map[uint64][]Internable)
	p.size = 0
}
