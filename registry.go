package dynload

import "sync"

// Registry tracks loads that are currently in flight, keyed by URL.
//
// Loaders sharing a Registry coalesce with each other: the check-then-register
// step of Load and the record-then-remove step of a settling load both run
// under the Registry's lock.
type Registry struct {
	mu      sync.Mutex
	pending map[string]*Pending
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]*Pending)}
}

// Get returns the in-flight load for url, if any.
func (r *Registry) Get(url string) (*Pending, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[url]
	return p, ok
}

// Register stores p as the in-flight load for url, replacing any existing
// entry.
func (r *Registry) Register(url string, p *Pending) {
	r.mu.Lock()
	r.pending[url] = p
	r.mu.Unlock()
}

// Remove forgets the in-flight load for url.
func (r *Registry) Remove(url string) {
	r.mu.Lock()
	delete(r.pending, url)
	r.mu.Unlock()
}

// Len returns the number of loads in flight.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

type claimState int

const (
	claimOwned claimState = iota
	claimJoined
	claimCached
)

// claim resolves url against the registry and c in one critical section. It
// returns the existing handle when joined, nil when cached, and a newly
// registered handle when owned.
func (r *Registry) claim(url string, c *Cache) (*Pending, claimState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pending[url]; ok {
		return p, claimJoined
	}
	if c.Has(url) {
		return nil, claimCached
	}
	p := newPending(url)
	r.pending[url] = p
	return p, claimOwned
}

// complete records url in c and drops p's entry atomically, so no caller
// observes url as neither cached nor in flight.
func (r *Registry) complete(url, name string, c *Cache, p *Pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Record(url, name)
	r.release(url, p)
}

// abandon drops p's entry after a failed chain.
func (r *Registry) abandon(url string, p *Pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(url, p)
}

// release deletes url only if it still maps to p, so a chain never removes a
// handle registered by someone else. r.mu must be held.
func (r *Registry) release(url string, p *Pending) {
	if r.pending[url] == p {
		delete(r.pending, url)
	}
}
