package dynload

import "sync"

// Namespace resolves logical names to the artifacts loaded resources
// published.
type Namespace interface {
	Lookup(name string) (any, bool)
}

// NamespaceFunc adapts a function to the Namespace interface.
type NamespaceFunc func(name string) (any, bool)

func (f NamespaceFunc) Lookup(name string) (any, bool) { return f(name) }

// Artifacts is an in-memory Namespace that injectors publish into.
// It is safe for concurrent use.
type Artifacts struct {
	mu    sync.RWMutex
	store map[string]any
}

// NewArtifacts returns an empty Artifacts namespace.
func NewArtifacts() *Artifacts {
	return &Artifacts{store: make(map[string]any)}
}

// Set publishes artifact under name, replacing any previous artifact.
func (a *Artifacts) Set(name string, artifact any) {
	a.mu.Lock()
	a.store[name] = artifact
	a.mu.Unlock()
}

// Lookup implements Namespace.
func (a *Artifacts) Lookup(name string) (any, bool) {
	a.mu.RLock()
	v, ok := a.store[name]
	a.mu.RUnlock()
	return v, ok
}
