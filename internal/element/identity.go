// internal/element/identity.go
package element

import (
	"runtime"
	"sync"
	"weak"

	"golang.org/x/net/html"
)

// identityMap associates values with node identity without keeping nodes
// alive. Entries are dropped once the node is garbage collected. The mutex
// exists because cleanups run on the runtime's cleanup goroutine.
type identityMap[V any] struct {
	mu      sync.Mutex
	entries map[weak.Pointer[html.Node]]V
	onEvict func(V)
}

func newIdentityMap[V any](onEvict func(V)) *identityMap[V] {
	return &identityMap[V]{
		entries: make(map[weak.Pointer[html.Node]]V),
		onEvict: onEvict,
	}
}

func (m *identityMap[V]) get(n *html.Node) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[weak.Make(n)]
	return v, ok
}

func (m *identityMap[V]) put(n *html.Node, v V) {
	key := weak.Make(n)
	m.mu.Lock()
	_, existed := m.entries[key]
	m.entries[key] = v
	m.mu.Unlock()
	if !existed {
		runtime.AddCleanup(n, m.evict, key)
	}
}

func (m *identityMap[V]) evict(key weak.Pointer[html.Node]) {
	m.mu.Lock()
	v, ok := m.entries[key]
	delete(m.entries, key)
	m.mu.Unlock()
	if ok && m.onEvict != nil {
		m.onEvict(v)
	}
}

func (m *identityMap[V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
