// internal/element/storage.go
package element

import (
	"sync"

	"golang.org/x/net/html"
)

// Reserved storage keys for state the positioning helpers keep per node.
const (
	keyMadePositioned = "element:made-positioned"
	keyOverflow       = "element:overflow"
	keyOriginalLeft   = "element:original-left"
	keyOriginalTop    = "element:original-top"
	keyOriginalWidth  = "element:original-width"
	keyOriginalHeight = "element:original-height"
)

// windowUID is the UID of the window sentinel.
const windowUID uint64 = 0

// store is the per-node metadata table. Nodes get a UID on first access;
// entries live as long as their node does.
type store struct {
	mu      sync.Mutex
	next    uint64
	entries map[uint64]map[string]any
	uids    *identityMap[uint64]
}

func newStore() *store {
	s := &store{next: 1, entries: make(map[uint64]map[string]any)}
	s.uids = newIdentityMap(s.drop)
	return s
}

func (s *store) drop(uid uint64) {
	s.mu.Lock()
	delete(s.entries, uid)
	s.mu.Unlock()
}

func (s *store) uid(n *html.Node) uint64 {
	if uid, ok := s.uids.get(n); ok {
		return uid
	}
	s.mu.Lock()
	uid := s.next
	s.next++
	s.mu.Unlock()
	s.uids.put(n, uid)
	return uid
}

func (s *store) entry(uid uint64) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.entries[uid]
	if !ok {
		m = make(map[string]any)
		s.entries[uid] = m
	}
	return m
}

func (e *Engine) storable(n *html.Node) bool {
	return n != nil && (n.Type == html.ElementNode || n == e.host.Window())
}

// GetStorage returns the live metadata map of n, assigning a UID on first
// use. It returns nil for nil and non-element nodes.
func (e *Engine) GetStorage(n *html.Node) map[string]any {
	if !e.storable(n) {
		return nil
	}
	if n == e.host.Window() {
		return e.store.entry(windowUID)
	}
	return e.store.entry(e.store.uid(n))
}

// UID reports the UID of n without assigning one.
func (e *Engine) UID(n *html.Node) (uint64, bool) {
	if !e.storable(n) {
		return 0, false
	}
	if n == e.host.Window() {
		return windowUID, true
	}
	return e.store.uids.get(n)
}

func (e *Engine) Store(n *html.Node, key string, value any) *html.Node {
	if m := e.GetStorage(n); m != nil {
		m[key] = value
	}
	return n
}

// StoreAll merges values into the metadata of n.
func (e *Engine) StoreAll(n *html.Node, values map[string]any) *html.Node {
	if m := e.GetStorage(n); m != nil {
		for k, v := range values {
			m[k] = v
		}
	}
	return n
}

// Retrieve returns the value stored under key. When it is missing and a
// default is given, the default is stored and returned.
func (e *Engine) Retrieve(n *html.Node, key string, def ...any) any {
	m := e.GetStorage(n)
	if m == nil {
		return nil
	}
	if v, ok := m[key]; ok {
		return v
	}
	if len(def) == 0 {
		return nil
	}
	m[key] = def[0]
	return def[0]
}

func (e *Engine) forget(n *html.Node, key string) {
	if m := e.GetStorage(n); m != nil {
		delete(m, key)
	}
}
