// internal/element/registry.go
package element

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Method is an entry of a node's method table.
type Method func(e *Engine, n *html.Node, args ...any) (any, error)

// extendMode is how method tables reach extended nodes.
type extendMode int

const (
	// modeSnapshot copies the merged table onto each node when it is extended.
	modeSnapshot extendMode = iota
	// modeElementPrototype resolves global methods live and snapshots the
	// tag overrides.
	modeElementPrototype
	// modeShared resolves everything live, so later registrations reach
	// nodes extended earlier.
	modeShared
)

// extension is the marker kept for every extended node.
type extension struct {
	tag      string
	methods  map[string]Method // per-instance snapshot, nil when resolved live
	tagTable map[string]Method // tag overrides snapshot for modeElementPrototype
}

type registry struct {
	mode     extendMode
	global   map[string]Method
	byTag    map[string]map[string]Method
	merged   map[string]map[string]Method
	extended *identityMap[*extension]
}

func newRegistry(mode extendMode) *registry {
	return &registry{
		mode:     mode,
		global:   make(map[string]Method),
		byTag:    make(map[string]map[string]Method),
		merged:   make(map[string]map[string]Method),
		extended: newIdentityMap[*extension](nil),
	}
}

// table returns the global table merged with the overrides of tag.
func (r *registry) table(tag string) map[string]Method {
	if m, ok := r.merged[tag]; ok {
		return m
	}
	m := maps.Clone(r.global)
	maps.Copy(m, r.byTag[tag])
	r.merged[tag] = m
	return m
}

func (r *registry) lookup(ext *extension, name string) (Method, bool) {
	var m Method
	switch r.mode {
	case modeShared:
		m = r.table(ext.tag)[name]
	case modeElementPrototype:
		if m = ext.tagTable[name]; m == nil {
			m = r.global[name]
		}
	default:
		m = ext.methods[name]
	}
	return m, m != nil
}

// Extend attaches the method table to n. It is idempotent and returns n
// itself; nil, non-element nodes and the window are returned unchanged.
func (e *Engine) Extend(n *html.Node) *html.Node {
	if !isElement(n) || n == e.host.Window() {
		return n
	}
	r := e.registry
	if _, ok := r.extended.get(n); ok {
		return n
	}
	ext := &extension{tag: strings.ToLower(n.Data)}
	switch r.mode {
	case modeElementPrototype:
		ext.tagTable = maps.Clone(r.byTag[ext.tag])
	case modeSnapshot:
		ext.methods = maps.Clone(r.table(ext.tag))
	}
	r.extended.put(n, ext)
	return n
}

func (e *Engine) extendAll(nodes []*html.Node) []*html.Node {
	for _, n := range nodes {
		e.Extend(n)
	}
	return nodes
}

// IsExtended reports whether n carries the extension marker.
func (e *Engine) IsExtended(n *html.Node) bool {
	if n == nil {
		return false
	}
	_, ok := e.registry.extended.get(n)
	return ok
}

// RegisterMethod adds fn to the global table, or to the tables of the given
// tags. Nodes extended per instance keep the table they were extended with.
func (e *Engine) RegisterMethod(name string, fn any, tags ...string) error {
	var m Method
	switch f := fn.(type) {
	case Method:
		m = f
	case func(*Engine, *html.Node, ...any) (any, error):
		m = f
	}
	if m == nil || name == "" {
		return fmt.Errorf("%w: %q (%T)", ErrNotCallable, name, fn)
	}

	r := e.registry
	if len(tags) == 0 {
		r.global[name] = m
	}
	for _, tag := range tags {
		tag = strings.ToLower(tag)
		if r.byTag[tag] == nil {
			r.byTag[tag] = make(map[string]Method)
		}
		r.byTag[tag][name] = m
	}
	clear(r.merged)
	clear(e.prototypes)
	e.logger.Debug("Registered element method.", zap.String("method", name), zap.Strings("tags", tags))
	return nil
}

// Invoke calls a method through the table of n.
func (e *Engine) Invoke(n *html.Node, name string, args ...any) (any, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrNotExtended)
	}
	ext, ok := e.registry.extended.get(n)
	if !ok {
		return nil, fmt.Errorf("%w: <%s>", ErrNotExtended, n.Data)
	}
	m, ok := e.registry.lookup(ext, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s on <%s>", ErrUnknownMethod, name, ext.tag)
	}
	return m(e, n, args...)
}

// Methods lists the method names n responds to, sorted.
func (e *Engine) Methods(n *html.Node) []string {
	if n == nil {
		return nil
	}
	ext, ok := e.registry.extended.get(n)
	if !ok {
		return nil
	}
	r := e.registry
	var names []string
	switch r.mode {
	case modeShared:
		names = slices.Collect(maps.Keys(r.table(ext.tag)))
	case modeElementPrototype:
		set := maps.Clone(r.global)
		maps.Copy(set, ext.tagTable)
		names = slices.Collect(maps.Keys(set))
	default:
		names = slices.Collect(maps.Keys(ext.methods))
	}
	slices.Sort(names)
	return names
}

// NewElement creates an extended element with the given attributes. Each tag
// is created once and cloned afterwards.
func (e *Engine) NewElement(tag string, attrs map[string]any) (*html.Node, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil, fmt.Errorf("%w: empty tag name", ErrInvalidArgument)
	}
	proto, ok := e.prototypes[tag]
	if !ok {
		proto = e.host.CreateElement(tag)
		e.prototypes[tag] = proto
	}
	n := e.host.CloneNode(proto, false)
	e.Extend(n)
	e.WriteAttributes(n, attrs)
	return n, nil
}
