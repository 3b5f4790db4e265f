// internal/element/probe/registry.go
package probe

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
)

// Name identifies a capability flag.
type Name string

// Func evaluates one probe against a host. It returns a bool or a string.
type Func func(h host.Host) any

// Probe is a one-shot environment test.
type Probe struct {
	Name Name
	// NeedsBody probes stay indeterminate until the document has a body.
	NeedsBody bool
	Run       Func
}

// Result is one row of a registry snapshot.
type Result struct {
	Name       Name
	Value      any
	Determined bool
	NeedsBody  bool
}

type slot struct {
	probe Probe
	eval  func() (any, bool)
}

// Registry memoizes probe results. Each probe runs until it first produces a
// determined value; its evaluator is then replaced by a constant.
// A Registry is not safe for concurrent use.
type Registry struct {
	host   host.Host
	logger *zap.Logger
	order  []Name
	slots  map[Name]*slot
}

func NewRegistry(h host.Host, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		host:   h,
		logger: logger.Named("probe"),
		slots:  make(map[Name]*slot),
	}
}

// NewDefaultRegistry returns a registry holding DefaultProbes.
func NewDefaultRegistry(h host.Host, logger *zap.Logger) *Registry {
	r := NewRegistry(h, logger)
	for _, p := range DefaultProbes() {
		// Default names are unique.
		_ = r.Register(p)
	}
	return r
}

// Register adds a probe. Names must be unique.
func (r *Registry) Register(p Probe) error {
	if p.Name == "" || p.Run == nil {
		return fmt.Errorf("probe: incomplete probe %q", p.Name)
	}
	if _, exists := r.slots[p.Name]; exists {
		return fmt.Errorf("probe: %q already registered", p.Name)
	}
	s := &slot{probe: p}
	s.eval = func() (any, bool) { return r.evaluate(s) }
	r.slots[p.Name] = s
	r.order = append(r.order, p.Name)
	return nil
}

func (r *Registry) evaluate(s *slot) (any, bool) {
	if s.probe.NeedsBody && r.host.Body() == nil {
		return nil, false
	}
	value := s.probe.Run(r.host)
	r.logger.Debug("Probe determined.", zap.String("probe", string(s.probe.Name)), zap.Any("value", value))
	s.eval = func() (any, bool) { return value, true }
	return value, true
}

// RunAll evaluates every probe that can be determined now.
func (r *Registry) RunAll() {
	for _, name := range r.order {
		r.slots[name].eval()
	}
}

// Value returns the flag value and whether it is determined. Unknown names
// are never determined.
func (r *Registry) Value(name Name) (any, bool) {
	s, ok := r.slots[name]
	if !ok {
		return nil, false
	}
	return s.eval()
}

// Bool returns a boolean flag. A string flag reads as true when non-empty.
func (r *Registry) Bool(name Name) (value, determined bool) {
	v, ok := r.Value(name)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		return t != "", true
	}
	return false, true
}

// String returns a string flag.
func (r *Registry) String(name Name) (string, bool) {
	v, ok := r.Value(name)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return fmt.Sprint(t), true
	}
	return "", true
}

// Snapshot reports every flag in registration order.
func (r *Registry) Snapshot() []Result {
	out := make([]Result, 0, len(r.order))
	for _, name := range r.order {
		s := r.slots[name]
		res := Result{Name: name, NeedsBody: s.probe.NeedsBody}
		res.Value, res.Determined = s.eval()
		out = append(out, res)
	}
	return out
}
