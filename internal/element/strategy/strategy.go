// internal/element/strategy/strategy.go
package strategy

import (
	"sort"

	"github.com/xkilldash9x/scalpel-dom/internal/element/probe"
)

// Flags is the read side of a probe registry.
type Flags interface {
	Bool(name probe.Name) (value, determined bool)
	String(name probe.Name) (string, bool)
}

// Guard decides whether a variant applies.
type Guard func(Flags) bool

// Flag holds when the named boolean flag is determined and true.
func Flag(name probe.Name) Guard {
	return func(f Flags) bool {
		v, ok := f.Bool(name)
		return ok && v
	}
}

// Equals holds when the named string flag is determined and equal to want.
func Equals(name probe.Name, want string) Guard {
	return func(f Flags) bool {
		v, ok := f.String(name)
		return ok && v == want
	}
}

// All holds when every guard holds.
func All(guards ...Guard) Guard {
	return func(f Flags) bool {
		for _, g := range guards {
			if !g(f) {
				return false
			}
		}
		return true
	}
}

// Any holds when at least one guard holds.
func Any(guards ...Guard) Guard {
	return func(f Flags) bool {
		for _, g := range guards {
			if g(f) {
				return true
			}
		}
		return false
	}
}

// Variant is one implementation of an operation. A nil When marks the
// general fallback.
type Variant[F any] struct {
	Name string
	When Guard
	Impl F
}

// Binding records which variant serves an operation.
type Binding struct {
	Op      string
	Variant string
	Pending bool
}

// Table records the bindings made at startup.
type Table struct {
	bindings map[string]Binding
}

func NewTable() *Table {
	return &Table{bindings: make(map[string]Binding)}
}

func (t *Table) record(b Binding) {
	t.bindings[b.Op] = b
}

// Lookup returns the binding of op.
func (t *Table) Lookup(op string) (Binding, bool) {
	b, ok := t.bindings[op]
	return b, ok
}

// Bindings lists every binding sorted by operation name.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, 0, len(t.bindings))
	for _, b := range t.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Op < out[j].Op })
	return out
}

func choose[F any](flags Flags, variants []Variant[F]) Variant[F] {
	for _, v := range variants {
		if v.When != nil && v.When(flags) {
			return v
		}
	}
	return variants[len(variants)-1]
}

// Select binds op to the first variant whose guard holds, or to the last
// variant when none does. It panics without variants.
func Select[F any](t *Table, flags Flags, op string, variants ...Variant[F]) F {
	if len(variants) == 0 {
		panic("strategy: no variants for " + op)
	}
	v := choose(flags, variants)
	t.record(Binding{Op: op, Variant: v.Name})
	return v.Impl
}

// Slot is an operation whose flags may not be determined at startup. It
// serves the fallback until every flag it needs is determined and then binds
// permanently.
type Slot[F any] struct {
	table    *Table
	flags    Flags
	op       string
	needs    []probe.Name
	variants []Variant[F]

	bound bool
	impl  F
}

// Lazy creates a Slot for op. needs lists the flags that must be determined
// before selection.
func Lazy[F any](t *Table, flags Flags, op string, needs []probe.Name, variants ...Variant[F]) *Slot[F] {
	if len(variants) == 0 {
		panic("strategy: no variants for " + op)
	}
	s := &Slot[F]{table: t, flags: flags, op: op, needs: needs, variants: variants}
	s.Get()
	return s
}

// Get returns the bound implementation, attempting the binding if it is
// still pending.
func (s *Slot[F]) Get() F {
	if s.bound {
		return s.impl
	}
	for _, name := range s.needs {
		if _, ok := s.flags.Bool(name); !ok {
			fallback := s.variants[len(s.variants)-1]
			s.table.record(Binding{Op: s.op, Variant: fallback.Name, Pending: true})
			return fallback.Impl
		}
	}
	v := choose(s.flags, s.variants)
	s.table.record(Binding{Op: s.op, Variant: v.Name})
	s.bound, s.impl = true, v.Impl
	return s.impl
}

// Bound reports whether the slot has made its permanent selection.
func (s *Slot[F]) Bound() bool {
	return s.bound
}
