// internal/element/strategy/strategy_test.go
package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/scalpel-dom/internal/element/probe"
	"github.com/xkilldash9x/scalpel-dom/internal/element/strategy"
)

// fakeFlags treats missing names as indeterminate.
type fakeFlags map[probe.Name]any

func (f fakeFlags) Bool(name probe.Name) (bool, bool) {
	v, ok := f[name]
	if !ok {
		return false, false
	}
	b, _ := v.(bool)
	return b, true
}

func (f fakeFlags) String(name probe.Name) (string, bool) {
	v, ok := f[name]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

func variants() []strategy.Variant[func() string] {
	return []strategy.Variant[func() string]{
		{Name: "filter", When: strategy.Flag(probe.FilterProperty), Impl: func() string { return "filter" }},
		{Name: "styleFloat", When: strategy.Equals(probe.FloatProperty, "styleFloat"), Impl: func() string { return "styleFloat" }},
		{Name: "default", Impl: func() string { return "default" }},
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		flags fakeFlags
		want  string
	}{
		{"first guard wins", fakeFlags{probe.FilterProperty: true, probe.FloatProperty: "styleFloat"}, "filter"},
		{"string guard", fakeFlags{probe.FilterProperty: false, probe.FloatProperty: "styleFloat"}, "styleFloat"},
		{"fallback", fakeFlags{probe.FilterProperty: false, probe.FloatProperty: "cssFloat"}, "default"},
		{"indeterminate is false", fakeFlags{}, "default"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := strategy.NewTable()
			impl := strategy.Select(table, tc.flags, "op", variants()...)
			assert.Equal(t, tc.want, impl())

			b, ok := table.Lookup("op")
			require.True(t, ok)
			assert.Equal(t, tc.want, b.Variant)
			assert.False(t, b.Pending)
		})
	}
}

func TestSelect_NoVariantsPanics(t *testing.T) {
	assert.Panics(t, func() {
		strategy.Select[func()](strategy.NewTable(), fakeFlags{}, "op")
	})
}

func TestGuards(t *testing.T) {
	g := strategy.All(strategy.Flag(probe.OuterHTML), strategy.Flag(probe.OpacityProperty))
	assert.True(t, g(fakeFlags{probe.OuterHTML: true, probe.OpacityProperty: true}))
	assert.False(t, g(fakeFlags{probe.OuterHTML: true}))

	g = strategy.Any(strategy.Flag(probe.OuterHTML), strategy.Flag(probe.OpacityProperty))
	assert.True(t, g(fakeFlags{probe.OpacityProperty: true}))
	assert.False(t, g(fakeFlags{probe.OuterHTML: false}))
}

func TestLazy(t *testing.T) {
	flags := fakeFlags{}
	table := strategy.NewTable()
	slot := strategy.Lazy(table, flags, "getStyle.size", []probe.Name{probe.FilterProperty}, variants()...)

	assert.False(t, slot.Bound())
	assert.Equal(t, "default", slot.Get()(), "fallback while pending")
	b, _ := table.Lookup("getStyle.size")
	assert.True(t, b.Pending)

	flags[probe.FilterProperty] = true
	assert.Equal(t, "filter", slot.Get()())
	assert.True(t, slot.Bound())

	// Bound permanently.
	flags[probe.FilterProperty] = false
	assert.Equal(t, "filter", slot.Get()())
	b, _ = table.Lookup("getStyle.size")
	assert.Equal(t, strategy.Binding{Op: "getStyle.size", Variant: "filter"}, b)

	assert.Len(t, table.Bindings(), 1)
}
