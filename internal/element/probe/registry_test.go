// internal/element/probe/registry_test.go
package probe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
	"github.com/xkilldash9x/scalpel-dom/internal/element/probe"
)

func newHost(t *testing.T, profile string, opts ...host.Option) *host.Document {
	t.Helper()
	p, err := host.ProfileByName(profile)
	require.NoError(t, err)
	d, err := host.NewDocument(`<p id="content">hello</p>`, append([]host.Option{host.WithProfile(p)}, opts...)...)
	require.NoError(t, err)
	return d
}

func TestRegistry_MemoizesFirstDetermination(t *testing.T) {
	d := newHost(t, "standard")
	r := probe.NewRegistry(d, zaptest.NewLogger(t))

	calls := 0
	require.NoError(t, r.Register(probe.Probe{
		Name: "counted",
		Run: func(host.Host) any {
			calls++
			return calls
		},
	}))

	v, ok := r.Value("counted")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, _ = r.Value("counted")
	assert.Equal(t, 1, v)
	r.RunAll()
	assert.Equal(t, 1, calls)
}

func TestRegistry_LazyProbeWaitsForBody(t *testing.T) {
	d := newHost(t, "standard", host.WithoutBody())
	r := probe.NewRegistry(d, nil)

	calls := 0
	require.NoError(t, r.Register(probe.Probe{
		Name:      "lazy",
		NeedsBody: true,
		Run: func(host.Host) any {
			calls++
			return true
		},
	}))

	r.RunAll()
	_, ok := r.Value("lazy")
	assert.False(t, ok, "indeterminate without a body")
	assert.Zero(t, calls)

	body := d.EnsureBody()
	v, ok := r.Bool("lazy")
	assert.True(t, ok)
	assert.True(t, v)

	// Once determined, the value no longer depends on the body.
	require.NoError(t, d.RemoveChild(body.Parent, body))
	v, ok = r.Bool("lazy")
	assert.True(t, ok)
	assert.True(t, v)
	assert.Equal(t, 1, calls)
}

func TestRegistry_Register(t *testing.T) {
	r := probe.NewRegistry(newHost(t, "standard"), nil)
	p := probe.Probe{Name: "x", Run: func(host.Host) any { return "value" }}

	require.NoError(t, r.Register(p))
	assert.Error(t, r.Register(p), "duplicate names are rejected")
	assert.Error(t, r.Register(probe.Probe{Name: "no-run"}))

	s, ok := r.String("x")
	assert.True(t, ok)
	assert.Equal(t, "value", s)
	b, ok := r.Bool("x")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = r.Value("unknown")
	assert.False(t, ok)
	_, ok = r.Bool("unknown")
	assert.False(t, ok)
}

func TestRegistry_Snapshot(t *testing.T) {
	d := newHost(t, "standard", host.WithoutBody())
	r := probe.NewDefaultRegistry(d, nil)

	snap := r.Snapshot()
	require.Len(t, snap, len(probe.DefaultProbes()))
	for _, res := range snap {
		assert.Equal(t, !res.NeedsBody, res.Determined, "probe %s", res.Name)
	}
	assert.Equal(t, probe.SelectInnerHTMLBuggy, snap[0].Name)
}
