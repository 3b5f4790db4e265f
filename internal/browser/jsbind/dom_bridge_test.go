// internal/browser/jsbind/dom_bridge_test.go
package jsbind_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/jsbind"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/jsexec"
	"github.com/xkilldash9x/scalpel-dom/internal/element"
)

type fixture struct {
	doc    *host.Document
	engine *element.Engine
	bridge *jsbind.DOMBridge
	rt     *jsexec.Runtime
	got    *[]string
}

func setup(t *testing.T, markup string) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	doc, err := host.NewDocument(markup, host.WithLogger(logger))
	require.NoError(t, err)

	rt := jsexec.NewRuntime(logger)
	engine := element.New(doc, element.WithLogger(logger), element.WithScheduler(rt))
	bridge := jsbind.NewDOMBridge(engine, logger)
	rt.Install(bridge.Install)

	var got []string
	rt.Bind("record", func(s string) { got = append(got, s) })
	return &fixture{doc: doc, engine: engine, bridge: bridge, rt: rt, got: &got}
}

func (f *fixture) run(t *testing.T, scripts ...string) {
	t.Helper()
	f.rt.Defer(scripts...)
	require.NoError(t, f.engine.Flush(context.Background()))
}

func TestBridge_ExtractedScriptsDriveElements(t *testing.T) {
	f := setup(t, `<div id="box"></div>`)
	box := f.doc.GetElementByID("box")

	_, err := f.engine.UpdateContent(box, `<p id="p">x</p><script>$('p').addClassName('seen'); $('p').update('y');</script>`)
	require.NoError(t, err)

	p := f.doc.GetElementByID("p")
	assert.False(t, f.engine.HasClassName(p, "seen"), "scripts wait for a flush")

	require.NoError(t, f.engine.Flush(context.Background()))
	assert.True(t, f.engine.HasClassName(p, "seen"))
	assert.Equal(t, "y", p.FirstChild.Data)
}

func TestBridge_Lookups(t *testing.T) {
	f := setup(t, `<ul id="list"><li id="a">a</li><li id="b">b</li></ul>`)

	f.run(t,
		`record(String($('nope')))`,
		`record(String($$('//li').length))`,
		`record($('a').tagName)`,
		`record(String($('a') === $('a')))`,
		`record(String($($('b')).readAttribute('id')))`,
		`record($('a').next().readAttribute('id'))`,
	)
	assert.Equal(t, []string{"null", "2", "LI", "true", "b", "b"}, *f.got)

	_, err := f.bridge.Element("nope")
	var notFound *jsbind.ElementNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "#nope", notFound.Selector)

	a, err := f.bridge.Element("a")
	require.NoError(t, err)
	assert.True(t, f.engine.IsExtended(a))
}

func TestBridge_ArgumentsAndResults(t *testing.T) {
	f := setup(t, `<div id="w"><p id="p">x</p></div><div id="abs" style="position: absolute; left: 7px; top: 3px; margin: 0"></div>`)

	f.run(t,
		`var o = $('abs').cumulativeOffset(); record(o.left + ',' + o.top)`,
		`$('p').insert({before: '<b id="b">1</b>', after: $('abs')})`,
		`$('p').setStyle({color: 'red'}); record($('p').getStyle('color'))`,
		`$('p').setOpacity(0.5); record(String($('p').getOpacity()))`,
		`$('p').store('k', 3); record(String($('p').retrieve('k') + 1))`,
		`record(String($('w').childElements().length))`,
	)
	assert.Equal(t, []string{"7,3", "red", "0.5", "4", "3"}, *f.got)

	w := f.doc.GetElementByID("w")
	var ids []string
	for c := w.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			id, _ := f.engine.ReadAttribute(c, "id")
			ids = append(ids, id)
		}
	}
	assert.Equal(t, []string{"b", "p", "abs"}, ids)
}

func TestBridge_MethodErrorsAreThrown(t *testing.T) {
	f := setup(t, `<p id="p">x</p>`)

	f.run(t, `try { $('p').insert({middle: 'x'}) } catch (e) { record(e.message) }`)
	require.Len(t, *f.got, 1)
	assert.Contains(t, (*f.got)[0], "element method insert failed")

	f.rt.Defer(`$('p').insert({middle: 'x'})`)
	err := f.engine.Flush(context.Background())
	require.Error(t, err)
	var scriptErr *jsexec.ScriptError
	assert.True(t, errors.As(err, &scriptErr))
}

func TestBridge_AddMethods(t *testing.T) {
	f := setup(t, `<p id="p">x</p><span id="s">y</span>`)

	f.run(t,
		`Element.addMethods({shout: function(el, s) { el.update(s + '!'); return el; }})`,
		`record($('p').shout('hey').readAttribute('id'))`,
		`Element.addMethods({only: function(el) { return 'p'; }}, 'p')`,
		`record($('p').only())`,
		`record(typeof $('s').only)`,
	)
	assert.Equal(t, []string{"p", "p", "undefined"}, *f.got)
	assert.Equal(t, "hey!", f.doc.GetElementByID("p").FirstChild.Data)

	f.rt.Defer(`Element.addMethods({broken: 42})`)
	err := f.engine.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not callable")
}
