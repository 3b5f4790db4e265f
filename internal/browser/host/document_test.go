// internal/browser/host/document_test.go
package host_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
)

func newDoc(t *testing.T, markup, profile string, opts ...host.Option) *host.Document {
	t.Helper()
	p, err := host.ProfileByName(profile)
	require.NoError(t, err)
	d, err := host.NewDocument(markup, append([]host.Option{host.WithProfile(p)}, opts...)...)
	require.NoError(t, err)
	return d
}

func firstElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func TestNewDocument_Structure(t *testing.T) {
	d := newDoc(t, `<div id="a">x</div>`, "standard")

	require.NotNil(t, d.DocumentElement())
	assert.Equal(t, "html", d.DocumentElement().Data)
	require.NotNil(t, d.Body())
	assert.Equal(t, "standard", d.Profile().Name)

	a := d.GetElementByID("a")
	require.NotNil(t, a)
	assert.Equal(t, d.Body(), a.Parent)
	assert.Nil(t, d.GetElementByID("missing"))
	assert.Nil(t, d.GetElementByID(""))
	assert.Equal(t, html.RawNode, d.Window().Type)
}

func TestWithoutBody(t *testing.T) {
	d := newDoc(t, `<p>x</p>`, "standard", host.WithoutBody())
	assert.Nil(t, d.Body())

	body := d.EnsureBody()
	require.NotNil(t, body)
	assert.Same(t, body, d.Body())
	assert.Same(t, body, d.EnsureBody())
}

func TestInsertBefore_Hierarchy(t *testing.T) {
	d := newDoc(t, `<div id="outer"><div id="inner"></div></div>`, "standard")
	outer, inner := d.GetElementByID("outer"), d.GetElementByID("inner")

	err := d.AppendChild(inner, outer)
	assert.ErrorIs(t, err, host.ErrHierarchy)

	stranger := d.CreateElement("span")
	err = d.InsertBefore(outer, d.CreateElement("b"), stranger)
	assert.ErrorIs(t, err, host.ErrHierarchy)

	// Moving a node detaches it from its old parent.
	b := d.CreateElement("b")
	require.NoError(t, d.AppendChild(inner, b))
	require.NoError(t, d.AppendChild(outer, b))
	assert.Nil(t, inner.FirstChild)
	assert.Equal(t, outer, b.Parent)

	assert.ErrorIs(t, d.RemoveChild(inner, b), host.ErrHierarchy)
	require.NoError(t, d.RemoveChild(outer, b))
	assert.Nil(t, b.Parent)
}

func TestReplaceChild(t *testing.T) {
	d := newDoc(t, `<div id="p"><i id="old"></i></div>`, "standard")
	p, old := d.GetElementByID("p"), d.GetElementByID("old")
	fresh := d.CreateElement("em")

	require.NoError(t, d.ReplaceChild(p, fresh, old))
	assert.Same(t, fresh, p.FirstChild)
	assert.Nil(t, old.Parent)
}

func TestScriptTextChild(t *testing.T) {
	for _, tc := range []struct {
		profile string
		wantErr bool
	}{
		{"standard", false},
		{"trident", true},
	} {
		t.Run(tc.profile, func(t *testing.T) {
			d := newDoc(t, ``, tc.profile)
			script := d.CreateElement("script")
			err := d.AppendChild(script, d.CreateTextNode("var x;"))
			if tc.wantErr {
				assert.ErrorIs(t, err, host.ErrHierarchy)
				assert.Nil(t, script.FirstChild)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, html.TextNode, script.FirstChild.Type)
		})
	}
}

func TestSetInnerHTML_TableDefect(t *testing.T) {
	markup := `<table><tbody id="tb"></tbody></table>`

	d := newDoc(t, markup, "standard")
	tb := d.GetElementByID("tb")
	require.NoError(t, d.SetInnerHTML(tb, `<tr><td>x</td></tr>`))
	require.NotNil(t, firstElement(tb))
	assert.Equal(t, atom.Tr, firstElement(tb).DataAtom)

	d = newDoc(t, markup, "trident")
	tb = d.GetElementByID("tb")
	require.NoError(t, d.SetInnerHTML(tb, `<tr><td>x</td></tr>`))
	assert.Nil(t, firstElement(tb), "table rows parsed outside a table context are dropped")
	require.NotNil(t, tb.FirstChild)
	assert.Equal(t, "x", tb.FirstChild.Data)
}

func TestSetInnerHTML_SelectDefect(t *testing.T) {
	markup := `<select id="s"></select>`

	d := newDoc(t, markup, "standard")
	s := d.GetElementByID("s")
	require.NoError(t, d.SetInnerHTML(s, `<option>a</option><option>b</option>`))
	require.NotNil(t, firstElement(s))
	assert.Equal(t, atom.Option, firstElement(s).DataAtom)

	d = newDoc(t, markup, "trident")
	s = d.GetElementByID("s")
	require.NoError(t, d.SetInnerHTML(s, `<option>a</option><option>b</option>`))
	assert.Nil(t, firstElement(s))
	require.NotNil(t, s.FirstChild)
	assert.Equal(t, html.TextNode, s.FirstChild.Type)
}

func TestInnerHTML_RoundTrip(t *testing.T) {
	d := newDoc(t, `<div id="a"></div>`, "standard")
	a := d.GetElementByID("a")
	require.NoError(t, d.SetInnerHTML(a, `<b>bold</b> tail`))

	out, err := d.InnerHTML(a)
	require.NoError(t, err)
	assert.Equal(t, `<b>bold</b> tail`, out)
}

func TestSetOuterHTML(t *testing.T) {
	t.Run("replaces in place", func(t *testing.T) {
		d := newDoc(t, `<div id="p"><span id="a"></span><i></i></div>`, "standard")
		p, a := d.GetElementByID("p"), d.GetElementByID("a")
		require.NoError(t, d.SetOuterHTML(a, `<em>1</em><em>2</em>`))
		first := firstElement(p)
		require.NotNil(t, first)
		assert.Equal(t, "em", first.Data)
		assert.Nil(t, a.Parent)
		assert.Nil(t, d.GetElementByID("a"))
	})

	t.Run("detached", func(t *testing.T) {
		d := newDoc(t, ``, "standard")
		assert.ErrorIs(t, d.SetOuterHTML(d.CreateElement("div"), `<p></p>`), host.ErrDetached)
	})

	t.Run("unsupported", func(t *testing.T) {
		d := newDoc(t, `<div id="p"><span id="a"></span></div>`, "khtml")
		assert.ErrorIs(t, d.SetOuterHTML(d.GetElementByID("a"), `<p></p>`), host.ErrNotSupported)
	})
}

func TestCreateContextualFragment(t *testing.T) {
	markup := `<table id="t"><tbody id="tb"></tbody></table><div id="d"></div>`

	d := newDoc(t, markup, "standard")
	nodes, err := d.CreateContextualFragment(d.GetElementByID("tb"), `<tr><td>1</td></tr>`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, atom.Tr, nodes[0].DataAtom)

	_, err = d.CreateContextualFragment(nil, `<p></p>`)
	assert.ErrorIs(t, err, host.ErrDetached)

	d = newDoc(t, markup, "khtml")
	_, err = d.CreateContextualFragment(d.GetElementByID("tb"), `<tr><td>1</td></tr>`)
	assert.ErrorIs(t, err, host.ErrSyntax)
	nodes, err = d.CreateContextualFragment(d.GetElementByID("d"), `<p>ok</p>`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	nodes, err = d.CreateContextualFragment(d.DocumentElement(), `<p>ok</p>`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, atom.P, nodes[0].DataAtom, "root context parses as body content")
}

func TestSetText_And_Clone(t *testing.T) {
	d := newDoc(t, `<div id="a" class="c"><b>x</b></div>`, "standard")
	a := d.GetElementByID("a")

	shallow := d.CloneNode(a, false)
	assert.Nil(t, shallow.FirstChild)
	assert.Equal(t, a.Attr, shallow.Attr)

	deep := d.CloneNode(a, true)
	require.NotNil(t, deep.FirstChild)
	assert.Equal(t, "b", deep.FirstChild.Data)
	assert.Nil(t, deep.Parent)

	require.NoError(t, d.SetText(a, "<plain>"))
	require.NotNil(t, a.FirstChild)
	assert.Equal(t, html.TextNode, a.FirstChild.Type)
	assert.Equal(t, "<plain>", a.FirstChild.Data)
}

func TestProfiles(t *testing.T) {
	assert.Equal(t, []string{"khtml", "presto", "standard", "trident", "webkit"}, host.ProfileNames())

	_, err := host.ProfileByName("netscape")
	assert.Error(t, err)

	p, err := host.ProfileByName(" Standard ")
	require.NoError(t, err)
	p, err = p.WithDefects("style-float", "no-outer-html")
	require.NoError(t, err)
	assert.True(t, p.StyleFloat)
	assert.True(t, p.NoOuterHTML)
	assert.False(t, p.OpacityViaFilter)

	_, err = p.WithDefects("made-up")
	assert.Error(t, err)
	assert.Contains(t, host.DefectNames(), "body-margin-artifact")
}
