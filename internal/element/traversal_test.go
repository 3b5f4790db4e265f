// internal/element/traversal_test.go
package element

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"
)

const listMarkup = `<div id="root" class="box">` +
	`<ul id="list"><li id="one" class="item">1</li><li id="two" class="item hot">2</li><li id="three">3</li></ul>` +
	`<p id="tail">t</p>` +
	`</div>`

// mockSelector records delegation from the traversal methods.
type mockSelector struct {
	mock.Mock
}

func (m *mockSelector) Match(n *html.Node, expr string) (bool, error) {
	args := m.Called(n, expr)
	return args.Bool(0), args.Error(1)
}

func (m *mockSelector) FindElement(nodes []*html.Node, expr string, index int) (*html.Node, error) {
	args := m.Called(nodes, expr, index)
	n, _ := args.Get(0).(*html.Node)
	return n, args.Error(1)
}

func (m *mockSelector) FindChildElements(root *html.Node, exprs ...string) ([]*html.Node, error) {
	args := m.Called(root, exprs)
	nodes, _ := args.Get(0).([]*html.Node)
	return nodes, args.Error(1)
}

func TestTraversal_Lists(t *testing.T) {
	e, d, _ := newEngine(t, listMarkup, "standard")
	two := byID(t, d, "two")

	assert.Equal(t, []string{"list", "root"}, ids(e.Ancestors(two))[:2])
	assert.Equal(t, []string{"one"}, ids(e.PreviousSiblings(two)))
	assert.Equal(t, []string{"three"}, ids(e.NextSiblings(two)))
	assert.Equal(t, []string{"one", "three"}, ids(e.Siblings(two)))
	assert.Equal(t, []string{"list", "one", "two", "three", "tail"}, ids(e.Descendants(byID(t, d, "root"))))
	assert.Equal(t, []string{"list", "tail"}, ids(e.ChildElements(byID(t, d, "root"))))
	assert.Same(t, byID(t, d, "one"), e.FirstDescendant(byID(t, d, "list")))

	assert.True(t, e.DescendantOf(two, byID(t, d, "root")))
	assert.False(t, e.DescendantOf(byID(t, d, "root"), two))

	for _, n := range e.Descendants(byID(t, d, "root")) {
		assert.True(t, e.IsExtended(n))
	}
}

func TestTraversal_Selectors(t *testing.T) {
	e, d, _ := newEngine(t, listMarkup, "standard")
	root, two := byID(t, d, "root"), byID(t, d, "two")

	up, err := e.Up(two, "//div", 0)
	require.NoError(t, err)
	assert.Same(t, root, up)

	up, err = e.Up(two, "", 0)
	require.NoError(t, err)
	assert.Same(t, byID(t, d, "list"), up)

	down, err := e.Down(root, "//li", 1)
	require.NoError(t, err)
	assert.Same(t, two, down)

	down, err = e.Down(root, "", 0)
	require.NoError(t, err)
	assert.Same(t, byID(t, d, "list"), down)

	next, err := e.Next(byID(t, d, "one"), `//li[@id="three"]`, 0)
	require.NoError(t, err)
	assert.Same(t, byID(t, d, "three"), next)

	prev, err := e.Previous(byID(t, d, "three"), "", 1)
	require.NoError(t, err)
	assert.Same(t, byID(t, d, "one"), prev)

	missing, err := e.Next(byID(t, d, "three"), "", 0)
	require.NoError(t, err)
	assert.Nil(t, missing)

	found, err := e.Select(root, `//li[contains(@class, "hot")]`, "//p")
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "tail"}, ids(found))

	adj, err := e.Adjacent(two, `//li[@id="one"]`, `//li[@id="three"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three"}, ids(adj))

	ok, err := e.Match(two, "//ul/li")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTraversal_SelectorErrorsPropagate(t *testing.T) {
	e, d, _ := newEngine(t, listMarkup, "standard")
	root := byID(t, d, "root")

	_, err := e.Select(root, "//li[")
	assert.Error(t, err)
	_, err = e.Match(root, "//li[")
	assert.Error(t, err)
	_, err = e.Up(byID(t, d, "two"), "//li[", 0)
	assert.Error(t, err)
}

func TestTraversal_DelegatesToSelector(t *testing.T) {
	d := newDocument(t, listMarkup, "standard")
	sel := &mockSelector{}
	e := New(d, WithLogger(zaptest.NewLogger(t)), WithSelector(sel), WithScheduler(&recordingScheduler{}))

	root, one, two := byID(t, d, "root"), byID(t, d, "one"), byID(t, d, "two")
	boom := errors.New("selector down")

	sel.On("FindChildElements", root, []string{"a", "b"}).Return([]*html.Node{one, two}, nil).Once()
	sel.On("FindChildElements", root, []string{"bad"}).Return(nil, boom).Once()
	sel.On("Match", two, "m").Return(true, nil).Once()
	sel.On("FindElement", mock.Anything, "up", 2).Return(root, nil).Once()

	found, err := e.Select(root, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []*html.Node{one, two}, found)

	_, err = e.Select(root, "bad")
	assert.ErrorIs(t, err, boom)

	ok, err := e.Match(two, "m")
	require.NoError(t, err)
	assert.True(t, ok)

	up, err := e.Up(two, "up", 2)
	require.NoError(t, err)
	assert.Same(t, root, up)
	assert.True(t, e.IsExtended(root))

	sel.AssertExpectations(t)
}

func TestClassNames(t *testing.T) {
	for _, profile := range []string{"standard", "trident"} {
		t.Run(profile, func(t *testing.T) {
			e, d, _ := newEngine(t, listMarkup, profile)
			two := byID(t, d, "two")

			assert.Equal(t, []string{"item", "hot"}, e.ClassNames(two))
			assert.True(t, e.HasClassName(two, "hot"))
			assert.False(t, e.HasClassName(two, "ho"))

			e.AddClassName(two, "new")
			e.AddClassName(two, "new")
			assert.Equal(t, []string{"item", "hot", "new"}, e.ClassNames(two))

			e.RemoveClassName(two, "hot")
			assert.Equal(t, []string{"item", "new"}, e.ClassNames(two))

			e.ToggleClassName(two, "item")
			assert.False(t, e.HasClassName(two, "item"))
			e.ToggleClassName(two, "item")
			assert.True(t, e.HasClassName(two, "item"))
			e.ToggleClassName(two, "item", true)
			assert.True(t, e.HasClassName(two, "item"))
			e.ToggleClassName(two, "item", false)
			assert.False(t, e.HasClassName(two, "item"))

			three := byID(t, d, "three")
			e.AddClassName(three, "first")
			class, _ := d.Property(three, "className")
			assert.Equal(t, "first", class)
		})
	}
}

func TestRemoveClassName_Duplicates(t *testing.T) {
	e, d, _ := newEngine(t, `<p id="p" class="a b b a">x</p>`, "standard")
	p := byID(t, d, "p")

	e.RemoveClassName(p, "b")
	assert.Equal(t, []string{"a", "a"}, e.ClassNames(p))
}
