// internal/browser/dom/selector.go
package dom

import (
	"errors"
	"fmt"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrInvalidExpression wraps XPath compilation failures.
var ErrInvalidExpression = errors.New("dom: invalid xpath expression")

// XPathSelector evaluates XPath expressions over x/net/html trees. Compiled
// expressions are cached.
type XPathSelector struct {
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]*xpath.Expr
}

func NewXPathSelector(logger *zap.Logger) *XPathSelector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XPathSelector{
		logger: logger.Named("selector"),
		cache:  make(map[string]*xpath.Expr),
	}
}

func (s *XPathSelector) compile(expr string) (*xpath.Expr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if compiled, ok := s.cache[expr]; ok {
		return compiled, nil
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidExpression, expr, err)
	}
	s.cache[expr] = compiled
	return compiled, nil
}

// Match reports whether n is selected by expr evaluated over the tree n
// belongs to. Detached subtrees are evaluated as if they were documents.
func (s *XPathSelector) Match(n *html.Node, expr string) (bool, error) {
	if n == nil || n.Type != html.ElementNode {
		return false, nil
	}
	compiled, err := s.compile(expr)
	if err != nil {
		return false, err
	}
	var matched bool
	withDocumentRoot(n, func(root *html.Node) {
		for _, m := range htmlquery.QuerySelectorAll(root, compiled) {
			if m == n {
				matched = true
				return
			}
		}
	})
	return matched, nil
}

// FindElement returns the index-th node of nodes matched by expr, or nil.
// An empty expression matches every node.
func (s *XPathSelector) FindElement(nodes []*html.Node, expr string, index int) (*html.Node, error) {
	if index < 0 {
		return nil, nil
	}
	for _, n := range nodes {
		if expr != "" {
			ok, err := s.Match(n, expr)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		if index == 0 {
			return n, nil
		}
		index--
	}
	return nil, nil
}

// FindChildElements returns the descendants of root selected by any of exprs,
// without duplicates, in document order. Expressions are evaluated with root
// as the document root, so "//li" only sees root's subtree.
func (s *XPathSelector) FindChildElements(root *html.Node, exprs ...string) ([]*html.Node, error) {
	if root == nil {
		return nil, nil
	}
	selected := make(map[*html.Node]bool)
	for _, expr := range exprs {
		compiled, err := s.compile(expr)
		if err != nil {
			return nil, err
		}
		for _, n := range htmlquery.QuerySelectorAll(root, compiled) {
			if n != root && n.Type == html.ElementNode {
				selected[n] = true
			}
		}
	}
	if len(selected) == 0 {
		return nil, nil
	}

	out := make([]*html.Node, 0, len(selected))
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if selected[c] {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	s.logger.Debug("Selected child elements.", zap.Strings("expressions", exprs), zap.Int("count", len(out)))
	return out, nil
}

// withDocumentRoot runs fn with the document node of n's tree. A detached
// subtree is hung under a transient document node for the duration of fn.
func withDocumentRoot(n *html.Node, fn func(root *html.Node)) {
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	if top.Type == html.DocumentNode {
		fn(top)
		return
	}
	doc := &html.Node{Type: html.DocumentNode, FirstChild: top, LastChild: top}
	top.Parent = doc
	defer func() { top.Parent = nil }()
	fn(doc)
}
