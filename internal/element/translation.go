// internal/element/translation.go
package element

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// translation wraps child markup so a scratch div can parse it for tags that
// reject it as direct innerHTML.
type translation struct {
	open, close string
	depth       int
}

var translations = map[string]translation{
	"table":  {"<table>", "</table>", 1},
	"tbody":  {"<table><tbody>", "</tbody></table>", 2},
	"thead":  {"<table><tbody>", "</tbody></table>", 2},
	"tfoot":  {"<table><tbody>", "</tbody></table>", 2},
	"tr":     {"<table><tbody><tr>", "</tr></tbody></table>", 3},
	"td":     {"<table><tbody><tr><td>", "</td></tr></tbody></table>", 4},
	"th":     {"<table><tbody><tr><td>", "</td></tr></tbody></table>", 4},
	"select": {"<select>", "</select>", 1},
}

func translated(n *html.Node) bool {
	if n == nil {
		return false
	}
	_, ok := translations[strings.ToLower(n.Data)]
	return ok
}

var reScript = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script\s*>`)

// extractScripts returns the bodies of the script blocks in markup.
func extractScripts(markup string) []string {
	var scripts []string
	for _, m := range reScript.FindAllStringSubmatch(markup, -1) {
		scripts = append(scripts, m[1])
	}
	return scripts
}

func stripScripts(markup string) string {
	return reScript.ReplaceAllString(markup, "")
}

// ElementSource is content that converts itself to a node.
type ElementSource interface {
	ToElement() *html.Node
}

// HTMLSource is content that renders itself as markup.
type HTMLSource interface {
	ToHTML() string
}

// normalize reduces content to either a node or markup.
func normalize(content any) (*html.Node, string) {
	switch c := content.(type) {
	case nil:
		return nil, ""
	case *html.Node:
		return c, ""
	case ElementSource:
		if n := c.ToElement(); n != nil {
			return n, ""
		}
		return nil, ""
	case HTMLSource:
		return nil, c.ToHTML()
	case string:
		return nil, c
	case fmt.Stringer:
		return nil, c.String()
	}
	return nil, fmt.Sprint(content)
}

// contentFromAnonymous parses markup as the children of a tag, through a
// detached scratch div and the tag's wrapper translation.
func (e *Engine) contentFromAnonymous(tag, markup string) ([]*html.Node, error) {
	t := translations[strings.ToLower(tag)]
	scratch := e.host.CreateElement("div")
	if err := e.host.SetInnerHTML(scratch, t.open+markup+t.close); err != nil {
		return nil, fmt.Errorf("%w: <%s>: %v", ErrMarkupRejected, tag, err)
	}
	container := scratch
	for range t.depth {
		container = container.FirstChild
		if !isElement(container) {
			return nil, fmt.Errorf("%w: <%s> wrapper did not survive parsing", ErrMarkupRejected, tag)
		}
	}

	var nodes []*html.Node
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	for _, c := range nodes {
		container.RemoveChild(c)
	}
	return nodes, nil
}
