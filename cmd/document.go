// File: cmd/document.go
package cmd

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/jsbind"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/jsexec"
	"github.com/xkilldash9x/scalpel-dom/internal/config"
	"github.com/xkilldash9x/scalpel-dom/internal/element"
)

// session bundles a host document with the engine and script runtime that
// operate on it.
type session struct {
	doc     *host.Document
	engine  *element.Engine
	runtime *jsexec.Runtime
}

// openDocument loads an HTML file as a configured host document.
func openDocument(cfg config.Interface, path string, logger *zap.Logger) (*host.Document, error) {
	root, err := htmlquery.LoadDoc(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	opts, err := cfg.Host().Options()
	if err != nil {
		return nil, err
	}
	return host.FromNode(root, append(opts, host.WithLogger(logger))...), nil
}

// newSession binds an engine to doc. Extracted scripts run on a goja runtime
// with the element bridge installed.
func newSession(cfg config.Interface, doc *host.Document, logger *zap.Logger) *session {
	rt := jsexec.NewRuntime(logger, jsexec.WithTimeout(cfg.Scripts().Timeout))
	engine := element.New(doc, element.WithLogger(logger), element.WithScheduler(rt))
	rt.Install(jsbind.NewDOMBridge(engine, logger).Install)
	return &session{doc: doc, engine: engine, runtime: rt}
}

// find returns the first element matched by expr, extended.
func (s *session) find(expr string) (*html.Node, error) {
	n, err := htmlquery.Query(s.doc.Document(), expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	if n == nil || n.Type != html.ElementNode {
		return nil, jsbind.NewElementNotFoundError(expr)
	}
	return s.engine.Extend(n), nil
}
