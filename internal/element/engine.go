// internal/element/engine.go
package element

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/host"
	"github.com/xkilldash9x/scalpel-dom/internal/browser/jsexec"
	"github.com/xkilldash9x/scalpel-dom/internal/element/probe"
	"github.com/xkilldash9x/scalpel-dom/internal/element/strategy"
)

// Selector is the selector engine the traversal methods delegate to.
type Selector interface {
	Match(n *html.Node, expr string) (bool, error)
	FindElement(nodes []*html.Node, expr string, index int) (*html.Node, error)
	FindChildElements(root *html.Node, exprs ...string) ([]*html.Node, error)
}

// Scheduler receives script sources extracted from inserted markup. They must
// run after the mutation that produced them returns, in the order given.
type Scheduler interface {
	Defer(scripts ...string)
}

// Engine is the uniform element surface over one host document. It probes the
// host once at construction and binds one implementation per ambiguous
// operation. An Engine is not safe for concurrent use.
type Engine struct {
	host     host.Host
	logger   *zap.Logger
	selector Selector
	sched    Scheduler

	probes *probe.Registry
	table  *strategy.Table
	ops    operations
	// Attribute name translations, logical name to host name.
	attrNames map[string]string

	registry   *registry
	store      *store
	prototypes map[string]*html.Node
	idCounter  int
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithSelector replaces the default XPath selector.
func WithSelector(s Selector) Option {
	return func(e *Engine) { e.selector = s }
}

// WithScheduler replaces the default deferred script runtime.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// New probes h and returns an engine bound to it.
func New(h host.Host, opts ...Option) *Engine {
	e := &Engine{
		host:       h,
		prototypes: make(map[string]*html.Node),
		idCounter:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.logger = e.logger.Named("element")
	if e.selector == nil {
		e.selector = dom.NewXPathSelector(e.logger)
	}
	if e.sched == nil {
		e.sched = jsexec.NewRuntime(e.logger)
	}

	// Phase one: every probe that can run now.
	e.probes = probe.NewDefaultRegistry(h, e.logger)
	e.probes.RunAll()

	// Phase two: one implementation per operation.
	e.table = strategy.NewTable()
	e.bind()

	e.registry = newRegistry(e.ops.extendMode)
	e.store = newStore()
	for name, m := range builtinMethods() {
		e.registry.global[name] = m
	}

	e.logger.Debug("Element engine ready.",
		zap.String("profile", h.Profile().Name),
		zap.Int("bindings", len(e.table.Bindings())))
	return e
}

func (e *Engine) Host() host.Host { return e.host }

// Probes returns the capability flags the engine was bound with.
func (e *Engine) Probes() *probe.Registry { return e.probes }

// Strategies returns the operation bindings.
func (e *Engine) Strategies() *strategy.Table { return e.table }

// Flush runs deferred scripts when the scheduler can drain its queue.
func (e *Engine) Flush(ctx context.Context) error {
	if f, ok := e.sched.(interface{ Flush(context.Context) error }); ok {
		return f.Flush(ctx)
	}
	return nil
}

func (e *Engine) deferScripts(scripts []string) {
	if len(scripts) == 0 {
		return
	}
	e.logger.Debug("Deferring extracted scripts.", zap.Int("count", len(scripts)))
	e.sched.Defer(scripts...)
}

func isElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}
