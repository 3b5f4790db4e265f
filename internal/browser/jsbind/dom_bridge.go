// internal/browser/jsbind/dom_bridge.go
package jsbind

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/scalpel-dom/internal/element"
)

// nodeKey holds the wrapped node on every element object.
const nodeKey = "__scalpel_node__"

// DOMBridge exposes an element engine to deferred scripts. Install it on a
// jsexec runtime so `$`, `$$`, `Element` and `console` exist when extracted
// scripts run.
type DOMBridge struct {
	engine *element.Engine
	logger *zap.Logger
}

// NewDOMBridge returns a bridge over engine.
func NewDOMBridge(engine *element.Engine, logger *zap.Logger) *DOMBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DOMBridge{
		engine: engine,
		logger: logger.Named("dom_bridge"),
	}
}

// Install defines the globals on vm. It matches jsexec.Installer.
func (b *DOMBridge) Install(vm *goja.Runtime) error {
	s := &session{bridge: b, vm: vm, wrappers: make(map[*html.Node]*goja.Object)}

	global := vm.GlobalObject()
	if err := global.Set("$", s.dollar); err != nil {
		return err
	}
	if err := global.Set("$$", s.selectAll); err != nil {
		return err
	}

	elem := vm.NewObject()
	if err := elem.Set("addMethods", s.addMethods); err != nil {
		return err
	}
	if err := global.Set("Element", elem); err != nil {
		return err
	}
	return global.Set("console", s.console())
}

// Element returns the extended element with the given id.
func (b *DOMBridge) Element(id string) (*html.Node, error) {
	n := b.engine.Host().GetElementByID(id)
	if n == nil {
		return nil, NewElementNotFoundError("#" + id)
	}
	return b.engine.Extend(n), nil
}

// session is the state of one installation. Wrappers are cached so the same
// node always maps to the same script object.
type session struct {
	bridge   *DOMBridge
	vm       *goja.Runtime
	wrappers map[*html.Node]*goja.Object
}

func (s *session) throw(err error) {
	panic(s.vm.NewGoError(err))
}

// dollar resolves an id or an element wrapper to an extended element.
func (s *session) dollar(call goja.FunctionCall) goja.Value {
	arg := call.Argument(0)
	if n, ok := s.unwrap(arg); ok {
		return s.wrap(s.bridge.engine.Extend(n))
	}
	if goja.IsNull(arg) || goja.IsUndefined(arg) {
		return goja.Null()
	}
	n, err := s.bridge.Element(arg.String())
	if err != nil {
		s.bridge.logger.Debug("Lookup missed.", zap.Error(err))
		return goja.Null()
	}
	return s.wrap(n)
}

// selectAll evaluates expressions against the document element.
func (s *session) selectAll(call goja.FunctionCall) goja.Value {
	exprs := make([]string, 0, len(call.Arguments))
	for _, a := range call.Arguments {
		exprs = append(exprs, a.String())
	}
	e := s.bridge.engine
	nodes, err := e.Select(e.Host().DocumentElement(), exprs...)
	if err != nil {
		s.throw(&MethodError{Method: "$$", Err: err})
	}
	return s.wrapList(nodes)
}

// addMethods registers script functions as element methods. The function
// receives the element first, then the call arguments. An optional second
// argument restricts the methods to a tag or an array of tags.
func (s *session) addMethods(call goja.FunctionCall) goja.Value {
	methods := call.Argument(0).ToObject(s.vm)
	var tags []string
	if t := call.Argument(1); !goja.IsUndefined(t) && !goja.IsNull(t) {
		switch v := t.Export().(type) {
		case []any:
			for _, tag := range v {
				if str, ok := tag.(string); ok {
					tags = append(tags, str)
				}
			}
		default:
			tags = append(tags, t.String())
		}
	}

	for _, name := range methods.Keys() {
		fn, ok := goja.AssertFunction(methods.Get(name))
		if !ok {
			s.throw(&MethodError{Method: name, Err: element.ErrNotCallable})
		}
		m := s.scriptMethod(fn)
		if err := s.bridge.engine.RegisterMethod(name, m, tags...); err != nil {
			s.throw(&MethodError{Method: name, Err: err})
		}
	}
	// Cached wrappers carry the old method list.
	clear(s.wrappers)
	return goja.Undefined()
}

func (s *session) scriptMethod(fn goja.Callable) element.Method {
	return func(_ *element.Engine, n *html.Node, args ...any) (any, error) {
		jsArgs := make([]goja.Value, 0, len(args)+1)
		jsArgs = append(jsArgs, s.wrap(n))
		for _, a := range args {
			jsArgs = append(jsArgs, s.toValue(a))
		}
		result, err := fn(goja.Undefined(), jsArgs...)
		if err != nil {
			return nil, err
		}
		return s.export(result), nil
	}
}

func (s *session) wrapList(nodes []*html.Node) goja.Value {
	values := make([]any, len(nodes))
	for i, n := range nodes {
		values[i] = s.wrap(n)
	}
	return s.vm.NewArray(values...)
}

// wrap returns the script object for n, with one function per method the
// node responds to.
func (s *session) wrap(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if obj, ok := s.wrappers[n]; ok {
		return obj
	}

	obj := s.vm.NewObject()
	_ = obj.DefineDataProperty(nodeKey, s.vm.ToValue(n), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	_ = obj.Set("tagName", strings.ToUpper(n.Data))

	e := s.bridge.engine
	for _, name := range e.Methods(n) {
		_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
			args := make([]any, len(call.Arguments))
			for i, a := range call.Arguments {
				args[i] = s.export(a)
			}
			result, err := e.Invoke(n, name, args...)
			if err != nil {
				s.throw(&MethodError{Method: name, Err: err})
			}
			return s.toValue(result)
		})
	}
	s.wrappers[n] = obj
	return obj
}

func (s *session) unwrap(v goja.Value) (*html.Node, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	held := obj.Get(nodeKey)
	if held == nil || goja.IsUndefined(held) {
		return nil, false
	}
	n, ok := held.Export().(*html.Node)
	return n, ok && n != nil
}

// export converts a script value into the argument shapes the element
// methods accept. Plain objects are walked so wrapped elements inside
// insertion maps reach Go as nodes.
func (s *session) export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if n, ok := s.unwrap(v); ok {
		return n
	}
	if obj, ok := v.(*goja.Object); ok && obj.ClassName() == "Object" {
		out := make(map[string]any)
		for _, key := range obj.Keys() {
			out[key] = s.export(obj.Get(key))
		}
		return out
	}
	switch x := v.Export().(type) {
	case int64:
		return int(x)
	default:
		return x
	}
}

// toValue converts a method result for scripts.
func (s *session) toValue(v any) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Null()
	case *html.Node:
		return s.wrap(x)
	case []*html.Node:
		return s.wrapList(x)
	case element.Offset:
		return s.vm.ToValue(map[string]any{"left": x.Left, "top": x.Top})
	case element.Dimensions:
		return s.vm.ToValue(map[string]any{"width": x.Width, "height": x.Height})
	default:
		return s.vm.ToValue(x)
	}
}

// console routes script logging to zap.
func (s *session) console() *goja.Object {
	console := s.vm.NewObject()
	logFunc := func(level zapcore.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, a := range call.Arguments {
				parts[i] = a.String()
			}
			s.bridge.logger.Log(level, "[JS Console]", zap.String("message", strings.Join(parts, " ")))
			return goja.Undefined()
		}
	}
	_ = console.Set("log", logFunc(zapcore.InfoLevel))
	_ = console.Set("info", logFunc(zapcore.InfoLevel))
	_ = console.Set("warn", logFunc(zapcore.WarnLevel))
	_ = console.Set("error", logFunc(zapcore.ErrorLevel))
	_ = console.Set("debug", logFunc(zapcore.DebugLevel))
	return console
}
