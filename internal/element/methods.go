// internal/element/methods.go
package element

import (
	"fmt"

	"golang.org/x/net/html"
)

func argAt[T any](args []any, i int, name string) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, fmt.Errorf("%w: missing %s", ErrInvalidArgument, name)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, want %T", ErrInvalidArgument, name, args[i], zero)
	}
	return v, nil
}

// optional returns args[i] as T, or def when it is absent or nil.
func optional[T any](args []any, i int, def T) (T, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return def, fmt.Errorf("%w: argument %d is %T, want %T", ErrInvalidArgument, i, args[i], def)
	}
	return v, nil
}

// number accepts any Go numeric argument as a float64.
func number(args []any, i int, name string) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidArgument, name)
	}
	switch v := args[i].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: %s is %T, want a number", ErrInvalidArgument, name, args[i])
}

func exprArgs(args []any) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := range args {
		s, err := argAt[string](args, i, "expression")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// nodeMethod adapts an operation returning only the node.
func nodeMethod(fn func(e *Engine, n *html.Node) *html.Node) Method {
	return func(e *Engine, n *html.Node, _ ...any) (any, error) {
		return fn(e, n), nil
	}
}

// walkMethod adapts Up, Down, Next and Previous.
func walkMethod(fn func(e *Engine, n *html.Node, expr string, index int) (*html.Node, error)) Method {
	return func(e *Engine, n *html.Node, args ...any) (any, error) {
		// A bare index selects by position.
		if len(args) > 0 {
			if i, ok := args[0].(int); ok {
				return fn(e, n, "", i)
			}
		}
		expr, err := optional(args, 0, "")
		if err != nil {
			return nil, err
		}
		index, err := optional(args, 1, 0)
		if err != nil {
			return nil, err
		}
		return fn(e, n, expr, index)
	}
}

func builtinMethods() map[string]Method {
	return map[string]Method{
		// Attributes
		"readAttribute": func(e *Engine, n *html.Node, args ...any) (any, error) {
			name, err := argAt[string](args, 0, "name")
			if err != nil {
				return nil, err
			}
			if v, ok := e.ReadAttribute(n, name); ok {
				return v, nil
			}
			return nil, nil
		},
		"writeAttribute": func(e *Engine, n *html.Node, args ...any) (any, error) {
			if len(args) > 0 {
				if attrs, ok := args[0].(map[string]any); ok {
					return e.WriteAttributes(n, attrs), nil
				}
			}
			name, err := argAt[string](args, 0, "name")
			if err != nil {
				return nil, err
			}
			// writeAttribute(name) sets a boolean attribute.
			if len(args) < 2 {
				return e.WriteAttribute(n, name, true), nil
			}
			return e.WriteAttribute(n, name, args[1]), nil
		},
		"hasAttribute": func(e *Engine, n *html.Node, args ...any) (any, error) {
			name, err := argAt[string](args, 0, "name")
			if err != nil {
				return nil, err
			}
			return e.HasAttribute(n, name), nil
		},
		"identify": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.Identify(n), nil
		},

		// Style
		"getStyle": func(e *Engine, n *html.Node, args ...any) (any, error) {
			prop, err := argAt[string](args, 0, "property")
			if err != nil {
				return nil, err
			}
			if v, ok := e.GetStyle(n, prop); ok {
				return v, nil
			}
			return nil, nil
		},
		"setStyle": func(e *Engine, n *html.Node, args ...any) (any, error) {
			if len(args) > 0 {
				switch v := args[0].(type) {
				case map[string]string:
					return e.SetStyle(n, v), nil
				case map[string]any:
					styles := make(map[string]string, len(v))
					for prop, value := range v {
						styles[prop] = fmt.Sprint(value)
					}
					return e.SetStyle(n, styles), nil
				case string:
					return e.SetStyleText(n, v), nil
				}
			}
			return nil, fmt.Errorf("%w: setStyle takes a style map or css text", ErrInvalidArgument)
		},
		"getOpacity": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.GetOpacity(n), nil
		},
		"setOpacity": func(e *Engine, n *html.Node, args ...any) (any, error) {
			v, err := number(args, 0, "opacity")
			if err != nil {
				return nil, err
			}
			return e.SetOpacity(n, v), nil
		},

		// Geometry
		"getDimensions": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.GetDimensions(n), nil
		},
		"getWidth": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.GetWidth(n), nil
		},
		"getHeight": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.GetHeight(n), nil
		},
		"cumulativeOffset": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.CumulativeOffset(n), nil
		},
		"cumulativeScrollOffset": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.CumulativeScrollOffset(n), nil
		},
		"positionedOffset": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.PositionedOffset(n), nil
		},
		"viewportOffset": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.ViewportOffset(n), nil
		},
		"getOffsetParent": nodeMethod((*Engine).GetOffsetParent),
		"clonePosition": func(e *Engine, n *html.Node, args ...any) (any, error) {
			source, err := argAt[*html.Node](args, 0, "source")
			if err != nil {
				return nil, err
			}
			opts, err := optional[*ClonePositionOptions](args, 1, nil)
			if err != nil {
				return nil, err
			}
			return e.ClonePosition(n, source, opts), nil
		},
		"absolutize":     nodeMethod((*Engine).Absolutize),
		"relativize":     nodeMethod((*Engine).Relativize),
		"makePositioned": nodeMethod((*Engine).MakePositioned),
		"undoPositioned": nodeMethod((*Engine).UndoPositioned),
		"makeClipping":   nodeMethod((*Engine).MakeClipping),
		"undoClipping":   nodeMethod((*Engine).UndoClipping),
		"scrollTo":       nodeMethod((*Engine).ScrollTo),

		// Visibility
		"visible": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.Visible(n), nil
		},
		"show":   nodeMethod((*Engine).Show),
		"hide":   nodeMethod((*Engine).Hide),
		"toggle": nodeMethod((*Engine).Toggle),

		// Content
		"update": func(e *Engine, n *html.Node, args ...any) (any, error) {
			content, _ := optional[any](args, 0, nil)
			return e.UpdateContent(n, content)
		},
		"replace": func(e *Engine, n *html.Node, args ...any) (any, error) {
			content, _ := optional[any](args, 0, nil)
			return e.ReplaceContent(n, content)
		},
		"insert": func(e *Engine, n *html.Node, args ...any) (any, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("%w: missing insertions", ErrInvalidArgument)
			}
			return e.InsertContent(n, args[0])
		},
		"wrap": func(e *Engine, n *html.Node, args ...any) (any, error) {
			wrapper, _ := optional[any](args, 0, nil)
			// wrap(attrs) wraps in a div with those attributes.
			if attrs, ok := wrapper.(map[string]any); ok {
				return e.Wrap(n, nil, attrs)
			}
			attrs, err := optional[map[string]any](args, 1, nil)
			if err != nil {
				return nil, err
			}
			return e.Wrap(n, wrapper, attrs)
		},
		"remove":          nodeMethod((*Engine).Remove),
		"cleanWhitespace": nodeMethod((*Engine).CleanWhitespace),
		"empty": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.Empty(n), nil
		},
		"clone": func(e *Engine, n *html.Node, args ...any) (any, error) {
			deep, err := optional(args, 0, false)
			if err != nil {
				return nil, err
			}
			return e.Clone(n, deep), nil
		},

		// Storage
		"getStorage": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.GetStorage(n), nil
		},
		"store": func(e *Engine, n *html.Node, args ...any) (any, error) {
			if len(args) > 0 {
				if values, ok := args[0].(map[string]any); ok {
					return e.StoreAll(n, values), nil
				}
			}
			key, err := argAt[string](args, 0, "key")
			if err != nil {
				return nil, err
			}
			value, _ := optional[any](args, 1, nil)
			return e.Store(n, key, value), nil
		},
		"retrieve": func(e *Engine, n *html.Node, args ...any) (any, error) {
			key, err := argAt[string](args, 0, "key")
			if err != nil {
				return nil, err
			}
			return e.Retrieve(n, key, args[1:]...), nil
		},

		// Class names
		"classNames": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.ClassNames(n), nil
		},
		"hasClassName": func(e *Engine, n *html.Node, args ...any) (any, error) {
			name, err := argAt[string](args, 0, "class name")
			if err != nil {
				return nil, err
			}
			return e.HasClassName(n, name), nil
		},
		"addClassName": func(e *Engine, n *html.Node, args ...any) (any, error) {
			name, err := argAt[string](args, 0, "class name")
			if err != nil {
				return nil, err
			}
			return e.AddClassName(n, name), nil
		},
		"removeClassName": func(e *Engine, n *html.Node, args ...any) (any, error) {
			name, err := argAt[string](args, 0, "class name")
			if err != nil {
				return nil, err
			}
			return e.RemoveClassName(n, name), nil
		},
		"toggleClassName": func(e *Engine, n *html.Node, args ...any) (any, error) {
			name, err := argAt[string](args, 0, "class name")
			if err != nil {
				return nil, err
			}
			if len(args) > 1 {
				force, err := argAt[bool](args, 1, "force")
				if err != nil {
					return nil, err
				}
				return e.ToggleClassName(n, name, force), nil
			}
			return e.ToggleClassName(n, name), nil
		},

		// Traversal
		"match": func(e *Engine, n *html.Node, args ...any) (any, error) {
			expr, err := argAt[string](args, 0, "expression")
			if err != nil {
				return nil, err
			}
			return e.Match(n, expr)
		},
		"up":       walkMethod((*Engine).Up),
		"down":     walkMethod((*Engine).Down),
		"next":     walkMethod((*Engine).Next),
		"previous": walkMethod((*Engine).Previous),
		"select": func(e *Engine, n *html.Node, args ...any) (any, error) {
			exprs, err := exprArgs(args)
			if err != nil {
				return nil, err
			}
			return e.Select(n, exprs...)
		},
		"adjacent": func(e *Engine, n *html.Node, args ...any) (any, error) {
			exprs, err := exprArgs(args)
			if err != nil {
				return nil, err
			}
			return e.Adjacent(n, exprs...)
		},
		"ancestors": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.Ancestors(n), nil
		},
		"descendants": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.Descendants(n), nil
		},
		"firstDescendant": nodeMethod((*Engine).FirstDescendant),
		"childElements": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.ChildElements(n), nil
		},
		"siblings": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.Siblings(n), nil
		},
		"previousSiblings": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.PreviousSiblings(n), nil
		},
		"nextSiblings": func(e *Engine, n *html.Node, _ ...any) (any, error) {
			return e.NextSiblings(n), nil
		},
		"descendantOf": func(e *Engine, n *html.Node, args ...any) (any, error) {
			ancestor, err := argAt[*html.Node](args, 0, "ancestor")
			if err != nil {
				return nil, err
			}
			return e.DescendantOf(n, ancestor), nil
		},
	}
}
