// internal/browser/parser/declarations.go
package parser

import (
	"strings"
)

// Lookup returns the winning value for a property in a declaration list.
// Later declarations win, !important beats normal.
func Lookup(decls []Declaration, prop Property) (Value, bool) {
	var (
		value     Value
		found     bool
		important bool
	)
	for _, d := range decls {
		if d.Property != prop {
			continue
		}
		if important && !d.Important {
			continue
		}
		value, found, important = d.Value, true, d.Important
	}
	return value, found
}

// Set replaces every declaration of prop with a single one at the position of
// the first occurrence, or appends it. An empty value removes the property.
func Set(decls []Declaration, prop Property, value Value) []Declaration {
	if value == "" {
		return Remove(decls, prop)
	}
	out := make([]Declaration, 0, len(decls)+1)
	placed := false
	for _, d := range decls {
		if d.Property != prop {
			out = append(out, d)
			continue
		}
		if !placed {
			out = append(out, Declaration{Property: prop, Value: value})
			placed = true
		}
	}
	if !placed {
		out = append(out, Declaration{Property: prop, Value: value})
	}
	return out
}

// Remove drops every declaration of prop.
func Remove(decls []Declaration, prop Property) []Declaration {
	out := decls[:0:0]
	for _, d := range decls {
		if d.Property != prop {
			out = append(out, d)
		}
	}
	return out
}

// Serialize renders declarations in style attribute form: "a: b; c: d;".
func Serialize(decls []Declaration) string {
	var sb strings.Builder
	for i, d := range decls {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(string(d.Property))
		sb.WriteString(": ")
		sb.WriteString(string(d.Value))
		if d.Important {
			sb.WriteString(" !important")
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

var boxSides = [4]string{"top", "right", "bottom", "left"}

// Expand rewrites margin, padding and border shorthands into longhands in
// place, so that declaration order still decides which one wins.
func Expand(decls []Declaration) []Declaration {
	out := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		switch prop := string(d.Property); prop {
		case "margin", "padding":
			for i, v := range boxValues(string(d.Value)) {
				out = append(out, Declaration{Property: Property(prop + "-" + boxSides[i]), Value: Value(v), Important: d.Important})
			}
		case "border-width":
			for i, v := range boxValues(string(d.Value)) {
				out = append(out, Declaration{Property: Property("border-" + boxSides[i] + "-width"), Value: Value(v), Important: d.Important})
			}
		case "border":
			width := borderWidth(string(d.Value))
			for _, side := range boxSides {
				out = append(out, Declaration{Property: Property("border-" + side + "-width"), Value: Value(width), Important: d.Important})
			}
		case "border-top", "border-right", "border-bottom", "border-left":
			out = append(out, Declaration{Property: Property(prop + "-width"), Value: Value(borderWidth(string(d.Value))), Important: d.Important})
		default:
			out = append(out, d)
		}
	}
	return out
}

// boxValues applies the 1-to-4 value rule for box shorthands.
func boxValues(v string) []string {
	parts := strings.Fields(v)
	switch len(parts) {
	case 1:
		return []string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		return []string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		return []string{parts[0], parts[1], parts[2], parts[1]}
	case 4:
		return parts
	}
	return nil
}

// borderWidth picks the width component out of a border shorthand. A border
// without a usable width (or with style none) is zero wide.
func borderWidth(v string) string {
	width := "0px"
	for _, part := range strings.Fields(v) {
		switch part {
		case "none", "hidden":
			return "0px"
		case "thin":
			width = "1px"
		case "medium":
			width = "3px"
		case "thick":
			width = "5px"
		default:
			if len(part) > 0 && (part[0] >= '0' && part[0] <= '9' || part[0] == '.') {
				width = part
			}
		}
	}
	return width
}
