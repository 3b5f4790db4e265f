// internal/browser/host/profile.go
package host

import (
	"fmt"
	"sort"
	"strings"
)

// Profile selects which documented defects a Document reproduces. The zero
// value is a standards-conforming environment.
type Profile struct {
	Name string

	TableInnerHTMLBroken       bool // table-family innerHTML parses as if inside a div
	SelectInnerHTMLBroken      bool // select innerHTML loses its option elements
	ScriptRejectsTextChild     bool // appending a text node to a script fails
	TitleEmptyReadsNull        bool // getAttribute("title") is null when the title is empty
	OverflowResistsOverride    bool // overflow set from markup ignores later style writes
	OffsetParentThrowsOnOrphan bool // offsetParent of a parentless node throws
	NoOuterHTML                bool
	StrictContextualFragment   bool // fragment creation fails in table-family contexts
	NoNativeHasAttribute       bool // no hasAttribute; attribute nodes are phantom when absent
	LegacyAttributeNames       bool // setAttribute wants "className"/"htmlFor"
	StyleFloat                 bool // float is exposed as styleFloat rather than cssFloat
	OpacityViaFilter           bool // no opacity property; alpha filters instead
	ComputedSizeAuto           bool // computed width/height are the declared value or "auto"
	HiddenComputedZero         bool // computed width/height of non-rendered elements is 0px
	ComputedBorderBox          bool // computed width/height include padding and border
	StaticOffsetBug            bool // static elements inside relative ones misreport offsets
	BodyMarginArtifact         bool // body reports its margin as its own offset
	NoSharedPrototypes         bool
	NoTagPrototypes            bool
}

var defectSetters = map[string]func(*Profile){
	"table-innerhtml":            func(p *Profile) { p.TableInnerHTMLBroken = true },
	"select-innerhtml":           func(p *Profile) { p.SelectInnerHTMLBroken = true },
	"script-rejects-text":        func(p *Profile) { p.ScriptRejectsTextChild = true },
	"title-empty-null":           func(p *Profile) { p.TitleEmptyReadsNull = true },
	"overflow-resists-override":  func(p *Profile) { p.OverflowResistsOverride = true },
	"offset-parent-throws":       func(p *Profile) { p.OffsetParentThrowsOnOrphan = true },
	"no-outer-html":              func(p *Profile) { p.NoOuterHTML = true },
	"strict-contextual-fragment": func(p *Profile) { p.StrictContextualFragment = true },
	"no-has-attribute":           func(p *Profile) { p.NoNativeHasAttribute = true },
	"legacy-attribute-names":     func(p *Profile) { p.LegacyAttributeNames = true },
	"style-float":                func(p *Profile) { p.StyleFloat = true },
	"opacity-via-filter":         func(p *Profile) { p.OpacityViaFilter = true },
	"computed-size-auto":         func(p *Profile) { p.ComputedSizeAuto = true },
	"hidden-computed-zero":       func(p *Profile) { p.HiddenComputedZero = true },
	"computed-border-box":        func(p *Profile) { p.ComputedBorderBox = true },
	"static-offset":              func(p *Profile) { p.StaticOffsetBug = true },
	"body-margin-artifact":       func(p *Profile) { p.BodyMarginArtifact = true },
	"no-shared-prototypes":       func(p *Profile) { p.NoSharedPrototypes = true },
	"no-tag-prototypes":          func(p *Profile) { p.NoTagPrototypes = true },
}

var profiles = map[string]Profile{
	"standard": {Name: "standard"},
	"trident": {
		Name:                       "trident",
		TableInnerHTMLBroken:       true,
		SelectInnerHTMLBroken:      true,
		ScriptRejectsTextChild:     true,
		OffsetParentThrowsOnOrphan: true,
		NoNativeHasAttribute:       true,
		LegacyAttributeNames:       true,
		StyleFloat:                 true,
		OpacityViaFilter:           true,
		ComputedSizeAuto:           true,
		StaticOffsetBug:            true,
		NoSharedPrototypes:         true,
		NoTagPrototypes:            true,
	},
	"presto": {
		Name:                "presto",
		TitleEmptyReadsNull: true,
		HiddenComputedZero:  true,
		ComputedBorderBox:   true,
	},
	"khtml": {
		Name:                     "khtml",
		OverflowResistsOverride:  true,
		NoOuterHTML:              true,
		StrictContextualFragment: true,
		BodyMarginArtifact:       true,
		NoTagPrototypes:          true,
	},
	"webkit": {
		Name:               "webkit",
		BodyMarginArtifact: true,
	},
}

// ProfileByName returns one of the built-in profiles.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown host profile %q (known: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames lists the built-in profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefectNames lists every defect accepted by WithDefects.
func DefectNames() []string {
	names := make([]string, 0, len(defectSetters))
	for name := range defectSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithDefects returns a copy of p with the named defects switched on.
func (p Profile) WithDefects(names ...string) (Profile, error) {
	for _, name := range names {
		set, ok := defectSetters[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return p, fmt.Errorf("unknown host defect %q", name)
		}
		set(&p)
	}
	return p, nil
}
