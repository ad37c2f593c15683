// Package linkplan turns a built source tree into the ordered link
// directives the outer build system consumes.
package linkplan

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/avkit/avbuild/internal/descriptor"
)

// Kind classifies a link directive.
type Kind int

const (
	// KindSearchPath declares a library search directory.
	KindSearchPath Kind = iota
	// KindStaticLib declares a statically-linked library name.
	KindStaticLib
	// KindSystemLib declares a platform system library.
	KindSystemLib
)

// Directive is one declaration emitted to the outer build system.
type Directive struct {
	Kind  Kind
	Value string
}

// Plan is an ordered list of directives. Order is load-bearing: static
// library order affects linker symbol resolution and must never be
// re-sorted.
type Plan []Directive

// profile is one row of the closed platform table. Platforms that ship an
// alternate static-library distribution supply fixed search roots and extra
// system libraries instead of the per-component source subdirectories.
type profile struct {
	sourceSubdirs bool
	fixedRoots    []string
	systemLibs    []string
}

var profiles = map[string]profile{
	"linux":   {sourceSubdirs: true},
	"darwin":  {sourceSubdirs: true},
	"freebsd": {sourceSubdirs: true},
	"windows": {
		fixedRoots: []string{
			filepath.Join("vcpkg", "installed", "x64-windows-static", "lib"),
		},
		systemLibs: []string{"Bcrypt", "Secur32", "Ole32", "User32"},
	},
}

func profileFor(platform string) profile {
	if p, ok := profiles[platform]; ok {
		return p
	}
	return profiles["linux"]
}

// For builds the link plan for a platform: search paths first (source root,
// then either the per-component subdirectories or the platform's fixed
// roots), then every artifact in the descriptor's authored order, then the
// platform's system libraries.
func For(platform, sourceDir string, lib *descriptor.Library) Plan {
	p := profileFor(platform)
	plan := Plan{{Kind: KindSearchPath, Value: sourceDir}}
	if p.sourceSubdirs {
		for _, sub := range lib.SearchSubdirs {
			plan = append(plan, Directive{Kind: KindSearchPath, Value: filepath.Join(sourceDir, sub)})
		}
	}
	for _, root := range p.fixedRoots {
		plan = append(plan, Directive{Kind: KindSearchPath, Value: root})
	}
	for _, a := range lib.Artifacts {
		plan = append(plan, Directive{Kind: KindStaticLib, Value: a.Name})
	}
	for _, l := range p.systemLibs {
		plan = append(plan, Directive{Kind: KindSystemLib, Value: l})
	}
	return plan
}

// StaticLibs returns the statically-linked library names in plan order.
func (p Plan) StaticLibs() []string {
	var names []string
	for _, d := range p {
		if d.Kind == KindStaticLib {
			names = append(names, d.Value)
		}
	}
	return names
}

// WriteTo renders the plan one directive per line.
func (p Plan) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, d := range p {
		var line string
		switch d.Kind {
		case KindSearchPath:
			line = fmt.Sprintf("link-search native=%s\n", d.Value)
		case KindStaticLib:
			line = fmt.Sprintf("link-lib static=%s\n", d.Value)
		case KindSystemLib:
			line = fmt.Sprintf("link-lib %s\n", d.Value)
		}
		n, err := io.WriteString(w, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
