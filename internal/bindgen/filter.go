package bindgen

import (
	"fmt"
	"regexp"
)

// NameFilter is the allow-list predicate deciding which scanned identifiers
// are emitted: one pattern for function-like symbols, one for type-like
// symbols. Patterns are anchored, so "av.*" matches av_foo but not
// wrap_av_foo.
type NameFilter struct {
	fn *regexp.Regexp
	ty *regexp.Regexp
}

// NewNameFilter compiles the two allow-list patterns.
func NewNameFilter(funcPattern, typePattern string) (*NameFilter, error) {
	fn, err := regexp.Compile("^(?:" + funcPattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("function filter %q: %w", funcPattern, err)
	}
	ty, err := regexp.Compile("^(?:" + typePattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("type filter %q: %w", typePattern, err)
	}
	return &NameFilter{fn: fn, ty: ty}, nil
}

// MatchFunc reports whether a function-like identifier passes the allow-list.
func (f *NameFilter) MatchFunc(name string) bool { return f.fn.MatchString(name) }

// MatchType reports whether a type-like identifier passes the allow-list.
func (f *NameFilter) MatchType(name string) bool { return f.ty.MatchString(name) }
