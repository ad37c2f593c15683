// Package bindgen produces a typed interface description from the native
// library's public headers. It reads an ordered header manifest, resolves
// every entry against the source tree, scans the headers for declarations
// passing an allow-list filter, and writes one generated description file.
package bindgen

import (
	"encoding/json"
	"fmt"
	"os"
)

// GenerateError wraps a header-scanning or output failure.
type GenerateError struct {
	Header string
	Err    error
}

func (e *GenerateError) Error() string {
	if e.Header != "" {
		return fmt.Sprintf("generate bindings: %s: %v", e.Header, e.Err)
	}
	return fmt.Sprintf("generate bindings: %v", e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// File is the generated interface description.
type File struct {
	Headers []string `json:"headers"`
	Decls   []Decl   `json:"declarations"`
}

// ShouldSkip reports whether generation can be skipped: the output file
// already exists and the force-regenerate override is unset. The gate is
// existence-only; it does not notice manifest or header edits.
func ShouldSkip(outPath string, force bool) bool {
	if force {
		return false
	}
	_, err := os.Stat(outPath)
	return err == nil
}

// Generate scans the resolved headers and writes the interface description
// to outPath. Declarations keep manifest order, then in-header order; the
// first occurrence of a name/kind pair wins.
func Generate(headers []Header, filter *NameFilter, ignoredMacros []string, outPath string) (*File, error) {
	ignored := make(map[string]bool, len(ignoredMacros))
	for _, name := range ignoredMacros {
		ignored[name] = true
	}

	out := &File{}
	seen := make(map[string]bool)
	for _, h := range headers {
		out.Headers = append(out.Headers, h.Rel)
		decls, err := scanHeader(h, filter, ignored)
		if err != nil {
			return nil, &GenerateError{Header: h.Rel, Err: err}
		}
		for _, d := range decls {
			key := d.Kind + " " + d.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Decls = append(out.Decls, d)
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, &GenerateError{Err: err}
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return nil, &GenerateError{Err: err}
	}
	return out, nil
}
