package bindgen

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Decl is one declaration in the generated interface description.
type Decl struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"` // function, type or macro
	Header    string `json:"header"`
	Signature string `json:"signature,omitempty"`
}

// Declaration shapes recognized by the scanner. The allow-list filter does
// the real narrowing; these only have to find candidate identifiers.
var (
	funcDeclRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_ \t*]*[ \t*]([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	aggTagRe       = regexp.MustCompile(`^(?:typedef\s+)?(?:struct|enum|union)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	typedefLineRe  = regexp.MustCompile(`^typedef\s+[^;{]*[ \t*]([A-Za-z_][A-Za-z0-9_]*)\s*;`)
	typedefCloseRe = regexp.MustCompile(`^\}\s*([A-Za-z_][A-Za-z0-9_]*)\s*;`)
	macroRe        = regexp.MustCompile(`^#\s*define\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// scanHeader extracts the declarations of one header that pass the filter.
// The ignored set suppresses macro names known to collide with unrelated
// numeric or network constants.
func scanHeader(h Header, filter *NameFilter, ignored map[string]bool) ([]Decl, error) {
	f, err := os.Open(h.Abs)
	if err != nil {
		return nil, fmt.Errorf("open header: %w", err)
	}
	defer f.Close()

	var decls []Decl
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*"):
			continue
		case strings.HasPrefix(line, "#"):
			if m := macroRe.FindStringSubmatch(line); m != nil {
				name := m[1]
				if ignored[name] {
					continue
				}
				if filter.MatchFunc(name) || filter.MatchType(name) {
					decls = append(decls, Decl{Name: name, Kind: "macro", Header: h.Rel})
				}
			}
		default:
			if m := aggTagRe.FindStringSubmatch(line); m != nil {
				if filter.MatchType(m[1]) {
					decls = append(decls, Decl{Name: m[1], Kind: "type", Header: h.Rel})
				}
				continue
			}
			if m := typedefLineRe.FindStringSubmatch(line); m != nil {
				if filter.MatchType(m[1]) {
					decls = append(decls, Decl{Name: m[1], Kind: "type", Header: h.Rel})
				}
				continue
			}
			if m := typedefCloseRe.FindStringSubmatch(line); m != nil {
				if filter.MatchType(m[1]) {
					decls = append(decls, Decl{Name: m[1], Kind: "type", Header: h.Rel})
				}
				continue
			}
			if m := funcDeclRe.FindStringSubmatch(line); m != nil {
				if filter.MatchFunc(m[1]) {
					decls = append(decls, Decl{
						Name:      m[1],
						Kind:      "function",
						Header:    h.Rel,
						Signature: strings.TrimSuffix(line, ";"),
					})
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan header: %w", err)
	}
	return decls, nil
}
