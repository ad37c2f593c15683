package bindgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestError reports a malformed header manifest. A single bad line
// rejects the whole file; the generator never runs against a partial
// manifest.
type ManifestError struct {
	Path string
	Line int
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("%s:%d: blank or whitespace-only header entry", e.Path, e.Line)
}

// MissingHeadersError lists every manifest entry that did not resolve to an
// existing file, so all of them can be fixed in one pass.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return "missing headers:\n  " + strings.Join(e.Missing, "\n  ")
}

// Header pairs a manifest entry with its resolved location.
type Header struct {
	Rel string // as written in the manifest
	Abs string // resolved against the source tree
}

// LoadManifest reads the newline-delimited header manifest. Every line must
// be non-empty after trimming; order is preserved.
func LoadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	headers := make([]string, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			return nil, &ManifestError{Path: path, Line: i + 1}
		}
		headers = append(headers, line)
	}
	return headers, nil
}

// Resolve maps every manifest entry to a file under sourceDir. Resolution
// is all-or-nothing: unresolved entries are collected in full before
// reporting.
func Resolve(manifest []string, sourceDir string) ([]Header, error) {
	resolved := make([]Header, 0, len(manifest))
	var missing []string
	for _, rel := range manifest {
		abs := filepath.Join(sourceDir, rel)
		if _, err := os.Stat(abs); err != nil {
			missing = append(missing, abs)
			continue
		}
		resolved = append(resolved, Header{Rel: rel, Abs: abs})
	}
	if len(missing) > 0 {
		return nil, &MissingHeadersError{Missing: missing}
	}
	return resolved, nil
}
