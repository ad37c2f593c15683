// Package provision ensures the native library's source tree exists locally,
// extracting it from the bundled archive when needed.
package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// ExtractError reports a failed extraction or an unusable result.
type ExtractError struct {
	Archive string
	Reason  string
	Err     error
}

func (e *ExtractError) Error() string {
	msg := fmt.Sprintf("extract %s: %s", e.Archive, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractError) Unwrap() error { return e.Err }

// EnsureSource makes sure destDir/sourceDirName holds the extracted source
// tree and returns its path. The archive is unpacked when the tree is absent
// or force is set; extraction is never skipped for a missing tree. After
// unpacking, exactly one top-level directory must match sourceDirName, else
// the result is ambiguous and an ExtractError is returned.
func EnsureSource(platform, archive, destDir, sourceDirName string, force bool) (string, error) {
	sourceDir := filepath.Join(destDir, sourceDirName)
	if _, err := os.Stat(sourceDir); err == nil && !force {
		return sourceDir, nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", &ExtractError{Archive: archive, Reason: "create destination", Err: err}
	}
	if err := forPlatform(platform).extract(archive, destDir); err != nil {
		return "", err
	}

	matches, err := ListWithPrefix(destDir, sourceDirName)
	if err != nil {
		return "", &ExtractError{Archive: archive, Reason: "inspect destination", Err: err}
	}
	var dirs []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}
	switch len(dirs) {
	case 0:
		return "", &ExtractError{Archive: archive, Reason: "no top-level directory named " + sourceDirName}
	case 1:
		return dirs[0], nil
	default:
		return "", &ExtractError{Archive: archive,
			Reason: fmt.Sprintf("ambiguous top-level directory, %d candidates match %s", len(dirs), sourceDirName)}
	}
}

// NewestByCreation returns the path whose status timestamp is strictly the
// latest. Paths without a readable timestamp are skipped; ties keep the
// first-seen entry. The second result is false when nothing qualified.
//
// Modification time stands in for birth time on filesystems that do not
// expose one.
func NewestByCreation(paths []string) (string, bool) {
	var (
		newest   string
		newestAt time.Time
		found    bool
	)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		at := info.ModTime()
		if !found {
			newest, newestAt, found = p, at, true
			continue
		}
		if at.After(newestAt) {
			newest, newestAt = p, at
		}
	}
	return newest, found
}

// ListWithPrefix lists entries of dir whose file name starts with prefix.
// The match is case-sensitive and anchored at position zero. Entries with
// non-decodable names are skipped without aborting enumeration; the result
// keeps the filesystem's enumeration order.
func ListWithPrefix(dir, prefix string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	defer f.Close()
	// File.ReadDir keeps directory order; os.ReadDir would sort.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !utf8.ValidString(name) {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out, nil
}
