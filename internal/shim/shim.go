// Package shim compiles the glue sources bridging the native library's API
// toward the wrapping layer. The shim is cheap relative to the native build,
// so it is rebuilt on every invocation with no caching gate.
package shim

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ArchiveName is the auxiliary static unit the glue sources compile into.
const ArchiveName = "libavshim.a"

// BuildError reports a failed shim compile or archive step, with the tool's
// combined output.
type BuildError struct {
	Step   string
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("shim %s failed: %v\n%s", e.Step, e.Err, e.Output)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Compiler builds the glue sources into one static archive.
type Compiler struct {
	CC string // C compiler, "cc" when empty
	AR string // archiver, "ar" when empty

	// runCommand overrides process execution in tests.
	runCommand func(ctx context.Context, name string, args ...string) (string, error)
}

// Compile compiles every source against includeDir and archives the objects
// into outDir/libavshim.a, returning the archive path.
func (c *Compiler) Compile(ctx context.Context, sources []string, includeDir, outDir string) (string, error) {
	cc := c.CC
	if cc == "" {
		cc = "cc"
	}
	ar := c.AR
	if ar == "" {
		ar = "ar"
	}

	objects := make([]string, 0, len(sources))
	for _, src := range sources {
		obj := filepath.Join(outDir, objectName(src))
		out, err := c.run(ctx, cc, "-I", includeDir, "-c", src, "-o", obj)
		if err != nil {
			return "", &BuildError{Step: "compile " + src, Output: out, Err: err}
		}
		objects = append(objects, obj)
	}

	archive := filepath.Join(outDir, ArchiveName)
	out, err := c.run(ctx, ar, append([]string{"rcs", archive}, objects...)...)
	if err != nil {
		return "", &BuildError{Step: "archive", Output: out, Err: err}
	}
	return archive, nil
}

func (c *Compiler) run(ctx context.Context, name string, args ...string) (string, error) {
	if c.runCommand != nil {
		return c.runCommand(ctx, name, args...)
	}
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

func objectName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".o"
}
