// Package buildenv captures build configuration from the process environment.
//
// The environment is read exactly once, at process start, into an immutable
// Environment value that every other component receives explicitly. Components
// never read process state themselves, so they can be exercised with synthetic
// environments in tests.
package buildenv

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Environment variable names recognized by the pipeline.
const (
	VarOutDir       = "OUT_DIR"
	VarProfile      = "PROFILE"
	VarOptLevel     = "OPT_LEVEL"
	VarForceNative  = "AVBUILD_FORCE_NATIVE"
	VarForceBindgen = "AVBUILD_FORCE_BINDGEN"
)

// MissingVarError reports a required environment variable that is not set.
// Nothing downstream can proceed without it, so callers abort immediately.
type MissingVarError struct {
	Name string
}

func (e *MissingVarError) Error() string {
	return "required environment variable " + e.Name + " is not set"
}

// Environment is an immutable snapshot of the build configuration.
type Environment struct {
	outDir   string
	platform string
	vars     map[string]string
}

// Capture reads the process environment into an Environment.
// OUT_DIR is required; everything else defaults to unset.
func Capture() (*Environment, error) {
	out := os.Getenv(VarOutDir)
	if out == "" {
		return nil, &MissingVarError{Name: VarOutDir}
	}
	vars := make(map[string]string)
	for _, name := range []string{VarProfile, VarOptLevel, VarForceNative, VarForceBindgen} {
		if v, ok := os.LookupEnv(name); ok {
			vars[name] = v
		}
	}
	return &Environment{outDir: out, platform: runtime.GOOS, vars: vars}, nil
}

// New constructs a synthetic Environment. Tests use it to exercise
// components without touching the process environment.
func New(outDir, platform string, vars map[string]string) *Environment {
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return &Environment{outDir: outDir, platform: platform, vars: copied}
}

// OutputDir returns the directory all build outputs are written under.
func (e *Environment) OutputDir() string { return e.outDir }

// Platform returns the target platform (a GOOS value).
func (e *Environment) Platform() string { return e.platform }

// IsRelease reports whether the build profile is release.
func (e *Environment) IsRelease() bool { return e.OverrideFlag(VarProfile, "release") }

// IsDebug reports whether the build profile is debug.
func (e *Environment) IsDebug() bool { return e.OverrideFlag(VarProfile, "debug") }

// OptLevelEquals reports whether the optimization level equals n.
func (e *Environment) OptLevelEquals(n int) bool {
	return e.OverrideFlag(VarOptLevel, strconv.Itoa(n))
}

// OverrideFlag reports whether the named variable was set to expected
// at capture time. The comparison is case-insensitive; an unset variable
// never matches.
func (e *Environment) OverrideFlag(name, expected string) bool {
	v, ok := e.vars[name]
	if !ok {
		return false
	}
	return strings.EqualFold(v, expected)
}

// ForceNativeBuild reports whether the forced-rebuild override is set.
// It bypasses the artifact-existence skip gate for the native build.
func (e *Environment) ForceNativeBuild() bool { return e.OverrideFlag(VarForceNative, "1") }

// ForceBindgen reports whether the force-codegen override is set.
// It bypasses the generated-file-existence skip gate.
func (e *Environment) ForceBindgen() bool { return e.OverrideFlag(VarForceBindgen, "1") }
