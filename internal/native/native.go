// Package native decides whether the bundled library needs compiling and
// drives its configure/make workflow.
package native

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/avkit/avbuild/internal/buildenv"
	"github.com/avkit/avbuild/internal/descriptor"
)

// asmMissingSignature is the one configure failure the driver retries on.
// Anything else is fatal on first occurrence.
const asmMissingSignature = "nasm/yasm not found or too old"

// State tracks the driver through its build lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateConfiguring
	StateConfiguringRetry
	StateCompiling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateConfiguring:
		return "configuring"
	case StateConfiguringRetry:
		return "configuring (retry)"
	case StateCompiling:
		return "compiling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ConfigureError carries the combined output of the failed configure run.
// When Retried is set, Output holds the retry's diagnostics, not the
// original attempt's.
type ConfigureError struct {
	Output  string
	Retried bool
}

func (e *ConfigureError) Error() string {
	return "configure failed:\n" + e.Output
}

// CompileError carries the verbatim combined output of the failed build.
type CompileError struct {
	Output string
}

func (e *CompileError) Error() string {
	return "make failed:\n" + e.Output
}

// Gate reports whether native compilation can be skipped: every artifact
// file must exist, the profile must not be release, and the forced-rebuild
// override must be unset. Release always rebuilds; the override always
// rebuilds.
func Gate(sourceDir string, artifacts []descriptor.Artifact, env *buildenv.Environment) bool {
	if env.IsRelease() || env.ForceNativeBuild() {
		return false
	}
	for _, a := range artifacts {
		if _, err := os.Stat(filepath.Join(sourceDir, a.Path)); err != nil {
			return false
		}
	}
	return true
}

// Driver runs the native library's configure and compile steps.
type Driver struct {
	SourceDir string
	Env       *buildenv.Environment
	Jobs      int // parallelism hint; defaults to the logical CPU count
	Log       *slog.Logger

	state State

	// runCommand overrides process execution in tests.
	runCommand func(ctx context.Context, name string, args ...string) (string, error)
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State { return d.state }

// Run configures and compiles the source tree. Any failure is terminal:
// there is no partial native build that can be linked safely.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.configure(ctx); err != nil {
		d.state = StateFailed
		return err
	}
	if err := d.compile(ctx); err != nil {
		d.state = StateFailed
		return err
	}
	d.state = StateDone
	return nil
}

// configureFlags returns the base configure flags, extended with the
// fast-iteration set under a debug profile at the lowest optimization level.
func (d *Driver) configureFlags() []string {
	flags := []string{
		"--disable-programs",
		"--disable-doc",
		"--disable-autodetect",
	}
	if d.Env.IsDebug() && d.Env.OptLevelEquals(0) {
		flags = append(flags,
			"--disable-optimizations",
			"--disable-debug",
			"--disable-stripping",
		)
	}
	return flags
}

func (d *Driver) configure(ctx context.Context) error {
	d.state = StateConfiguring
	flags := d.configureFlags()
	d.logStep("configure", "flags", flags)
	out, err := d.evalConfigure(ctx, flags)
	if err == nil {
		return nil
	}
	if !hasSignature(out, asmMissingSignature) {
		return &ConfigureError{Output: out}
	}

	// The assembler is missing or too old; retry once without it.
	d.state = StateConfiguringRetry
	flags = append(flags, "--disable-x86asm")
	d.logStep("configure retry", "flags", flags)
	out, err = d.evalConfigure(ctx, flags)
	if err != nil {
		return &ConfigureError{Output: out, Retried: true}
	}
	return nil
}

func (d *Driver) evalConfigure(ctx context.Context, flags []string) (string, error) {
	script := fmt.Sprintf("cd %s && ./configure %s",
		shellQuote(d.SourceDir), strings.Join(flags, " "))
	return d.run(ctx, "sh", "-c", script)
}

func (d *Driver) compile(ctx context.Context) error {
	d.state = StateCompiling
	jobs := d.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	d.logStep("compile", "jobs", jobs)
	out, err := d.run(ctx, "make",
		"-C", d.SourceDir, "-f", "Makefile", fmt.Sprintf("-j%d", jobs))
	if err != nil {
		return &CompileError{Output: out}
	}
	return nil
}

func (d *Driver) run(ctx context.Context, name string, args ...string) (string, error) {
	if d.runCommand != nil {
		return d.runCommand(ctx, name, args...)
	}
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

func (d *Driver) logStep(step string, args ...any) {
	if d.Log != nil {
		d.Log.Info(step, args...)
	}
}

// hasSignature scans output line-wise for the signature substring.
func hasSignature(output, signature string) bool {
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, signature) {
			return true
		}
	}
	return false
}

// shellQuote single-quotes a path for use inside an sh -c script.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
