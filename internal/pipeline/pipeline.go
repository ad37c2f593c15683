// Package pipeline sequences the build preparation steps: probe the
// environment, provision the source tree, gate and run the native build,
// emit link directives, generate header bindings and compile the shim.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/avkit/avbuild/internal/bindgen"
	"github.com/avkit/avbuild/internal/buildenv"
	"github.com/avkit/avbuild/internal/descriptor"
	"github.com/avkit/avbuild/internal/linkplan"
	"github.com/avkit/avbuild/internal/native"
	"github.com/avkit/avbuild/internal/provision"
	"github.com/avkit/avbuild/internal/shim"
)

// Plan is the per-invocation skip decision, recomputed every run from the
// environment, filesystem probes and overrides.
type Plan struct {
	SkipExtract bool
	SkipNative  bool
	SkipCodegen bool
}

// Pipeline runs the whole preparation sequence. Any component error aborts
// before link directives are written, so the outer build can never link
// against an incomplete native library.
type Pipeline struct {
	Env  *buildenv.Environment
	Lib  *descriptor.Library
	Log  *slog.Logger
	Out  io.Writer // link directives for the outer build system
	Jobs int       // parallelism hint for the native build

	// Test seams; nil selects the real implementation.
	buildNative func(ctx context.Context, sourceDir string) error
	compileShim func(ctx context.Context, sourceDir string) error
}

// plan computes the skip decisions. Extraction is never skipped when the
// source tree is absent, regardless of the other gates.
func (p *Pipeline) plan(sourceDir, bindingPath string) Plan {
	skipNative := native.Gate(sourceDir, p.Lib.Artifacts, p.Env)
	_, err := os.Stat(sourceDir)
	sourceExists := err == nil
	return Plan{
		SkipExtract: sourceExists && skipNative,
		SkipNative:  skipNative,
		SkipCodegen: bindgen.ShouldSkip(bindingPath, p.Env.ForceBindgen()),
	}
}

// Run executes the pipeline.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	outDir := p.Env.OutputDir()
	sourceDir := filepath.Join(outDir, p.Lib.SourceDir)
	bindingPath := filepath.Join(outDir, p.Lib.BindingFile)

	plan := p.plan(sourceDir, bindingPath)
	log.Info("plan",
		"library", p.Lib.Name,
		"skip_extract", plan.SkipExtract,
		"skip_native", plan.SkipNative,
		"skip_codegen", plan.SkipCodegen)

	// Provision the source tree.
	sourceDir, err := provision.EnsureSource(
		p.Env.Platform(), p.Lib.Archive, outDir, p.Lib.SourceDir, !plan.SkipExtract)
	if err != nil {
		return fmt.Errorf("provision source: %w", err)
	}

	// Native build.
	if !plan.SkipNative {
		if err := p.runNativeBuild(ctx, sourceDir, log); err != nil {
			return fmt.Errorf("native build: %w", err)
		}
	} else {
		log.Info("native build skipped", "reason", "artifacts present")
	}

	// Link directives, only once the native build is known-complete.
	lp := linkplan.For(p.Env.Platform(), sourceDir, p.Lib)
	if _, err := lp.WriteTo(p.Out); err != nil {
		return fmt.Errorf("emit link directives: %w", err)
	}
	if _, err := fmt.Fprintf(p.Out, "rerun-if-changed=%s\n", p.Lib.HeaderManifest); err != nil {
		return fmt.Errorf("emit link directives: %w", err)
	}

	// Binding generation.
	if !plan.SkipCodegen {
		if err := p.generateBindings(sourceDir, bindingPath, log); err != nil {
			return err
		}
	} else {
		log.Info("codegen skipped", "reason", "binding file present", "path", bindingPath)
	}
	// Register the generated file so dependents recompile when it changes.
	if _, err := fmt.Fprintf(p.Out, "generated-source=%s\n", bindingPath); err != nil {
		return fmt.Errorf("emit link directives: %w", err)
	}

	// The shim is rebuilt every run.
	if err := p.runShimCompile(ctx, sourceDir); err != nil {
		return fmt.Errorf("shim: %w", err)
	}
	log.Info("pipeline complete", "library", p.Lib.Name)
	return nil
}

func (p *Pipeline) runNativeBuild(ctx context.Context, sourceDir string, log *slog.Logger) error {
	if p.buildNative != nil {
		return p.buildNative(ctx, sourceDir)
	}
	drv := &native.Driver{
		SourceDir: sourceDir,
		Env:       p.Env,
		Jobs:      p.Jobs,
		Log:       log,
	}
	return drv.Run(ctx)
}

func (p *Pipeline) generateBindings(sourceDir, bindingPath string, log *slog.Logger) error {
	manifest, err := bindgen.LoadManifest(p.Lib.HeaderManifest)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	headers, err := bindgen.Resolve(manifest, sourceDir)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	filter, err := bindgen.NewNameFilter(p.Lib.FunctionFilter, p.Lib.TypeFilter)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	out, err := bindgen.Generate(headers, filter, p.Lib.IgnoredMacros, bindingPath)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	log.Info("bindings generated",
		"path", bindingPath,
		"headers", len(out.Headers),
		"declarations", len(out.Decls))
	return nil
}

func (p *Pipeline) runShimCompile(ctx context.Context, sourceDir string) error {
	if p.compileShim != nil {
		return p.compileShim(ctx, sourceDir)
	}
	c := &shim.Compiler{}
	_, err := c.Compile(ctx, p.Lib.ShimSources, sourceDir, p.Env.OutputDir())
	return err
}
