package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/avkit/avbuild/internal/buildenv"
	"github.com/avkit/avbuild/internal/descriptor"
	"github.com/avkit/avbuild/internal/pipeline"
)

var (
	prepareDescriptor string
	prepareJobs       int
	prepareVerbose    bool
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Build the native library and emit link metadata",
	Long: `Prepare extracts the bundled source archive if needed, builds the native
library unless its artifacts are already present, writes link directives to
stdout and generates the header bindings.`,
	RunE: runPrepare,
}

func init() {
	prepareCmd.Flags().StringVarP(&prepareDescriptor, "descriptor", "d", "avbuild.hcl", "library descriptor file")
	prepareCmd.Flags().IntVarP(&prepareJobs, "jobs", "j", 0, "parallelism hint for the native build (default: logical CPUs)")
	prepareCmd.Flags().BoolVarP(&prepareVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	env, err := buildenv.Capture()
	if err != nil {
		return err
	}

	lib := descriptor.Default()
	if _, err := os.Stat(prepareDescriptor); err == nil {
		lib, err = descriptor.Load(prepareDescriptor)
		if err != nil {
			return fmt.Errorf("load descriptor: %w", err)
		}
	}

	level := slog.LevelInfo
	if prepareVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	p := &pipeline.Pipeline{
		Env:  env,
		Lib:  lib,
		Log:  logger,
		Out:  os.Stdout,
		Jobs: prepareJobs,
	}
	if err := p.Run(cmd.Context()); err != nil {
		return err
	}
	color.Success.Printf("%s prepared in %s\n", lib.Name, env.OutputDir())
	return nil
}
