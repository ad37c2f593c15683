// Package descriptor defines the static description of the native library
// being prepared: where its bundled source archive lives, which static
// archives the build must produce, and how bindings are generated from its
// headers. The description is loaded from an HCL file when one is present,
// otherwise the compiled-in default is used.
package descriptor

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Artifact is one static library the native build is expected to produce.
// Path is relative to the source-tree root. The authored order of artifacts
// is authoritative: it determines linker symbol resolution order.
type Artifact struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

// Library describes the bundled native library.
type Library struct {
	// Name identifies the library in logs and banners.
	Name string `hcl:"name"`

	// Archive is the bundled compressed tarball, relative to the working
	// directory. SourceDir is the top-level directory it unpacks to.
	Archive   string `hcl:"archive"`
	SourceDir string `hcl:"source_dir"`

	Artifacts []Artifact `hcl:"artifact,block"`

	// SearchSubdirs are per-component subdirectories of the source tree
	// declared as library search locations.
	SearchSubdirs []string `hcl:"search_subdirs"`

	// HeaderManifest lists the headers exposed through binding generation,
	// one relative path per line. BindingFile is the generated output,
	// relative to the output directory.
	HeaderManifest string `hcl:"header_manifest"`
	BindingFile    string `hcl:"binding_file"`

	// FunctionFilter and TypeFilter restrict emitted declarations;
	// IgnoredMacros suppresses macro names known to collide with unrelated
	// numeric or network constants.
	FunctionFilter string   `hcl:"function_filter"`
	TypeFilter     string   `hcl:"type_filter"`
	IgnoredMacros  []string `hcl:"ignored_macros,optional"`

	// ShimSources are the glue sources compiled against the source tree.
	ShimSources []string `hcl:"shim_sources"`
}

// Load parses an HCL descriptor file.
func Load(path string) (*Library, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", path, diags)
	}
	var lib Library
	if diags := gohcl.DecodeBody(file.Body, nil, &lib); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", path, diags)
	}
	if err := lib.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &lib, nil
}

func (l *Library) validate() error {
	if l.Name == "" {
		return fmt.Errorf("library name must not be empty")
	}
	if l.Archive == "" || l.SourceDir == "" {
		return fmt.Errorf("library %s: archive and source_dir are required", l.Name)
	}
	if len(l.Artifacts) == 0 {
		return fmt.Errorf("library %s: at least one artifact is required", l.Name)
	}
	for _, a := range l.Artifacts {
		if a.Name == "" || a.Path == "" {
			return fmt.Errorf("library %s: artifact needs both name and path", l.Name)
		}
	}
	if l.HeaderManifest == "" || l.BindingFile == "" {
		return fmt.Errorf("library %s: header_manifest and binding_file are required", l.Name)
	}
	if l.FunctionFilter == "" || l.TypeFilter == "" {
		return fmt.Errorf("library %s: function_filter and type_filter are required", l.Name)
	}
	return nil
}

// Default returns the descriptor for the bundled FFmpeg distribution.
func Default() *Library {
	return &Library{
		Name:      "ffmpeg",
		Archive:   "archive/FFmpeg-FFmpeg-2722fc2.tar.xz",
		SourceDir: "FFmpeg-FFmpeg-2722fc2",
		Artifacts: []Artifact{
			{Name: "avcodec", Path: "libavcodec/libavcodec.a"},
			{Name: "avdevice", Path: "libavdevice/libavdevice.a"},
			{Name: "avfilter", Path: "libavfilter/libavfilter.a"},
			{Name: "avformat", Path: "libavformat/libavformat.a"},
			{Name: "avutil", Path: "libavutil/libavutil.a"},
			{Name: "swresample", Path: "libswresample/libswresample.a"},
			{Name: "swscale", Path: "libswscale/libswscale.a"},
		},
		SearchSubdirs: []string{
			"libavcodec",
			"libavdevice",
			"libavfilter",
			"libavformat",
			"libavresample",
			"libavutil",
			"libpostproc",
			"libswresample",
			"libswscale",
		},
		HeaderManifest: "headers",
		BindingFile:    "bindings_ffmpeg.json",
		FunctionFilter: "av.*",
		TypeFilter:     "AV.*",
		IgnoredMacros: []string{
			"FP_INFINITE",
			"FP_NAN",
			"FP_NORMAL",
			"FP_SUBNORMAL",
			"FP_ZERO",
			"IPPORT_RESERVED",
		},
		ShimSources: []string{
			"cbits/defs.c",
			"cbits/img_utils.c",
		},
	}
}
