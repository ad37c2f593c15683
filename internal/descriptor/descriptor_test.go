package descriptor

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleHCL = `
name       = "libx"
archive    = "archive/lib-x.tar.gz"
source_dir = "lib-x"

artifact "xcore" {
  path = "src/libxcore.a"
}

artifact "xutil" {
  path = "util/libxutil.a"
}

search_subdirs  = ["src", "util"]
header_manifest = "headers"
binding_file    = "bindings_libx.json"
function_filter = "x_.*"
type_filter     = "X.*"
ignored_macros  = ["X_VERSION"]
shim_sources    = ["glue/glue.c"]
`

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avbuild.hcl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	lib, err := Load(writeDescriptor(t, sampleHCL))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if lib.Name != "libx" {
		t.Errorf("Name = %q, want %q", lib.Name, "libx")
	}
	if len(lib.Artifacts) != 2 {
		t.Fatalf("len(Artifacts) = %d, want 2", len(lib.Artifacts))
	}
	// Block order in the file is the authoritative link order.
	if lib.Artifacts[0].Name != "xcore" || lib.Artifacts[1].Name != "xutil" {
		t.Errorf("artifact order = [%s %s], want [xcore xutil]",
			lib.Artifacts[0].Name, lib.Artifacts[1].Name)
	}
	if lib.Artifacts[0].Path != "src/libxcore.a" {
		t.Errorf("Artifacts[0].Path = %q, want %q", lib.Artifacts[0].Path, "src/libxcore.a")
	}
	if len(lib.IgnoredMacros) != 1 || lib.IgnoredMacros[0] != "X_VERSION" {
		t.Errorf("IgnoredMacros = %v, want [X_VERSION]", lib.IgnoredMacros)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", `name = `},
		{"missing artifacts", `
name            = "libx"
archive         = "a.tar.gz"
source_dir      = "lib-x"
search_subdirs  = []
header_manifest = "headers"
binding_file    = "b.json"
function_filter = "x_.*"
type_filter     = "X.*"
shim_sources    = []
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeDescriptor(t, tt.content)); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.hcl")); err == nil {
		t.Error("Load() succeeded for a missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	lib := Default()
	if err := lib.validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if got := len(lib.Artifacts); got != 7 {
		t.Errorf("len(Artifacts) = %d, want 7", got)
	}
	if lib.Artifacts[0].Name != "avcodec" {
		t.Errorf("Artifacts[0].Name = %q, want avcodec", lib.Artifacts[0].Name)
	}
}
