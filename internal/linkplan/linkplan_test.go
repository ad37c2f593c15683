package linkplan

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/avkit/avbuild/internal/descriptor"
)

func testLib() *descriptor.Library {
	return &descriptor.Library{
		Artifacts: []descriptor.Artifact{
			{Name: "avcodec", Path: "libavcodec/libavcodec.a"},
			{Name: "avutil", Path: "libavutil/libavutil.a"},
		},
		SearchSubdirs: []string{"libavcodec", "libavutil"},
	}
}

func TestForUnix(t *testing.T) {
	plan := For("linux", "/out/lib-x", testLib())

	wantPaths := []string{
		"/out/lib-x",
		filepath.Join("/out/lib-x", "libavcodec"),
		filepath.Join("/out/lib-x", "libavutil"),
	}
	var gotPaths []string
	for _, d := range plan {
		if d.Kind == KindSearchPath {
			gotPaths = append(gotPaths, d.Value)
		}
	}
	if !slices.Equal(gotPaths, wantPaths) {
		t.Errorf("search paths = %v, want %v", gotPaths, wantPaths)
	}
	for _, d := range plan {
		if d.Kind == KindSystemLib {
			t.Errorf("unexpected system lib %q on linux", d.Value)
		}
	}
}

func TestForWindows(t *testing.T) {
	plan := For("windows", `C:\out\lib-x`, testLib())

	var subdirHit bool
	for _, d := range plan {
		if d.Kind == KindSearchPath && strings.Contains(d.Value, "libavcodec") {
			subdirHit = true
		}
	}
	if subdirHit {
		t.Error("windows plan declares source subdirectories, want fixed roots instead")
	}

	var system []string
	for _, d := range plan {
		if d.Kind == KindSystemLib {
			system = append(system, d.Value)
		}
	}
	if want := []string{"Bcrypt", "Secur32", "Ole32", "User32"}; !slices.Equal(system, want) {
		t.Errorf("system libs = %v, want %v", system, want)
	}
}

func TestStaticLinkOrderPreserved(t *testing.T) {
	plan := For("linux", "/out/lib-x", testLib())
	if want := []string{"avcodec", "avutil"}; !slices.Equal(plan.StaticLibs(), want) {
		t.Errorf("StaticLibs() = %v, want authored order %v", plan.StaticLibs(), want)
	}
}

func TestUnknownPlatformFallsBackToUnix(t *testing.T) {
	plan := For("plan9", "/out/lib-x", testLib())
	var paths int
	for _, d := range plan {
		if d.Kind == KindSearchPath {
			paths++
		}
	}
	// Source root plus both subdirectories.
	if paths != 3 {
		t.Errorf("search path count = %d, want 3", paths)
	}
}

func TestWriteTo(t *testing.T) {
	var sb strings.Builder
	plan := Plan{
		{Kind: KindSearchPath, Value: "/out/lib-x"},
		{Kind: KindStaticLib, Value: "avcodec"},
		{Kind: KindSystemLib, Value: "Ole32"},
	}
	if _, err := plan.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	want := "link-search native=/out/lib-x\nlink-lib static=avcodec\nlink-lib Ole32\n"
	if sb.String() != want {
		t.Errorf("WriteTo() output = %q, want %q", sb.String(), want)
	}
}
