package shim

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	var calls [][]string
	c := &Compiler{
		runCommand: func(_ context.Context, name string, args ...string) (string, error) {
			calls = append(calls, append([]string{name}, args...))
			return "", nil
		},
	}

	archive, err := c.Compile(context.Background(),
		[]string{"cbits/defs.c", "cbits/img_utils.c"}, "/out/lib-x", "/out")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if want := filepath.Join("/out", ArchiveName); archive != want {
		t.Errorf("Compile() = %q, want %q", archive, want)
	}
	if len(calls) != 3 {
		t.Fatalf("ran %d commands, want 2 compiles and 1 archive", len(calls))
	}
	if calls[0][0] != "cc" || !strings.HasSuffix(calls[0][len(calls[0])-1], "defs.o") {
		t.Errorf("first compile = %v", calls[0])
	}
	ar := calls[2]
	if ar[0] != "ar" || ar[1] != "rcs" {
		t.Errorf("archive command = %v, want ar rcs", ar)
	}
}

func TestCompileFailure(t *testing.T) {
	c := &Compiler{
		runCommand: func(_ context.Context, name string, _ ...string) (string, error) {
			if name == "cc" {
				return "defs.c:3: unknown type name", errors.New("exit status 1")
			}
			return "", nil
		},
	}
	_, err := c.Compile(context.Background(), []string{"cbits/defs.c"}, "/src", "/out")
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("Compile() error = %v, want *BuildError", err)
	}
	if !strings.Contains(be.Output, "unknown type name") {
		t.Errorf("BuildError.Output = %q, want compiler diagnostics", be.Output)
	}
}
