package buildenv

import (
	"errors"
	"testing"
)

func TestCaptureRequiresOutDir(t *testing.T) {
	t.Setenv(VarOutDir, "")
	_, err := Capture()
	if err == nil {
		t.Fatal("Capture() succeeded without OUT_DIR")
	}
	var missing *MissingVarError
	if !errors.As(err, &missing) {
		t.Fatalf("Capture() error = %T, want *MissingVarError", err)
	}
	if missing.Name != VarOutDir {
		t.Errorf("missing.Name = %q, want %q", missing.Name, VarOutDir)
	}
}

func TestCapture(t *testing.T) {
	t.Setenv(VarOutDir, "/tmp/out")
	t.Setenv(VarProfile, "Release")
	t.Setenv(VarOptLevel, "3")

	env, err := Capture()
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if got := env.OutputDir(); got != "/tmp/out" {
		t.Errorf("OutputDir() = %q, want %q", got, "/tmp/out")
	}
	if !env.IsRelease() {
		t.Error("IsRelease() = false, want true (case-insensitive match)")
	}
	if env.IsDebug() {
		t.Error("IsDebug() = true, want false")
	}
	if !env.OptLevelEquals(3) {
		t.Error("OptLevelEquals(3) = false, want true")
	}
	if env.OptLevelEquals(0) {
		t.Error("OptLevelEquals(0) = true, want false")
	}
}

func TestOverrideFlag(t *testing.T) {
	env := New("/out", "linux", map[string]string{
		VarForceNative: "1",
		VarProfile:     "DEBUG",
	})

	t.Run("set and matching", func(t *testing.T) {
		if !env.ForceNativeBuild() {
			t.Error("ForceNativeBuild() = false, want true")
		}
	})
	t.Run("case insensitive", func(t *testing.T) {
		if !env.IsDebug() {
			t.Error("IsDebug() = false, want true for PROFILE=DEBUG")
		}
	})
	t.Run("unset never matches", func(t *testing.T) {
		if env.ForceBindgen() {
			t.Error("ForceBindgen() = true, want false when unset")
		}
		if env.OverrideFlag(VarOptLevel, "") {
			t.Error("OverrideFlag on unset var matched empty string")
		}
	})
}
