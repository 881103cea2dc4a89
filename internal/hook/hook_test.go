package hook

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeHook creates a hook directory with a manifest and a shell script.
func writeHook(t *testing.T, dir, name, script string, events ...string) *Hook {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	hookPath := filepath.Join(dir, name)
	if err := os.MkdirAll(hookPath, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}

	manifest := Manifest{
		Name:       name,
		Version:    "1.0.0",
		Executable: "run.sh",
		Events:     events,
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookPath, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	scriptPath := filepath.Join(hookPath, "run.sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Hook{Manifest: manifest, Path: hookPath, Executable: scriptPath}
}

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	writeHook(t, dir, "progress-log", `echo '{"success":true}'`, EventValidated)
	writeHook(t, dir, "on-skip", `echo '{"success":true}'`, EventSkipped)

	// Invalid manifest and stray file are ignored.
	os.MkdirAll(filepath.Join(dir, "broken"), 0755)
	os.WriteFile(filepath.Join(dir, "broken", ManifestFile), []byte("{not json"), 0644)
	os.WriteFile(filepath.Join(dir, "README"), []byte("hooks"), 0644)

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	hooks := m.List()
	if len(hooks) != 2 || hooks[0].Manifest.Name != "on-skip" {
		t.Fatalf("expected 2 sorted hooks, got %d", len(hooks))
	}

	h, err := m.Get("progress-log")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !strings.HasSuffix(h.Executable, filepath.Join("progress-log", "run.sh")) {
		t.Errorf("unexpected executable %q", h.Executable)
	}

	subs := m.Subscribed(EventValidated)
	if len(subs) != 1 || subs[0].Manifest.Name != "progress-log" {
		t.Errorf("unexpected subscribers %+v", subs)
	}
}

func TestManager_MissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"))
	if err := m.Discover(); err != nil {
		t.Fatalf("missing dir should not be an error: %v", err)
	}
	if len(m.List()) != 0 {
		t.Error("expected no hooks")
	}
	if _, err := m.Get("x"); err != ErrHookNotFound {
		t.Errorf("expected ErrHookNotFound, got %v", err)
	}
}
