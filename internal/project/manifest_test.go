package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "capy.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write capy.toml: %v", err)
	}
	return path
}

func TestLoadDefaultsPointerWidthTo64(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "demo"

[build]
entry = "main.capy"
`)
	m, err := Load(filepath.Join(dir, "capy.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Config.Build.PointerWidth != 64 {
		t.Fatalf("expected default pointer width 64, got %d", m.Config.Build.PointerWidth)
	}
}

func TestLoadRejectsMissingEntry(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "demo"

[build]
`)
	if _, err := Load(filepath.Join(dir, "capy.toml")); err == nil {
		t.Fatalf("expected an error for missing [build].entry")
	}
}

func TestLoadRejectsBadPointerWidth(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "demo"

[build]
entry = "main.capy"
pointer_width = 16
`)
	if _, err := Load(filepath.Join(dir, "capy.toml")); err == nil {
		t.Fatalf("expected an error for an unsupported pointer width")
	}
}

func TestSourceFilesDedupesAndLeadsWithEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "demo"

[build]
entry = "main.capy"
files = ["main.capy", "util.capy"]
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m.SourceFiles()
	want := []string{"main.capy", "util.capy"}
	if len(got) != len(want) {
		t.Fatalf("SourceFiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SourceFiles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindManifestWalksUpToParent(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname=\"demo\"\n[build]\nentry=\"main.capy\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: path=%q ok=%v err=%v", path, ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("FindManifest found %q, want directory %q", path, root)
	}
}
