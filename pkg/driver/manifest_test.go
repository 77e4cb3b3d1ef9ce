package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: list-utils
version: "0.2.0"
entry: src/main.json
preludes:
  - src/pairs.json
  - src/vectors.json
dependencies:
  numbers: ../numbers
  strings:
    git: https://example.com/strings.git
    tag: v1.0.0
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if got, want := manifest.Name, "list_utils"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if manifest.Version != "0.2.0" {
		t.Fatalf("Version = %q, want 0.2.0", manifest.Version)
	}
	if got, want := manifest.EntryPath(), filepath.Join(filepath.Dir(path), "src", "main.json"); got != want {
		t.Fatalf("EntryPath = %q, want %q", got, want)
	}
	preludes := manifest.PreludePaths()
	if len(preludes) != 2 || filepath.Base(preludes[0]) != "pairs.json" || filepath.Base(preludes[1]) != "vectors.json" {
		t.Fatalf("unexpected preludes %#v", preludes)
	}
	if dep := manifest.Dependencies["numbers"]; dep == nil || dep.Path != "../numbers" {
		t.Fatalf("path shorthand not parsed: %#v", dep)
	}
	if dep := manifest.Dependencies["strings"]; dep == nil || dep.Git == "" || dep.Tag != "v1.0.0" {
		t.Fatalf("git dependency not parsed: %#v", dep)
	}
}

func TestLoadManifestSinglePrelude(t *testing.T) {
	path := writeManifest(t, `
name: demo
preludes: lib.json
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}
	if len(manifest.Preludes) != 1 || manifest.Preludes[0] != "lib.json" {
		t.Fatalf("unexpected preludes %#v", manifest.Preludes)
	}
	if manifest.EntryPath() != "" {
		t.Fatalf("expected no entry, got %q", manifest.EntryPath())
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := writeManifest(t, `
name: ""
entry: main.smpl
dependencies:
  util: {}
  both:
    git: https://example.com/both.git
    path: ../both
  pinned:
    git: https://example.com/pinned.git
    tag: v1
    branch: main
  local:
    path: ../local
    rev: abc123
`)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	msg := err.Error()
	for _, fragment := range []string{
		"name must be provided",
		`entry "main.smpl" must be a .json program`,
		"dependencies.util: must specify git or path",
		"dependencies.both: path dependencies cannot also specify git",
		"dependencies.pinned: specify at most one of rev, tag or branch",
		"dependencies.local: rev, tag and branch apply only to git dependencies",
	} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("validation error missing fragment %q: %s", fragment, msg)
		}
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  app: main.json
`)
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "targets") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadManifestEmpty(t *testing.T) {
	path := writeManifest(t, "")
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
