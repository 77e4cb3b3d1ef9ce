package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const trivialProgram = `[{"type": "IntegerLiteral", "value": 1}]`

func TestLoaderLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.json"), `{"type": "Program", "body": [
	  {"type": "Definition", "names": ["x"], "values": [{"type": "IntegerLiteral", "value": 2}]},
	  {"type": "Identifier", "name": "x"}
	]}`)

	mod, err := NewLoader("").LoadFile(filepath.Join(dir, "main.json"))
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if mod.Name != "main" {
		t.Fatalf("Name = %q, want main", mod.Name)
	}
	if got := len(mod.AST.Body.Statements); got != 2 {
		t.Fatalf("expected 2 statements, got %d", got)
	}
}

func TestLoaderLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader("")
	if _, err := loader.LoadFile(filepath.Join(dir, "missing.json")); err == nil || !strings.Contains(err.Error(), "loader: read") {
		t.Fatalf("expected read error, got %v", err)
	}
	writeFile(t, filepath.Join(dir, "bad.json"), `{"type": "Mystery"}`)
	if _, err := loader.LoadFile(filepath.Join(dir, "bad.json")); err == nil || !strings.Contains(err.Error(), "Mystery") {
		t.Fatalf("expected decode error naming the node type, got %v", err)
	}
}

func TestLoaderOrdersDependencyPreludes(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "app"), `
name: app
entry: main.json
preludes: [lib.json]
dependencies:
  beta: ../beta
  alpha: ../alpha
`, "main.json", "lib.json")
	writePackage(t, filepath.Join(root, "alpha"), `
name: alpha
preludes: [alpha.json]
dependencies:
  gamma: ../gamma
`, "alpha.json")
	writePackage(t, filepath.Join(root, "beta"), `
name: beta
preludes: [beta.json]
dependencies:
  gamma: ../gamma
`, "beta.json")
	writePackage(t, filepath.Join(root, "gamma"), `
name: gamma
preludes: [gamma.json]
`, "gamma.json")

	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestFileName))
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}
	program, err := NewLoader("").LoadPackage(manifest, nil, "")
	if err != nil {
		t.Fatalf("LoadPackage error: %v", err)
	}
	var names []string
	for _, mod := range program.Modules {
		names = append(names, mod.Name)
	}
	if got, want := strings.Join(names, ","), "gamma/gamma,alpha/alpha,beta/beta,app/lib,app/main"; got != want {
		t.Fatalf("module order = %s, want %s", got, want)
	}
	if program.Entry != program.Modules[len(program.Modules)-1] {
		t.Fatalf("entry should be the last module")
	}
}

func TestLoaderRejectsDependencyCycle(t *testing.T) {
	root := t.TempDir()
	writePackage(t, filepath.Join(root, "app"), `
name: app
entry: main.json
dependencies:
  one: ../one
`, "main.json")
	writePackage(t, filepath.Join(root, "one"), `
name: one
dependencies:
  two: ../two
`)
	writePackage(t, filepath.Join(root, "two"), `
name: two
dependencies:
  one: ../one
`)

	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestFileName))
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}
	_, err = NewLoader("").LoadPackage(manifest, nil, "")
	if err == nil || !strings.Contains(err.Error(), "dependency cycle one -> two -> one") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoaderGitDependencyFromCache(t *testing.T) {
	root := t.TempDir()
	home := t.TempDir()
	writePackage(t, filepath.Join(root, "app"), `
name: app
entry: main.json
dependencies:
  remote:
    git: https://example.com/remote.git
    tag: v1.0.0
`, "main.json")

	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestFileName))
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}

	if _, err := NewLoader(home).LoadPackage(manifest, nil, ""); err == nil || !strings.Contains(err.Error(), "not installed") {
		t.Fatalf("expected not installed error, got %v", err)
	}

	writePackage(t, PackageCacheDir(home, "remote", "v1.0.0"), `
name: remote
preludes: [remote.json]
`, "remote.json")
	lock := NewLockfile("app", "test")
	lock.Upsert(&LockedPackage{Name: "remote", Version: "v1.0.0", Source: "git+https://example.com/remote.git"})

	program, err := NewLoader(home).LoadPackage(manifest, lock, "")
	if err != nil {
		t.Fatalf("LoadPackage error: %v", err)
	}
	if len(program.Modules) != 2 || program.Modules[0].Name != "remote/remote" {
		t.Fatalf("unexpected modules %#v", program.Modules)
	}
}

func TestLoaderExplicitEntryWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "solo.json"), trivialProgram)
	program, err := NewLoader("").LoadPackage(nil, nil, filepath.Join(dir, "solo.json"))
	if err != nil {
		t.Fatalf("LoadPackage error: %v", err)
	}
	if len(program.Modules) != 1 || program.Entry.Name != "solo" {
		t.Fatalf("unexpected program %#v", program)
	}
	if _, err := NewLoader("").LoadPackage(nil, nil, ""); err == nil {
		t.Fatalf("expected error without an entry")
	}
}

func writePackage(t *testing.T, dir, manifest string, programs ...string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, ManifestFileName), strings.TrimSpace(manifest)+"\n")
	for _, name := range programs {
		writeFile(t, filepath.Join(dir, name), trivialProgram)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
