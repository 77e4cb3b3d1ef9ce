package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/AnnerChan/SMPLPROJECT/pkg/driver"
)

const printSumProgram = `{"type": "Program", "body": [
  {"type": "Print", "expression": {"type": "BinaryExpression", "operator": "+",
    "left": {"type": "Identifier", "name": "base"},
    "right": {"type": "IntegerLiteral", "value": 1}}}
]}`

const basePrelude = `{"type": "Program", "body": [
  {"type": "Definition", "names": ["base"], "values": [{"type": "IntegerLiteral", "value": 41}]}
]}`

func captureIO(t *testing.T, input string) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevIn, prevOut, prevErr := stdin, stdout, stderr
	stdin, stdout, stderr = strings.NewReader(input), &out, &errOut
	t.Cleanup(func() {
		stdin, stdout, stderr = prevIn, prevOut, prevErr
	})
	t.Setenv("SMPL_HOME", t.TempDir())
	return &out, &errOut
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "SMPL CLI",
			Email: "smpl@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestVersionAndUsage(t *testing.T) {
	out, errOut := captureIO(t, "")
	if code := run([]string{"--version"}); code != 0 {
		t.Fatalf("version exit code = %d", code)
	}
	if strings.TrimSpace(out.String()) != cliToolVersion {
		t.Fatalf("unexpected version output %q", out.String())
	}
	if code := run(nil); code != 1 {
		t.Fatalf("expected exit 1 without arguments, got %d", code)
	}
	if !strings.Contains(errOut.String(), "Usage:") {
		t.Fatalf("expected usage on stderr, got %q", errOut.String())
	}
}

func TestRunProgramFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.json"), `{"type": "Program", "body": [
	  {"type": "Definition", "names": ["name"], "values": [{"type": "ReadExpression"}]},
	  {"type": "Print", "expression": {"type": "StringLiteral", "value": "hi "}, "terminator": ""},
	  {"type": "Print", "expression": {"type": "Identifier", "name": "name"}}
	]}`)

	out, errOut := captureIO(t, "smpl\n")
	if code := run([]string{"main.json"}); code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, errOut.String())
	}
	if out.String() != "hi smpl\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
}

func TestRunManifestEntryWithPreludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", driver.ManifestFileName), `
name: app
entry: main.json
dependencies:
  numbers: ../numbers
`)
	writeFile(t, filepath.Join(root, "app", "main.json"), printSumProgram)
	writeFile(t, filepath.Join(root, "numbers", driver.ManifestFileName), `
name: numbers
preludes: [base.json]
`)
	writeFile(t, filepath.Join(root, "numbers", "base.json"), basePrelude)
	chdir(t, filepath.Join(root, "app"))

	out, errOut := captureIO(t, "")
	if code := run([]string{"run"}); code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, errOut.String())
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
}

func TestRunReportsRuntimeErrors(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.json"), `{"type": "Program", "body": [
	  {"type": "Print", "expression": {"type": "StringLiteral", "value": "before"}},
	  {"type": "BinaryExpression", "operator": "/",
	    "left": {"type": "IntegerLiteral", "value": 1},
	    "right": {"type": "IntegerLiteral", "value": 0}}
	]}`)

	out, errOut := captureIO(t, "")
	if code := run([]string{"run", "main.json"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if out.String() != "before\n" {
		t.Fatalf("output before the error should be kept, got %q", out.String())
	}
	if got := strings.TrimSpace(errOut.String()); got != "runtime error (ArithmeticError): division by zero" {
		t.Fatalf("unexpected stderr %q", got)
	}
}

func TestRunWithoutManifestOrEntry(t *testing.T) {
	chdir(t, t.TempDir())
	_, errOut := captureIO(t, "")
	if code := run([]string{"run"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "requires a program file") {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func TestDepsInstallPathDependency(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", driver.ManifestFileName), `
name: app
entry: main.json
dependencies:
  numbers: ../numbers
`)
	writeFile(t, filepath.Join(root, "app", "main.json"), printSumProgram)
	writeFile(t, filepath.Join(root, "numbers", driver.ManifestFileName), `
name: numbers
version: 1.2.0
preludes: [base.json]
`)
	writeFile(t, filepath.Join(root, "numbers", "base.json"), basePrelude)
	chdir(t, filepath.Join(root, "app"))

	out, errOut := captureIO(t, "")
	if code := run([]string{"deps", "install"}); code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, errOut.String())
	}
	if !strings.Contains(out.String(), "Created package.lock") {
		t.Fatalf("expected lockfile creation, got %q", out.String())
	}

	lock, err := driver.LoadLockfile(filepath.Join(root, "app", driver.LockfileFileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	pkg, ok := lock.Find("numbers")
	if !ok {
		t.Fatalf("numbers missing from lockfile")
	}
	if pkg.Version != "1.2.0" || pkg.Source != "path+../numbers" || !strings.HasPrefix(pkg.Checksum, "sha256:") {
		t.Fatalf("unexpected locked package %+v", pkg)
	}

	out.Reset()
	if code := run([]string{"deps", "install"}); code != 0 {
		t.Fatalf("second install exit code = %d, stderr %q", code, errOut.String())
	}
	if !strings.Contains(out.String(), "already up to date") {
		t.Fatalf("expected unchanged lockfile, got %q", out.String())
	}
}

func TestDepsInstallDropsRemovedDependency(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	writeFile(t, filepath.Join(appDir, driver.ManifestFileName), `
name: app
dependencies:
  numbers: ../numbers
`)
	writeFile(t, filepath.Join(root, "numbers", driver.ManifestFileName), "name: numbers")
	chdir(t, appDir)

	out, errOut := captureIO(t, "")
	if code := run([]string{"deps", "install"}); code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, errOut.String())
	}

	writeFile(t, filepath.Join(appDir, driver.ManifestFileName), "name: app")
	out.Reset()
	if code := run([]string{"deps", "install"}); code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, errOut.String())
	}
	if !strings.Contains(out.String(), "Updated package.lock") {
		t.Fatalf("expected lockfile update, got %q", out.String())
	}
	lock, err := driver.LoadLockfile(filepath.Join(appDir, driver.LockfileFileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if len(lock.Packages) != 0 {
		t.Fatalf("expected numbers to be dropped, got %#v", lock.Packages)
	}
}

func TestDepsInstallGitDependency(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "numbers-repo")
	writeFile(t, filepath.Join(repoDir, driver.ManifestFileName), `
name: numbers
preludes: [base.json]
`)
	writeFile(t, filepath.Join(repoDir, "base.json"), basePrelude)
	commit := initGitRepo(t, repoDir)

	appDir := filepath.Join(root, "app")
	writeFile(t, filepath.Join(appDir, driver.ManifestFileName), `
name: app
entry: main.json
dependencies:
  numbers:
    git: `+repoDir+`
    rev: `+commit+`
`)
	writeFile(t, filepath.Join(appDir, "main.json"), printSumProgram)
	chdir(t, appDir)

	out, errOut := captureIO(t, "")
	if code := run([]string{"run"}); code != 1 {
		t.Fatalf("expected run to fail before install, got %d", code)
	}
	if !strings.Contains(errOut.String(), "smpl deps install") {
		t.Fatalf("expected install hint, got %q", errOut.String())
	}

	errOut.Reset()
	if code := run([]string{"deps", "install"}); code != 0 {
		t.Fatalf("deps install exit code = %d, stderr %q", code, errOut.String())
	}
	lock, err := driver.LoadLockfile(filepath.Join(appDir, driver.LockfileFileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	pkg, ok := lock.Find("numbers")
	if !ok {
		t.Fatalf("numbers missing from lockfile")
	}
	if pkg.Version != commit || pkg.Source != "git+"+repoDir+"@"+commit {
		t.Fatalf("unexpected locked package %+v", pkg)
	}
	home := os.Getenv("SMPL_HOME")
	if _, err := os.Stat(filepath.Join(driver.PackageCacheDir(home, "numbers", commit), "base.json")); err != nil {
		t.Fatalf("expected cached checkout: %v", err)
	}

	out.Reset()
	if code := run([]string{"run"}); code != 0 {
		t.Fatalf("run exit code = %d, stderr %q", code, errOut.String())
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
}

func TestDepsRequiresSubcommand(t *testing.T) {
	_, errOut := captureIO(t, "")
	if code := run([]string{"deps"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if code := run([]string{"deps", "upgrade"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), `unknown deps subcommand "upgrade"`) {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
