package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/log"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
)

// Module is one decoded program file.
type Module struct {
	Name string
	Path string
	AST  *ast.Program
}

// Program holds the entry module and every module in evaluation order. The
// entry is always last.
type Program struct {
	Entry   *Module
	Modules []*Module
}

// Loader decodes program files and orders package preludes ahead of the entry.
type Loader struct {
	home string
}

// NewLoader constructs a loader. home is the SMPL_HOME directory holding the
// git dependency cache; it may be empty when only path dependencies are used.
func NewLoader(home string) *Loader {
	return &Loader{home: home}
}

// PackageCacheDir is where an installed git dependency lives under home.
func PackageCacheDir(home, name, version string) string {
	return filepath.Join(home, "pkg", "src", sanitizeSegment(name), version)
}

// LoadFile decodes a single JSON program.
func (l *Loader) LoadFile(path string) (*Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", abs, err)
	}
	prog, err := ast.DecodeProgram(data)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", abs, err)
	}
	log.LogVf("loader: decoded %s (%d statements)", abs, statementCount(prog))
	return &Module{
		Name: strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		Path: abs,
		AST:  prog,
	}, nil
}

// LoadPackage builds the evaluation order for entry: preludes of every
// dependency (by name, each dependency's own dependencies first), then the
// manifest's own preludes, then the entry. An empty entry falls back to the
// manifest's entry. A nil manifest loads the entry alone.
func (l *Loader) LoadPackage(manifest *Manifest, lock *Lockfile, entry string) (*Program, error) {
	if entry == "" {
		entry = manifest.EntryPath()
	}
	if entry == "" {
		return nil, fmt.Errorf("loader: no entry program given and manifest declares none")
	}

	program := &Program{}
	if manifest != nil {
		walk := &dependencyWalk{loader: l, lock: lock, state: map[string]walkState{}}
		if err := walk.dependencies(manifest, program); err != nil {
			return nil, err
		}
		if err := l.appendPreludes(manifest, program); err != nil {
			return nil, err
		}
	}

	mod, err := l.LoadFile(entry)
	if err != nil {
		return nil, err
	}
	if manifest != nil {
		mod.Name = manifest.Name + "/" + mod.Name
	}
	program.Entry = mod
	program.Modules = append(program.Modules, mod)
	return program, nil
}

func (l *Loader) appendPreludes(manifest *Manifest, program *Program) error {
	for _, path := range manifest.PreludePaths() {
		mod, err := l.LoadFile(path)
		if err != nil {
			return err
		}
		mod.Name = manifest.Name + "/" + mod.Name
		program.Modules = append(program.Modules, mod)
	}
	return nil
}

type walkState int

const (
	walkPending walkState = iota
	walkActive
	walkDone
)

type dependencyWalk struct {
	loader *Loader
	lock   *Lockfile
	state  map[string]walkState
	stack  []string
}

func (w *dependencyWalk) dependencies(manifest *Manifest, program *Program) error {
	names := make([]string, 0, len(manifest.Dependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.visit(manifest, name, manifest.Dependencies[name], program); err != nil {
			return err
		}
	}
	return nil
}

func (w *dependencyWalk) visit(parent *Manifest, name string, spec *DependencySpec, program *Program) error {
	switch w.state[name] {
	case walkDone:
		return nil
	case walkActive:
		cycle := append(append([]string{}, w.stack...), name)
		return fmt.Errorf("loader: dependency cycle %s", strings.Join(cycle, " -> "))
	}
	w.state[name] = walkActive
	w.stack = append(w.stack, name)

	dir, err := w.dir(parent, name, spec)
	if err != nil {
		return err
	}
	depManifest, err := LoadManifest(filepath.Join(dir, ManifestFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loader: dependency %s has no %s in %s", name, ManifestFileName, dir)
		}
		return err
	}
	log.LogVf("loader: dependency %s resolved to %s", name, dir)
	if err := w.dependencies(depManifest, program); err != nil {
		return err
	}
	if err := w.loader.appendPreludes(depManifest, program); err != nil {
		return err
	}

	w.stack = w.stack[:len(w.stack)-1]
	w.state[name] = walkDone
	return nil
}

func (w *dependencyWalk) dir(parent *Manifest, name string, spec *DependencySpec) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("loader: dependency %s has no source", name)
	}
	if spec.Path != "" {
		return parent.Resolve(spec.Path), nil
	}
	locked, ok := w.lock.Find(name)
	if !ok || locked.Version == "" {
		return "", fmt.Errorf("loader: dependency %s is not installed (run `smpl deps install`)", name)
	}
	if w.loader.home == "" {
		return "", fmt.Errorf("loader: dependency %s needs SMPL_HOME to locate its sources", name)
	}
	return PackageCacheDir(w.loader.home, name, locked.Version), nil
}

func statementCount(prog *ast.Program) int {
	if prog == nil || prog.Body == nil {
		return 0
	}
	return len(prog.Body.Statements)
}
