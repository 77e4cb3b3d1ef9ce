package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/log"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/AnnerChan/SMPLPROJECT/pkg/driver"
)

// dependencyInstaller resolves a manifest's dependency graph into locked
// packages, fetching git sources into the SMPL_HOME cache.
type dependencyInstaller struct {
	manifest  *driver.Manifest
	home      string
	logs      []string
	resolved  map[string]*driver.LockedPackage
	resolving map[string]bool
}

func newDependencyInstaller(manifest *driver.Manifest, home string) *dependencyInstaller {
	return &dependencyInstaller{
		manifest:  manifest,
		home:      home,
		resolved:  make(map[string]*driver.LockedPackage),
		resolving: make(map[string]bool),
	}
}

// Install resolves every dependency, upserts it into lock and drops entries
// that are no longer required. It reports whether the locked set changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if d.manifest == nil {
		return false, d.logs, nil
	}
	if err := d.installAll(d.manifest); err != nil {
		return false, d.logs, err
	}

	names := make([]string, 0, len(d.resolved))
	for name := range d.resolved {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	for _, name := range names {
		if lock.Upsert(d.resolved[name]) {
			changed = true
		}
	}
	if lock.Retain(names) {
		changed = true
	}
	return changed, d.logs, nil
}

func (d *dependencyInstaller) installAll(manifest *driver.Manifest) error {
	names := make([]string, 0, len(manifest.Dependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := d.install(manifest, name, manifest.Dependencies[name]); err != nil {
			return err
		}
	}
	return nil
}

func (d *dependencyInstaller) install(parent *driver.Manifest, name string, spec *driver.DependencySpec) error {
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	if _, ok := d.resolved[name]; ok {
		return nil
	}
	if d.resolving[name] {
		return fmt.Errorf("dependency cycle detected at %s", name)
	}
	d.resolving[name] = true
	defer delete(d.resolving, name)

	var (
		pkg *driver.LockedPackage
		dir string
		err error
	)
	if spec.Path != "" {
		pkg, dir, err = fetchPath(parent, name, spec)
	} else {
		pkg, dir, err = newGitFetcher(d.home).Fetch(name, spec)
	}
	if err != nil {
		return err
	}

	depManifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestFileName))
	if err != nil {
		return fmt.Errorf("dependency %q: %w", name, err)
	}
	for child := range depManifest.Dependencies {
		pkg.Dependencies = append(pkg.Dependencies, child)
	}
	if err := d.installAll(depManifest); err != nil {
		return err
	}

	d.resolved[name] = pkg
	d.logs = append(d.logs, fmt.Sprintf("Resolved %s %s (%s)", name, pkg.Version, pkg.Source))
	log.Infof("deps: resolved %s %s from %s", name, pkg.Version, dir)
	return nil
}

func fetchPath(parent *driver.Manifest, name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	dir := parent.Resolve(spec.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("dependency %q: %s is not a directory", name, dir)
	}
	version := "0.0.0"
	if m, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestFileName)); err == nil && m.Version != "" {
		version = m.Version
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, dir, err)
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  version,
		Source:   "path+" + spec.Path,
		Checksum: checksum,
	}, dir, nil
}

// dirChecksum hashes file names and contents under path, skipping .git.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

type gitFetcher struct {
	home string
}

func newGitFetcher(home string) *gitFetcher {
	return &gitFetcher{home: home}
}

// Fetch clones spec.Git into the cache under a version directory named after
// the pin and the resolved commit. An existing checkout is reused.
func (g *gitFetcher) Fetch(name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, "", fmt.Errorf("dependency %q: git URL required", name)
	}
	if g.home == "" {
		return nil, "", fmt.Errorf("dependency %q: SMPL_HOME is not set", name)
	}

	baseDir := filepath.Dir(driver.PackageCacheDir(g.home, name, "x"))
	version, commit, err := ensureGitCheckout(baseDir, url, spec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}

	checkoutDir := driver.PackageCacheDir(g.home, name, version)
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, checkoutDir, err)
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
	}, checkoutDir, nil
}

func ensureGitCheckout(baseDir, url string, spec *driver.DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		version := sanitizePathSegment(rev)
		if _, err := os.Stat(filepath.Join(baseDir, version)); err == nil {
			return version, rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := sanitizePathSegment(gitPinnedVersion(descriptor, hash.String()))
	targetDir := filepath.Join(baseDir, version)
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return descriptor + "@" + commit
}

func gitRevisionFromSpec(spec *driver.DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

func sanitizePathSegment(segment string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(segment) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}
