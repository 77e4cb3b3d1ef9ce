package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"github.com/peterh/liner"

	"github.com/AnnerChan/SMPLPROJECT/pkg/driver"
	"github.com/AnnerChan/SMPLPROJECT/pkg/interpreter"
	"github.com/AnnerChan/SMPLPROJECT/pkg/runtime"
)

const cliToolVersion = "smpl 0.1.0-dev"

var errManifestNotFound = errors.New(driver.ManifestFileName + " not found")

// Process streams, swapped out by tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log.SetLogLevel(log.Warning)
	args = parseVerbosity(args)
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		return runEntry(args)
	}
}

// parseVerbosity consumes leading -v/-debug flags.
func parseVerbosity(args []string) []string {
	for len(args) > 0 {
		switch args[0] {
		case "-v", "--verbose":
			log.SetLogLevel(log.Verbose)
		case "-debug", "--debug":
			log.SetLogLevel(log.Debug)
		default:
			return args
		}
		args = args[1:]
	}
	return args
}

func runEntry(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	var entry string
	start := "."
	if len(args) == 1 {
		entry = strings.TrimSpace(args[0])
		start = filepath.Dir(entry)
	}

	manifest, err := loadManifestFrom(start)
	switch {
	case err == nil:
	case errors.Is(err, errManifestNotFound):
		manifest = nil
	case entry != "":
		log.Warnf("unable to load manifest (%v); running %s without preludes", err, entry)
		manifest = nil
	default:
		fmt.Fprintf(stderr, "failed to load manifest: %v\n", err)
		return 1
	}

	if entry == "" {
		if manifest == nil {
			fmt.Fprintf(stderr, "smpl run requires a program file (%s not found)\n", driver.ManifestFileName)
			return 1
		}
		if manifest.Entry == "" {
			fmt.Fprintf(stderr, "manifest %s declares no entry program\n", manifest.Path)
			return 1
		}
	}

	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return executeEntry(entry, manifest, lock)
}

func executeEntry(entry string, manifest *driver.Manifest, lock *driver.Lockfile) int {
	home, err := resolveSmplHome()
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve SMPL_HOME: %v\n", err)
		return 1
	}

	program, err := driver.NewLoader(home).LoadPackage(manifest, lock, entry)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load program: %v\n", err)
		return 1
	}

	console, closeConsole := newConsole()
	defer closeConsole()

	interp := interpreter.NewWithIO(stdout, console)
	if _, err := interp.EvaluateProgram(program); err != nil {
		reportRuntimeError(err)
		return 1
	}
	return 0
}

func reportRuntimeError(err error) {
	if kind := runtime.ErrorKindOf(err); kind != "" {
		var msg string
		for cur := err; cur != nil; cur = errors.Unwrap(cur) {
			msg = cur.Error()
		}
		fmt.Fprintf(stderr, "runtime error (%s): %s\n", kind, msg)
		log.LogVf("full error: %v", err)
		return
	}
	fmt.Fprintf(stderr, "runtime error: %v\n", err)
}

// newConsole reads through liner when stdin is an interactive terminal and
// falls back to plain line reading otherwise.
func newConsole() (interpreter.Console, func()) {
	if f, ok := stdin.(*os.File); ok && isTerminal(f) && liner.TerminalSupported() {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		return interpreter.NewLinerConsole(state, ""), func() { _ = state.Close() }
	}
	return interpreter.NewReaderConsole(stdin), func() {}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "smpl deps requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(stderr, "smpl deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	default:
		fmt.Fprintf(stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall() int {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(stderr, "unable to locate %s: %v\n", driver.ManifestFileName, err)
		return 1
	}
	home, err := resolveSmplHome()
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve SMPL_HOME: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(stdout, "Dependencies: %d\n", len(manifest.Dependencies))

	lockPath := filepath.Join(manifest.Dir(), driver.LockfileFileName)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Tool = cliToolVersion

	installer := newDependencyInstaller(manifest, home)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(stdout, line)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "%s %s: %s\n", action, driver.LockfileFileName, lock.Path)
	} else {
		fmt.Fprintf(stdout, "%s already up to date: %s\n", driver.LockfileFileName, lockPath)
	}
	return 0
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	manifestPath, err := findManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestFileName, origin, errManifestNotFound)
		}
		dir = parent
	}
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := filepath.Join(manifest.Dir(), driver.LockfileFileName)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if hasGitDependencies(manifest) {
				return nil, fmt.Errorf("%s missing for %q; run `smpl deps install`", driver.LockfileFileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

func hasGitDependencies(manifest *driver.Manifest) bool {
	for _, dep := range manifest.Dependencies {
		if dep != nil && dep.Git != "" {
			return true
		}
	}
	return false
}

func resolveSmplHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("SMPL_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve SMPL_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".smpl"), nil
}

func printUsage() {
	fmt.Fprintln(stderr, "Usage:")
	fmt.Fprintln(stderr, "  smpl [-v|-debug] run [file.json]")
	fmt.Fprintln(stderr, "  smpl [-v|-debug] <file.json>")
	fmt.Fprintln(stderr, "  smpl deps install")
	fmt.Fprintln(stderr, "  smpl --version")
}
