// Package testutil loads route-file fixtures and compares golden output.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"gopkg.in/yaml.v3"

	"routesync/internal/routes"
)

// Fixture is one directory under testdata/fixtures/.
//
//	<name>/project/   project tree copied into a temp dir before the test
//	<name>/ops.yaml   operations to apply, in order (optional)
//	<name>/expected/  golden files
type Fixture struct {
	Name        string
	Dir         string
	ProjectDir  string
	ExpectedDir string
}

// Op is one step of ops.yaml.
type Op struct {
	Op        string        `yaml:"op"`
	Parent    string        `yaml:"parent,omitempty"`
	Replace   bool          `yaml:"replace,omitempty"`
	Component string        `yaml:"component,omitempty"`
	Nodes     []routes.Node `yaml:"nodes,omitempty"`
}

// LoadFixture loads a named fixture, failing the test on error.
func LoadFixture(t *testing.T, name string) *Fixture {
	t.Helper()

	dir := filepath.Join(fixturesRoot(t), name)
	project := filepath.Join(dir, "project")
	if info, err := os.Stat(project); err != nil || !info.IsDir() {
		t.Fatalf("Fixture project not found: %s", project)
	}

	return &Fixture{
		Name:        name,
		Dir:         dir,
		ProjectDir:  project,
		ExpectedDir: filepath.Join(dir, "expected"),
	}
}

// Ops decodes ops.yaml. A fixture without one has no operations.
func (f *Fixture) Ops(t *testing.T) []Op {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(f.Dir, "ops.yaml"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to read ops: %v", err)
	}
	var ops []Op
	if err := yaml.Unmarshal(data, &ops); err != nil {
		t.Fatalf("Failed to decode %s/ops.yaml: %v", f.Name, err)
	}
	return ops
}

// CopyProject copies the fixture project into a fresh temp dir and returns it.
func (f *Fixture) CopyProject(t *testing.T) string {
	t.Helper()

	dst := t.TempDir()
	err := filepath.WalkDir(f.ProjectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(f.ProjectDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		t.Fatalf("Failed to copy fixture %s: %v", f.Name, err)
	}
	return dst
}

// ExpectedPath returns the path of a golden file.
func (f *Fixture) ExpectedPath(name string) string {
	return filepath.Join(f.ExpectedDir, name)
}

// fixturesRoot returns the absolute path to testdata/fixtures/.
func fixturesRoot(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// internal/testutil -> project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	root := filepath.Join(projectRoot, "testdata", "fixtures")
	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Fatalf("Fixtures root not found: %s", root)
	}
	return root
}

// AvailableFixtures lists the fixture names in sorted order.
func AvailableFixtures(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(fixturesRoot(t))
	if err != nil {
		t.Fatalf("Failed to read fixtures directory: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && e.Name()[0] != '.' {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// ForEachFixture runs fn as a subtest for every fixture.
func ForEachFixture(t *testing.T, fn func(t *testing.T, f *Fixture)) {
	t.Helper()

	names := AvailableFixtures(t)
	if len(names) == 0 {
		t.Skip("No fixtures available")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			fn(t, LoadFixture(t, name))
		})
	}
}
