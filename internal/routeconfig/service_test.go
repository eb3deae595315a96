package routeconfig

import (
	"context"
	goerrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"routesync/internal/errors"
	"routesync/internal/pathlock"
	"routesync/internal/program"
	"routesync/internal/routes"
	"routesync/internal/slogutil"
)

const testRoot = "/proj"

var testFile = filepath.Join(testRoot, "config", "routes.js")

// memFS is an in-memory FileSystem.
type memFS struct {
	mu       sync.Mutex
	files    map[string][]byte
	writes   int
	writeErr error
}

func newMemFS(files map[string]string) *memFS {
	fs := &memFS{files: map[string][]byte{}}
	for k, v := range files {
		fs.files[k] = []byte(v)
	}
	return fs
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

func (m *memFS) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *memFS) content(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.files[path])
}

// stubParser builds a fresh Program on every call and ignores the source.
type stubParser struct {
	build func() *program.Program
	err   error
	calls int
}

func (p *stubParser) Parse(_ context.Context, _ []byte, _ program.Language) (*program.Program, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.build(), nil
}

func page(path, component string) *program.Object {
	return &program.Object{Props: []program.Property{
		{Key: "path", Value: &program.String{Value: path}},
		{Key: "component", Value: &program.Ident{Name: component}},
	}}
}

// homeProgram is:
//
//	import Home from '@/pages/Home';
//	import Stale from '@/pages/Stale';
//
//	const routes = [{ path: '/', component: Home }];
//
//	export default routes;
func homeProgram() *program.Program {
	return &program.Program{
		Language: program.LangJavaScript,
		Statements: []program.Statement{
			&program.Import{Span: program.Span{Text: "import Home from '@/pages/Home';"}, Default: "Home", Source: "@/pages/Home"},
			&program.Import{Span: program.Span{Text: "import Stale from '@/pages/Stale';"}, Default: "Stale", Source: "@/pages/Stale"},
			&program.VarDecl{
				Span:    program.Span{Text: "const routes = [{ path: '/', component: Home }];", BlankBefore: true},
				Keyword: "const",
				Name:    "routes",
				Init:    &program.Array{Elements: []program.Expr{page("/", "Home")}},
			},
			&program.RawStatement{Span: program.Span{Text: "export default routes;", BlankBefore: true}},
		},
	}
}

const homeSource = "original source\n"

func newTestService(fs *memFS, parser Parser, opts Options) *Service {
	if opts.File == "" {
		opts.File = "config/routes.js"
	}
	if opts.Logger == nil {
		opts.Logger = slogutil.NewDiscardLogger()
	}
	return New(StaticRoot(testRoot), fs, parser, program.NewPrinter(program.DefaultPrintOptions()), opts)
}

func TestGetAll(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	svc := newTestService(fs, &stubParser{build: homeProgram}, Options{})

	forest, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	want := routes.Forest{{Path: "/", Component: "Home"}}
	if diff := cmp.Diff(want, forest); diff != "" {
		t.Errorf("GetAll() mismatch (-want +got):\n%s", diff)
	}
	if fs.writes != 0 {
		t.Errorf("GetAll() wrote the file %d times", fs.writes)
	}
}

func TestGetAll_MissingDeclaration(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	svc := newTestService(fs, &stubParser{build: homeProgram}, Options{Name: "appRoutes"})

	forest, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(forest) != 0 {
		t.Errorf("GetAll() = %v, want empty", forest)
	}
}

func TestGetAll_ParseFailure(t *testing.T) {
	syntax := &program.SyntaxError{Line: 3, Column: 7, Near: "{"}

	t.Run("lenient", func(t *testing.T) {
		fs := newMemFS(map[string]string{testFile: homeSource})
		svc := newTestService(fs, &stubParser{err: syntax}, Options{})

		forest, err := svc.GetAll(context.Background())
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if forest == nil || len(forest) != 0 {
			t.Errorf("GetAll() = %#v, want empty non-nil forest", forest)
		}
	})

	t.Run("strict", func(t *testing.T) {
		fs := newMemFS(map[string]string{testFile: homeSource})
		svc := newTestService(fs, &stubParser{err: syntax}, Options{Strict: true})

		_, err := svc.GetAll(context.Background())
		if !errors.Is(err, errors.ParseFailed) {
			t.Fatalf("GetAll() error = %v, want %s", err, errors.ParseFailed)
		}
		re, _ := errors.As(err)
		if re.Details != syntax {
			t.Errorf("Details = %v, want the syntax error", re.Details)
		}
		if !goerrors.Is(err, syntax) {
			t.Error("error should wrap the syntax error")
		}
	})

	t.Run("no cgo", func(t *testing.T) {
		fs := newMemFS(map[string]string{testFile: homeSource})
		svc := newTestService(fs, &stubParser{err: program.ErrNoCGO}, Options{})

		_, err := svc.GetAll(context.Background())
		if !errors.Is(err, errors.ParserUnavailable) {
			t.Errorf("GetAll() error = %v, want %s", err, errors.ParserUnavailable)
		}
	})
}

func TestMissingFile(t *testing.T) {
	fs := newMemFS(nil)
	parser := &stubParser{build: homeProgram}
	svc := newTestService(fs, parser, Options{})

	_, err := svc.GetAll(context.Background())
	if !errors.Is(err, errors.RoutesFileMissing) {
		t.Fatalf("GetAll() error = %v, want %s", err, errors.RoutesFileMissing)
	}
	if !goerrors.Is(err, os.ErrNotExist) {
		t.Error("error should wrap os.ErrNotExist")
	}
	if parser.calls != 0 {
		t.Error("parser should not run when the file cannot be read")
	}
}

func TestSync(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	svc := newTestService(fs, &stubParser{build: homeProgram}, Options{})

	res, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	want := `import Home from '@/pages/Home';

const routes = [
  {
    path: '/',
    component: Home,
  },
];

export default routes;
`
	if diff := cmp.Diff(want, fs.content(testFile)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	if len(res.Imports.Removed) != 1 || res.Imports.Removed[0].LocalName != "Stale" {
		t.Errorf("Removed = %v, want [Stale]", res.Imports.Removed)
	}
	if res.Routes != 1 {
		t.Errorf("Routes = %d, want 1", res.Routes)
	}
}

func TestSync_UnchangedDoesNotWrite(t *testing.T) {
	canonical := func() *program.Program {
		return &program.Program{
			Language: program.LangJavaScript,
			Statements: []program.Statement{
				&program.Import{Default: "Home", Source: "@/pages/Home"},
				&program.VarDecl{Keyword: "const", Name: "routes", Init: &program.Array{Elements: []program.Expr{page("/", "Home")}}},
			},
		}
	}
	text, err := program.NewPrinter(program.DefaultPrintOptions()).Format(canonical())
	if err != nil {
		t.Fatal(err)
	}

	fs := newMemFS(map[string]string{testFile: string(text)})
	svc := newTestService(fs, &stubParser{build: canonical}, Options{})

	res, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if res.Changed || fs.writes != 0 {
		t.Errorf("Sync() changed = %v, writes = %d, want no write", res.Changed, fs.writes)
	}
}

func TestBulkCreate(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	svc := newTestService(fs, &stubParser{build: homeProgram}, Options{})

	res, err := svc.BulkCreate(context.Background(), []routes.Node{{Path: "/about", Component: "About"}}, CreateOptions{})
	if err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}
	want := `import Home from '@/pages/Home';
import About from '@/pages/About';

const routes = [
  {
    path: '/about',
    component: About,
  },
  {
    path: '/',
    component: Home,
  },
];

export default routes;
`
	if diff := cmp.Diff(want, fs.content(testFile)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
	if len(res.Imports.Added) != 1 || res.Imports.Added[0].Source != "@/pages/About" {
		t.Errorf("Added = %v", res.Imports.Added)
	}
}

func TestBulkCreate_Replacement(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	svc := newTestService(fs, &stubParser{build: homeProgram}, Options{})

	nodes := []routes.Node{{Path: "/", Component: "Main", Children: []routes.Node{}}}
	if _, err := svc.BulkCreate(context.Background(), nodes, CreateOptions{Replacement: true}); err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}
	want := `import Main from '@/layouts/Main';

const routes = [
  {
    path: '/',
    component: Main,
    children: [],
  },
];

export default routes;
`
	if diff := cmp.Diff(want, fs.content(testFile)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func TestBulkCreate_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		nodes []routes.Node
	}{
		{"empty node", []routes.Node{{}}},
		{"bad component", []routes.Node{{Path: "/x", Component: "not-an-ident"}}},
		{"empty child", []routes.Node{{Path: "/", Component: "Main", Children: []routes.Node{{}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newMemFS(map[string]string{testFile: homeSource})
			parser := &stubParser{build: homeProgram}
			svc := newTestService(fs, parser, Options{})

			_, err := svc.BulkCreate(context.Background(), tt.nodes, CreateOptions{})
			if !errors.Is(err, errors.InvalidInput) {
				t.Errorf("BulkCreate() error = %v, want %s", err, errors.InvalidInput)
			}
			if parser.calls != 0 || fs.writes != 0 {
				t.Error("invalid input should not touch the file")
			}
		})
	}
}

func TestMutations_ParseFailureDoesNotWrite(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	svc := newTestService(fs, &stubParser{err: &program.SyntaxError{Line: 1, Column: 1}}, Options{})
	ctx := context.Background()

	if _, err := svc.BulkCreate(ctx, []routes.Node{{Path: "/a", Component: "A"}}, CreateOptions{}); !errors.Is(err, errors.ParseFailed) {
		t.Errorf("BulkCreate() error = %v, want %s", err, errors.ParseFailed)
	}
	if _, _, err := svc.Delete(ctx, "Home"); !errors.Is(err, errors.ParseFailed) {
		t.Errorf("Delete() error = %v, want %s", err, errors.ParseFailed)
	}
	if _, err := svc.Sync(ctx); !errors.Is(err, errors.ParseFailed) {
		t.Errorf("Sync() error = %v, want %s", err, errors.ParseFailed)
	}
	if fs.writes != 0 || fs.content(testFile) != homeSource {
		t.Error("file should be untouched after parse failures")
	}
}

func TestDelete(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	svc := newTestService(fs, &stubParser{build: homeProgram}, Options{})

	removed, res, err := svc.Delete(context.Background(), "Home")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if diff := cmp.Diff([]string{"/"}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	want := "const routes = [];\n\nexport default routes;\n"
	if diff := cmp.Diff(want, fs.content(testFile)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
	if len(res.Imports.Removed) != 2 {
		t.Errorf("Removed = %v, want Home and Stale", res.Imports.Removed)
	}
}

func TestWriteFailure(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	fs.writeErr = fmt.Errorf("disk full")
	svc := newTestService(fs, &stubParser{build: homeProgram}, Options{})

	_, err := svc.Sync(context.Background())
	if !errors.Is(err, errors.WriteFailed) {
		t.Errorf("Sync() error = %v, want %s", err, errors.WriteFailed)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    string
		lang    program.Language
		wantErr errors.ErrorCode
	}{
		{"javascript", "config/routes.js", filepath.Join(testRoot, "config", "routes.js"), program.LangJavaScript, ""},
		{"typescript", "src/routes.ts", filepath.Join(testRoot, "src", "routes.ts"), program.LangTypeScript, ""},
		{"escapes root", "../routes.js", "", "", errors.ConfigInvalid},
		{"bad extension", "config/routes.json", "", "", errors.ConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemFS(nil), &stubParser{build: homeProgram}, Options{File: tt.file})
			got, err := svc.Resolve()
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got.Path != tt.want || got.Language != tt.lang || got.Detected {
				t.Errorf("Resolve() = %+v", got)
			}
		})
	}
}

func TestResolve_Detect(t *testing.T) {
	root := t.TempDir()
	svc := New(StaticRoot(root), OSFileSystem{}, &stubParser{build: homeProgram}, program.NewPrinter(program.DefaultPrintOptions()), Options{})

	_, err := svc.Resolve()
	if !errors.Is(err, errors.RoutesFileMissing) {
		t.Fatalf("Resolve() error = %v, want %s", err, errors.RoutesFileMissing)
	}

	if err := os.MkdirAll(filepath.Join(root, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "routes.tsx"), []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.RelPath != "src/routes.tsx" || got.Language != program.LangTSX || !got.Detected {
		t.Errorf("Resolve() = %+v", got)
	}
}

func TestLockSerializesOperations(t *testing.T) {
	fs := newMemFS(map[string]string{testFile: homeSource})
	locks := &pathlock.Locks{}
	svc := newTestService(fs, &stubParser{build: homeProgram}, Options{Locks: locks})

	held, err := locks.Acquire(context.Background(), testFile)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = svc.GetAll(ctx)
	if !errors.Is(err, errors.InternalError) || !goerrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("GetAll() error = %v, want a lock timeout", err)
	}

	held.Release()
	if _, err := svc.GetAll(context.Background()); err != nil {
		t.Errorf("GetAll() after release error = %v", err)
	}
}

func TestOSFileSystem_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config", "routes.js")
	fs := OSFileSystem{}

	if err := fs.WriteFile(path, []byte("a\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile(path, []byte("b\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil || string(data) != "b\n" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	assertOnlyFile(t, filepath.Dir(path), "routes.js")
}

func TestOSFileSystem_ConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.js")
	contents := []string{"one\n", "two\n", "three\n", "four\n"}

	var wg sync.WaitGroup
	errs := make(chan error, len(contents)*10)
	for _, c := range contents {
		wg.Add(1)
		go func(c string) {
			defer wg.Done()
			// Separate values model separate processes: no shared lock.
			var fs OSFileSystem
			for i := 0; i < 10; i++ {
				if err := fs.WriteFile(path, []byte(c)); err != nil {
					errs <- err
				}
			}
		}(c)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(contents, string(data)) {
		t.Errorf("file = %q, want one complete write", data)
	}
	assertOnlyFile(t, dir, "routes.js")
}

func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{name}, names); diff != "" {
		t.Errorf("directory entries mismatch (-want +got):\n%s", diff)
	}
}
