//go:build cgo

package routeconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"routesync/internal/config"
	"routesync/internal/errors"
	"routesync/internal/routes"
	"routesync/internal/slogutil"
)

func writeProjectFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readProjectFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newDiskService(t *testing.T, root string, mutate func(*config.Config)) *Service {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	svc, err := NewFromConfig(root, cfg, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	return svc
}

const lazyModule = `import { lazy } from 'react';
import BasicLayout from '@/layouts/BasicLayout';
import Old from '@/pages/Old';

const Home = lazy(() => import('@/pages/Home'));

const routes = [
  {
    path: '/',
    component: BasicLayout,
    children: [
      { path: '/', component: Home, exact: true },
    ],
  },
];

export default routes;
`

func TestService_LazyFileRoundTrip(t *testing.T) {
	root := t.TempDir()
	path := writeProjectFile(t, root, "config/routes.js", lazyModule)
	svc := newDiskService(t, root, nil)
	ctx := context.Background()

	forest, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	want := routes.Forest{{
		Path:      "/",
		Component: "BasicLayout",
		Children:  []routes.Node{{Path: "/", Component: "Home", Exact: routes.Bool(true)}},
	}}
	if diff := cmp.Diff(want, forest); diff != "" {
		t.Fatalf("GetAll() mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.BulkCreate(ctx, []routes.Node{{Path: "/admin", Component: "Admin"}}, CreateOptions{ParentPath: "/"})
	if err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}
	afterCreate := `import { lazy } from 'react';
import BasicLayout from '@/layouts/BasicLayout';

const Admin = lazy(() => import('@/pages/Admin'));
const Home = lazy(() => import('@/pages/Home'));

const routes = [
  {
    path: '/',
    component: BasicLayout,
    children: [
      {
        path: '/admin',
        component: Admin,
      },
      {
        path: '/',
        component: Home,
        exact: true,
      },
    ],
  },
];

export default routes;
`
	if diff := cmp.Diff(afterCreate, readProjectFile(t, path)); diff != "" {
		t.Fatalf("after BulkCreate (-want +got):\n%s", diff)
	}

	res, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if res.Changed {
		t.Error("Sync() after BulkCreate should not change the file")
	}

	removed, _, err := svc.Delete(ctx, "Admin")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if diff := cmp.Diff([]string{"/admin"}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	afterDelete := `import { lazy } from 'react';
import BasicLayout from '@/layouts/BasicLayout';

const Home = lazy(() => import('@/pages/Home'));

const routes = [
  {
    path: '/',
    component: BasicLayout,
    children: [
      {
        path: '/',
        component: Home,
        exact: true,
      },
    ],
  },
];

export default routes;
`
	if diff := cmp.Diff(afterDelete, readProjectFile(t, path)); diff != "" {
		t.Errorf("after Delete (-want +got):\n%s", diff)
	}
}

func TestService_LegacyLayoutUsesRelativeImports(t *testing.T) {
	root := t.TempDir()
	path := writeProjectFile(t, root, "src/routes.ts", "export const routes = [];\n")
	svc := newDiskService(t, root, nil)

	nodes := []routes.Node{{
		Path:      "/",
		Component: "Main",
		Children:  []routes.Node{{Path: "/x", Component: "X"}},
	}}
	if _, err := svc.BulkCreate(context.Background(), nodes, CreateOptions{}); err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}
	want := `import Main from './layouts/Main';
import X from './pages/X';

export const routes = [
  {
    path: '/',
    component: Main,
    children: [
      {
        path: '/x',
        component: X,
      },
    ],
  },
];
`
	if diff := cmp.Diff(want, readProjectFile(t, path)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func TestService_ReusesLazyCallee(t *testing.T) {
	root := t.TempDir()
	path := writeProjectFile(t, root, "config/routes.js", `import React from 'react';

const Home = React.lazy(() => import('@/pages/Home'));

const routes = [{ path: '/', component: Home }];
`)
	svc := newDiskService(t, root, nil)

	if _, err := svc.BulkCreate(context.Background(), []routes.Node{{Path: "/about", Component: "About"}}, CreateOptions{}); err != nil {
		t.Fatalf("BulkCreate() error = %v", err)
	}
	want := `import React from 'react';

const About = React.lazy(() => import('@/pages/About'));
const Home = React.lazy(() => import('@/pages/Home'));

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
`
	if diff := cmp.Diff(want, readProjectFile(t, path)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func TestService_SyncAddsMissingDeclaration(t *testing.T) {
	root := t.TempDir()
	path := writeProjectFile(t, root, "config/routes.js", "import x from 'y';\n")
	svc := newDiskService(t, root, nil)

	res, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	want := "import x from 'y';\n\nconst routes = [];\n\nexport default routes;\n"
	if diff := cmp.Diff(want, readProjectFile(t, path)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func TestService_ParseFailurePolicy(t *testing.T) {
	const broken = "const routes = [ { path: '/' ,\n"
	root := t.TempDir()
	path := writeProjectFile(t, root, "config/routes.js", broken)
	ctx := context.Background()

	lenient := newDiskService(t, root, nil)
	forest, err := lenient.GetAll(ctx)
	if err != nil || len(forest) != 0 {
		t.Errorf("lenient GetAll() = %v, %v; want empty forest", forest, err)
	}
	if _, err := lenient.BulkCreate(ctx, []routes.Node{{Path: "/a", Component: "A"}}, CreateOptions{}); !errors.Is(err, errors.ParseFailed) {
		t.Errorf("BulkCreate() error = %v, want %s", err, errors.ParseFailed)
	}

	strict := newDiskService(t, root, func(c *config.Config) { c.Routes.Strict = true })
	if _, err := strict.GetAll(ctx); !errors.Is(err, errors.ParseFailed) {
		t.Errorf("strict GetAll() error = %v, want %s", err, errors.ParseFailed)
	}

	if got := readProjectFile(t, path); got != broken {
		t.Errorf("file changed after parse failures: %q", got)
	}
}

func TestService_ConfiguredFileAndName(t *testing.T) {
	root := t.TempDir()
	path := writeProjectFile(t, root, "app/router.js", "export const appRoutes = [{ path: '/', component: Home }];\n")
	svc := newDiskService(t, root, func(c *config.Config) {
		c.Routes.File = "app/router.js"
		c.Routes.Name = "appRoutes"
	})

	components, err := svc.Components(context.Background())
	if err != nil {
		t.Fatalf("Components() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Home"}, components); diff != "" {
		t.Errorf("Components() mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	want := `import Home from '@/pages/Home';

export const appRoutes = [
  {
    path: '/',
    component: Home,
  },
];
`
	if diff := cmp.Diff(want, readProjectFile(t, path)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}

func TestService_MultiNameImportsAreNotDuplicated(t *testing.T) {
	root := t.TempDir()
	src := `import * as Home from '@/pages/Home';
import { A, B } from '@/pages';

const routes = [{ path: '/', component: Home }, { path: '/b', component: B }];
`
	path := writeProjectFile(t, root, "config/routes.js", src)
	svc := newDiskService(t, root, nil)

	if _, err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	want := `import * as Home from '@/pages/Home';
import { A, B } from '@/pages';

const routes = [
  {
    path: '/b',
    component: B,
  },
  {
    path: '/',
    component: Home,
  },
];
`
	if diff := cmp.Diff(want, readProjectFile(t, path)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}
}
