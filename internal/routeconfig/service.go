// Package routeconfig reads, edits and rewrites a project's routes module.
//
// Every Service operation is one transaction over the routes file: read,
// parse, extract the route forest, optionally mutate it, sort it,
// synchronize the layout and page imports, serialize, format and write.
// Nothing is cached between operations.
package routeconfig

import (
	"bytes"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"routesync/internal/config"
	"routesync/internal/errors"
	"routesync/internal/imports"
	"routesync/internal/pathlock"
	"routesync/internal/paths"
	"routesync/internal/program"
	"routesync/internal/project"
	"routesync/internal/routes"
	"routesync/internal/slogutil"
)

// FileSystem reads and writes whole files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// Parser turns module source into a Program.
type Parser interface {
	Parse(ctx context.Context, source []byte, lang program.Language) (*program.Program, error)
}

// Formatter renders a Program as module source.
type Formatter interface {
	Format(p *program.Program) ([]byte, error)
}

// RootProvider supplies the project root directory.
type RootProvider interface {
	Root() string
}

// StaticRoot is a RootProvider for a fixed directory.
type StaticRoot string

// Root returns the directory.
func (r StaticRoot) Root() string { return string(r) }

// Options configures a Service.
type Options struct {
	// File is the routes file relative to the project root. Empty means
	// detect it from the conventional locations.
	File string

	// Name is the routes declaration name. Defaults to "routes".
	Name string

	// Strict makes GetAll report parse failures instead of returning an
	// empty forest.
	Strict bool

	Conventions imports.Conventions
	Logger      *slog.Logger

	// Locks serializes operations per file. Services sharing a Locks value
	// exclude each other; nil gives the Service its own.
	Locks *pathlock.Locks
}

// Service runs route transactions against one project.
type Service struct {
	root      RootProvider
	fs        FileSystem
	parser    Parser
	formatter Formatter
	opts      Options
	logger    *slog.Logger
	locks     *pathlock.Locks
}

// New creates a Service from its collaborators.
func New(root RootProvider, fs FileSystem, parser Parser, formatter Formatter, opts Options) *Service {
	if opts.Name == "" {
		opts.Name = routes.DefaultName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	locks := opts.Locks
	if locks == nil {
		locks = &pathlock.Locks{}
	}
	return &Service{
		root:      root,
		fs:        fs,
		parser:    parser,
		formatter: formatter,
		opts:      opts,
		logger:    logger,
		locks:     locks,
	}
}

// NewFromConfig creates a Service on the local disk using the tree-sitter
// parser and a printer configured from cfg.
func NewFromConfig(root string, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if !program.IsAvailable() {
		return nil, errors.New(errors.ParserUnavailable, "routesync was built without CGO", program.ErrNoCGO)
	}
	printer := program.NewPrinter(program.PrintOptions{
		Indent:      cfg.Format.Indent,
		SingleQuote: cfg.Format.SingleQuote,
		Semicolons:  cfg.Format.Semicolons,
	})
	return New(StaticRoot(root), OSFileSystem{}, program.NewParser(), printer, Options{
		File:        cfg.Routes.File,
		Name:        cfg.Routes.Name,
		Strict:      cfg.Routes.Strict,
		Conventions: ConventionsFromConfig(cfg),
		Logger:      logger,
	}), nil
}

// ConventionsFromConfig maps the imports section of cfg.
func ConventionsFromConfig(cfg *config.Config) imports.Conventions {
	return imports.Conventions{
		LayoutsDir:  cfg.Imports.LayoutsDir,
		PagesDir:    cfg.Imports.PagesDir,
		LazyCallee:  cfg.Imports.LazyCallee,
		AliasPrefix: cfg.Imports.AliasPrefix,
	}
}

// Target is the resolved routes file of a project.
type Target struct {
	Path     string           `json:"path"`
	RelPath  string           `json:"relPath"`
	Language program.Language `json:"language"`
	Detected bool             `json:"detected"`
}

// Resolve locates the routes file without reading it.
func (s *Service) Resolve() (Target, error) {
	root := s.root.Root()
	rel := s.opts.File
	detected := false
	if rel == "" {
		found, ok := project.DetectRoutesFile(root)
		if !ok {
			return Target{}, errors.New(errors.RoutesFileMissing, "no routes file found in "+root, nil).
				WithDetails(map[string]interface{}{"candidates": project.Candidates()})
		}
		rel = found.Path
		detected = true
	}

	full, err := paths.ResolveInProject(root, rel)
	if err != nil {
		return Target{}, errors.New(errors.ConfigInvalid, "invalid routes file", err)
	}
	lang, ok := program.LanguageFromPath(full)
	if !ok {
		return Target{}, errors.New(errors.ConfigInvalid, "unsupported routes file extension: "+rel, nil)
	}
	return Target{Path: full, RelPath: paths.NormalizePath(rel), Language: lang, Detected: detected}, nil
}

// txn is the state of one operation.
type txn struct {
	target Target
	source []byte
	prog   *program.Program
	log    *slog.Logger
	lock   *pathlock.Lock
}

func (s *Service) begin(ctx context.Context, op string) (*txn, error) {
	target, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	log := s.logger.With("txn", uuid.New().String(), "op", op, "file", target.RelPath)

	lock, err := s.locks.Acquire(ctx, target.Path)
	if err != nil {
		return nil, errors.New(errors.InternalError, "waiting for routes file lock", err)
	}

	source, err := s.fs.ReadFile(target.Path)
	if err != nil {
		lock.Release()
		log.Error("Failed to read routes file", "error", err)
		return nil, errors.New(errors.RoutesFileMissing, "cannot read "+target.RelPath, err)
	}
	log.Debug("Read routes file", "bytes", len(source))
	return &txn{target: target, source: source, log: log, lock: lock}, nil
}

func (t *txn) end() {
	t.lock.Release()
}

func (s *Service) parse(ctx context.Context, t *txn) error {
	prog, err := s.parser.Parse(ctx, t.source, t.target.Language)
	if err != nil {
		if goerrors.Is(err, program.ErrNoCGO) {
			return errors.New(errors.ParserUnavailable, "parser not available in this build", err)
		}
		re := errors.New(errors.ParseFailed, "cannot parse "+t.target.RelPath, err)
		var syn *program.SyntaxError
		if goerrors.As(err, &syn) {
			re.WithDetails(syn)
		}
		return re
	}
	t.prog = prog
	return nil
}

func (s *Service) extract(t *txn) routes.Forest {
	forest, ok := routes.Extract(t.prog, s.opts.Name)
	if !ok {
		t.log.Info("Routes declaration not found", "name", s.opts.Name)
	}
	return forest
}

// Result describes a committed transaction.
type Result struct {
	Changed bool           `json:"changed"`
	Imports imports.Report `json:"imports"`
	Routes  int            `json:"routes"`
}

// commit runs the sort, synchronize, serialize, format and write steps.
func (s *Service) commit(t *txn, forest routes.Forest) (Result, error) {
	routes.Sort(forest)

	report := imports.Synchronize(t.prog, forest, imports.Options{
		ConfigPath:  t.target.Path,
		Conventions: s.opts.Conventions,
	})
	routes.Replace(t.prog, s.opts.Name, forest)

	out, err := s.formatter.Format(t.prog)
	if err != nil {
		return Result{}, errors.New(errors.InternalError, "formatting routes file", err)
	}

	res := Result{Imports: report, Routes: forest.Count()}
	if bytes.Equal(out, t.source) {
		t.log.Debug("Routes file already canonical")
		return res, nil
	}

	if err := s.fs.WriteFile(t.target.Path, out); err != nil {
		t.log.Error("Failed to write routes file", "error", err)
		return Result{}, errors.New(errors.WriteFailed, "cannot write "+t.target.RelPath, err)
	}
	res.Changed = true
	t.log.Info("Routes file written",
		"routes", res.Routes,
		"importsAdded", len(report.Added),
		"importsRemoved", len(report.Removed),
		"bytes", len(out),
	)
	return res, nil
}

// GetAll returns the route forest. A file that does not parse yields an
// empty forest unless the Service is strict.
func (s *Service) GetAll(ctx context.Context) (routes.Forest, error) {
	t, err := s.begin(ctx, "getAll")
	if err != nil {
		return nil, err
	}
	defer t.end()

	if err := s.parse(ctx, t); err != nil {
		if s.opts.Strict || errors.CodeOf(err) != errors.ParseFailed {
			return nil, err
		}
		t.log.Warn("Routes file did not parse, treating as empty", "error", err)
		return routes.Forest{}, nil
	}

	forest := s.extract(t)
	t.log.Debug("Loaded routes", "count", forest.Count())
	return forest, nil
}

// CreateOptions controls BulkCreate.
type CreateOptions = routes.CreateOptions

// BulkCreate adds nodes to the forest and rewrites the file.
func (s *Service) BulkCreate(ctx context.Context, nodes []routes.Node, opts CreateOptions) (Result, error) {
	if err := ValidateNodes(nodes); err != nil {
		return Result{}, err
	}

	t, err := s.begin(ctx, "bulkCreate")
	if err != nil {
		return Result{}, err
	}
	defer t.end()

	if err := s.parse(ctx, t); err != nil {
		return Result{}, err
	}

	forest, fellBack := routes.BulkCreate(s.extract(t), nodes, opts)
	if fellBack {
		t.log.Info("Parent layout not found, appending at top level", "parent", opts.ParentPath)
	}
	t.log.Debug("Adding routes", "count", len(nodes), "replacement", opts.Replacement, "parent", opts.ParentPath)

	return s.commit(t, forest)
}

// Delete removes every page route bound to component and rewrites the file.
// It returns the full paths of the removed routes, in tree order.
func (s *Service) Delete(ctx context.Context, component string) ([]string, Result, error) {
	t, err := s.begin(ctx, "delete")
	if err != nil {
		return nil, Result{}, err
	}
	defer t.end()

	if err := s.parse(ctx, t); err != nil {
		return nil, Result{}, err
	}

	forest, removed := routes.Delete(s.extract(t), component)
	t.log.Debug("Deleted routes", "component", component, "removed", len(removed))

	res, err := s.commit(t, forest)
	if err != nil {
		return nil, Result{}, err
	}
	return removed, res, nil
}

// Sync rewrites the file in canonical form without changing the forest.
// The file is only written when its text changes.
func (s *Service) Sync(ctx context.Context) (Result, error) {
	t, err := s.begin(ctx, "sync")
	if err != nil {
		return Result{}, err
	}
	defer t.end()

	if err := s.parse(ctx, t); err != nil {
		return Result{}, err
	}
	return s.commit(t, s.extract(t))
}

// Components returns the component names referenced by the routes file.
func (s *Service) Components(ctx context.Context) ([]string, error) {
	forest, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return forest.Components(), nil
}

// ValidateNodes checks nodes before they are written. Every node needs at
// least one field, and component names must be usable as import bindings.
func ValidateNodes(nodes []routes.Node) error {
	var check func(nodes []routes.Node, where string) error
	check = func(nodes []routes.Node, where string) error {
		for i, n := range nodes {
			at := fmt.Sprintf("%s[%d]", where, i)
			if n.IsEmpty() {
				return errors.New(errors.InvalidInput, at+": route has no fields", nil)
			}
			if n.Component != "" && !program.IsIdentifier(n.Component) {
				return errors.New(errors.InvalidInput, at+": component "+n.Component+" is not an identifier", nil)
			}
			if err := check(n.Children, at+".children"); err != nil {
				return err
			}
		}
		return nil
	}
	return check(nodes, "nodes")
}
