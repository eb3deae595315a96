// Package watcher reports changes to routes files after a quiet period.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// ChangeHandler is called with each debounced batch of events.
type ChangeHandler func(ctx context.Context, events []Event)

// Config contains watcher configuration
type Config struct {
	DebounceMs     int      `json:"debounceMs" mapstructure:"debounceMs"`
	IgnorePatterns []string `json:"ignorePatterns" mapstructure:"ignorePatterns"`
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		DebounceMs: 200,
		IgnorePatterns: []string{
			"*.tmp",
			"*.swp",
			"*~",
			".#*",
		},
	}
}

// Watcher watches individual files. Their parent directories are watched so
// that editors replacing a file by rename are still seen.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	handler ChangeHandler
	fsw     *fsnotify.Watcher
	batch   *BatchDebouncer

	mu      sync.RWMutex
	files   map[string]bool // cleaned absolute paths
	dirs    map[string]int  // watched dir -> number of files in it
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a watcher. Call Watch for each file, then Start.
func New(config Config, logger *slog.Logger, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if config.DebounceMs <= 0 {
		config.DebounceMs = DefaultConfig().DebounceMs
	}
	return &Watcher{
		config:  config,
		logger:  logger,
		handler: handler,
		fsw:     fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
	}, nil
}

// Watch adds a file. The file need not exist yet, its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] {
		return nil
	}
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	w.logger.Debug("Watching file", "path", abs)
	return nil
}

// Unwatch removes a file.
func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	abs = filepath.Clean(abs)
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return
	}
	delete(w.files, abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		_ = w.fsw.Remove(dir)
	}
}

// Start runs the event loop until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	delay := time.Duration(w.config.DebounceMs) * time.Millisecond
	w.batch = NewBatchDebouncer(delay, func(events []Event) {
		if ctx.Err() != nil {
			return
		}
		w.handler(ctx, events)
	})

	w.logger.Info("Starting file watcher", "debounceMs", w.config.DebounceMs, "files", len(w.files))
	go w.run(ctx)
	return nil
}

// Stop stops the event loop, drops pending events, waits for a running
// handler and releases the fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	cancel, done, batch := w.cancel, w.done, w.batch
	w.mu.Unlock()

	if running {
		cancel()
		<-done
		batch.Cancel()
		batch.Wait()
	}
	err := w.fsw.Close()
	w.logger.Info("File watcher stopped")
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	w.mu.RLock()
	watched := w.files[path]
	w.mu.RUnlock()
	if !watched || w.IsIgnored(path) {
		return
	}

	var t EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		t = EventCreate
	case event.Op&fsnotify.Write != 0:
		t = EventModify
	case event.Op&fsnotify.Remove != 0:
		t = EventDelete
	case event.Op&fsnotify.Rename != 0:
		t = EventRename
	default:
		return
	}

	w.logger.Debug("File event", "type", t.String(), "path", path)
	w.batch.Add(Event{Type: t, Path: path, Timestamp: time.Now()})
}

// IsIgnored reports whether the file name matches an ignore pattern.
func (w *Watcher) IsIgnored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.config.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// WatchedFiles returns the watched file paths.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Paths returns the distinct file paths in a batch, in first-seen order.
func Paths(events []Event) []string {
	seen := make(map[string]bool, len(events))
	var out []string
	for _, e := range events {
		if !seen[e.Path] {
			seen[e.Path] = true
			out = append(out, e.Path)
		}
	}
	return out
}
