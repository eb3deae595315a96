package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"routesync/internal/slogutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		et   EventType
		want string
	}{
		{EventCreate, "create"},
		{EventModify, "modify"},
		{EventDelete, "delete"},
		{EventRename, "rename"},
		{EventType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}

func TestIsIgnored(t *testing.T) {
	w, err := New(DefaultConfig(), slogutil.NewDiscardLogger(), func(context.Context, []Event) {})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	tests := map[string]bool{
		"/p/config/routes.js":             false,
		"/p/config/routes.js.tmp":         true,
		"/p/config/.routes.js.123456.tmp": true,
		"/p/config/.routes.js.swp":        true,
		"/p/config/routes.js~":            true,
		"/p/config/.#routes.js":           true,
	}
	for path, want := range tests {
		if got := w.IsIgnored(path); got != want {
			t.Errorf("IsIgnored(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatchAndUnwatch(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{}, slogutil.NewDiscardLogger(), func(context.Context, []Event) {})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	a := filepath.Join(dir, "a.js")
	b := filepath.Join(dir, "b.js")
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("WatchedFiles() len = %d, want 2", got)
	}

	w.Unwatch(a)
	w.Unwatch(a)
	if got := w.WatchedFiles(); len(got) != 1 || got[0] != b {
		t.Errorf("WatchedFiles() = %v, want [%s]", got, b)
	}

	if err := w.Watch(filepath.Join(dir, "missing", "c.js")); err == nil {
		t.Error("Watch() should fail when the directory does not exist")
	}
}

func TestWatcher_DeliversDebouncedBatch(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "routes.js")
	other := filepath.Join(dir, "other.js")

	batches := make(chan []Event, 4)
	w, err := New(Config{DebounceMs: 30}, slogutil.NewDiscardLogger(), func(_ context.Context, events []Event) {
		batches <- events
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(target); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	for _, content := range []string{"a", "ab", "abc"} {
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case events := <-batches:
		paths := Paths(events)
		if len(paths) != 1 || paths[0] != target {
			t.Errorf("batch paths = %v, want [%s]", paths, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}
}

func TestWatcher_StopIsIdempotentWithoutStart(t *testing.T) {
	w, err := New(Config{}, slogutil.NewDiscardLogger(), func(context.Context, []Event) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestPaths(t *testing.T) {
	events := []Event{{Path: "/a"}, {Path: "/b"}, {Path: "/a"}}
	got := Paths(events)
	if len(got) != 2 || got[0] != "/a" || got[1] != "/b" {
		t.Errorf("Paths() = %v", got)
	}
}

func TestBatchDebouncerAdd(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event

	b := NewBatchDebouncer(40*time.Millisecond, func(events []Event) {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
	})

	for i := 0; i < 3; i++ {
		b.Add(Event{Type: EventModify, Path: "/routes.js"})
		time.Sleep(5 * time.Millisecond)
	}
	if got := b.EventCount(); got != 3 {
		t.Errorf("EventCount() = %d, want 3", got)
	}

	time.Sleep(150 * time.Millisecond)
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 || len(batches[0]) != 3 {
		t.Errorf("batches = %v, want one batch of 3", batches)
	}
}

func TestBatchDebouncerCancel(t *testing.T) {
	called := make(chan struct{}, 1)
	b := NewBatchDebouncer(30*time.Millisecond, func([]Event) { called <- struct{}{} })

	b.Add(Event{Path: "/routes.js"})
	b.Cancel()

	select {
	case <-called:
		t.Error("emit should not run after Cancel")
	case <-time.After(100 * time.Millisecond):
	}
	if got := b.EventCount(); got != 0 {
		t.Errorf("EventCount() = %d, want 0", got)
	}
}

func TestBatchDebouncerFlush(t *testing.T) {
	var got []Event
	b := NewBatchDebouncer(time.Hour, func(events []Event) { got = events })

	b.Add(Event{Path: "/a"})
	b.Add(Event{Path: "/b"})
	b.Flush()

	if len(got) != 2 {
		t.Errorf("Flush() emitted %d events, want 2", len(got))
	}

	got = nil
	b.Flush()
	if got != nil {
		t.Error("Flush() with no events should not emit")
	}
}
