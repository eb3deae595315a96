// Package pathlock serializes in-process work on the same file path.
package pathlock

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locks hands out exclusive per-path locks. The zero value is ready to use.
type Locks struct {
	mu    sync.Mutex
	paths map[string]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Lock is a held path lock.
type Lock struct {
	locks *Locks
	key   string
	e     *entry
	once  sync.Once
}

// Acquire blocks until the lock for path is free or ctx is done.
func (l *Locks) Acquire(ctx context.Context, path string) (*Lock, error) {
	key := filepath.Clean(path)

	l.mu.Lock()
	if l.paths == nil {
		l.paths = make(map[string]*entry)
	}
	e, ok := l.paths[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.paths[key] = e
	}
	e.refs++
	l.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.unref(key, e)
		return nil, fmt.Errorf("waiting for lock on %s: %w", key, err)
	}
	return &Lock{locks: l, key: key, e: e}, nil
}

// TryAcquire takes the lock for path only if it is free.
func (l *Locks) TryAcquire(path string) (*Lock, bool) {
	key := filepath.Clean(path)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paths == nil {
		l.paths = make(map[string]*entry)
	}
	e, ok := l.paths[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.paths[key] = e
	}
	if !e.sem.TryAcquire(1) {
		if e.refs == 0 {
			delete(l.paths, key)
		}
		return nil, false
	}
	e.refs++
	return &Lock{locks: l, key: key, e: e}, true
}

// Release releases the lock. Calling it more than once is a no-op.
func (lk *Lock) Release() {
	if lk == nil {
		return
	}
	lk.once.Do(func() {
		lk.e.sem.Release(1)
		lk.locks.unref(lk.key, lk.e)
	})
}

// Len returns the number of paths currently held or waited on.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.paths)
}

func (l *Locks) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 && l.paths[key] == e {
		delete(l.paths, key)
	}
}
