package data

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader produces a fresh catalog.
type Loader func(ctx context.Context) (*Catalog, error)

// DirLoader loads the catalog from dir.
func DirLoader(dir string) Loader {
	return func(ctx context.Context) (*Catalog, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return LoadDir(dir)
	}
}

// Source memoizes the catalog: the first call loads it, later calls reuse
// it until Invalidate. Concurrent first calls share one load, and a failed
// load is not cached.
type Source struct {
	load Loader

	mu      sync.RWMutex
	catalog *Catalog
	gen     uint64

	group singleflight.Group

	subMu sync.Mutex
	subs  []func(*Catalog)
}

// NewSource wraps load.
func NewSource(load Loader) *Source {
	return &Source{load: load}
}

// Catalog returns the cached catalog, loading it if needed.
func (s *Source) Catalog(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	c, gen := s.catalog, s.gen
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err, _ := s.group.Do("catalog", func() (any, error) {
		c, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		// Drop the result if Invalidate ran while loading.
		if s.gen == gen {
			s.catalog = c
		}
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

// Invalidate drops the cached catalog so the next call reloads.
func (s *Source) Invalidate() {
	s.mu.Lock()
	s.catalog = nil
	s.gen++
	s.mu.Unlock()
	s.group.Forget("catalog")
}

// Reload invalidates, loads a fresh catalog and notifies subscribers.
func (s *Source) Reload(ctx context.Context) (*Catalog, error) {
	s.Invalidate()
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	s.subMu.Lock()
	subs := append([]func(*Catalog){}, s.subs...)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(c)
	}
	return c, nil
}

// Subscribe registers fn to run after every successful Reload.
func (s *Source) Subscribe(fn func(*Catalog)) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}
