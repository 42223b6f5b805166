package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/KaramelBytes/solarscope-cli/internal/table"
)

// Cache memoizes loaded tables per absolute path. An entry is reloaded when
// the file's modification time or size changes, or after Invalidate.
// Get always hands out a clone, so callers never share cached columns.
type Cache struct {
	opt Options
	log *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	tbl     *table.Table
}

// NewCache creates an empty cache. A nil logger disables diagnostics.
func NewCache(opt Options, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{opt: opt, log: log, entries: make(map[string]cacheEntry)}
}

// Get returns the table for path, loading it on first use or when stale.
func (c *Cache) Get(path string) (*table.Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		c.Invalidate(abs)
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	c.mu.Lock()
	e, ok := c.entries[abs]
	c.mu.Unlock()
	if ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.log.Debug("dataset cache hit", zap.String("path", abs))
		return e.tbl.Clone(), nil
	}

	c.log.Debug("dataset cache load", zap.String("path", abs), zap.Bool("stale", ok))
	t, err := Load(abs, c.opt)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[abs] = cacheEntry{modTime: info.ModTime(), size: info.Size(), tbl: t}
	c.mu.Unlock()
	return t.Clone(), nil
}

// Invalidate drops the entry for path, if any.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.Lock()
	delete(c.entries, abs)
	c.mu.Unlock()
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Watch invalidates entries as soon as the watched files are written,
// replaced or removed, and reports each affected path on the returned
// channel. Parent directories are watched so editors that save by rename are
// seen. The channel closes when ctx is done.
func (c *Cache) Watch(ctx context.Context, paths ...string) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	wanted := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("resolve path: %w", err)
		}
		wanted[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}

	out := make(chan string, len(paths))
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				abs, err := filepath.Abs(ev.Name)
				if err != nil {
					continue
				}
				if _, ok := wanted[abs]; !ok {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				c.Invalidate(abs)
				c.log.Debug("dataset changed", zap.String("path", abs), zap.String("op", ev.Op.String()))
				select {
				case out <- abs:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.log.Warn("dataset watcher error", zap.Error(err))
			}
		}
	}()
	return out, nil
}
