// Package lister returns the immediate entries of a directory, serving them
// from the cache store when it knows the directory and falling back to a
// live filesystem listing otherwise.
//
// A directory with no cached records is indistinguishable from one that was
// scanned and found empty, so empty directories are rescanned on every call.
// Cached records are never invalidated: files created after a directory was
// first cached are not seen until the cache is cleared.
package lister

import (
	"context"
	"fmt"
	"sync"

	"github.com/harrison/fsearch/internal/cache"
	"github.com/harrison/fsearch/internal/fileutil"
)

// RecordStore is the subset of cache.Store the lister reads and writes.
type RecordStore interface {
	FindByDirectory(ctx context.Context, dir string) ([]cache.FileRecord, error)
	UpsertAll(ctx context.Context, paths []string) ([]cache.FileRecord, error)
}

// FileSystem lists the immediate entries of a directory as absolute paths.
type FileSystem interface {
	ListDirectory(dir string) ([]string, error)
}

// Logger receives diagnostic messages. *logger.ConsoleLogger satisfies it.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

// Lister implements cache-first directory listing.
type Lister struct {
	store       RecordStore
	fs          FileSystem
	logger      Logger
	syncUpserts bool

	pending sync.WaitGroup
}

// Option configures a Lister.
type Option func(*Lister)

// WithFileSystem replaces the OS filesystem primitive.
func WithFileSystem(fs FileSystem) Option {
	return func(l *Lister) { l.fs = fs }
}

// WithLogger sets the logger. A nil logger discards messages.
func WithLogger(logger Logger) Option {
	return func(l *Lister) { l.logger = logger }
}

// WithSyncUpserts makes List write observed entries to the store before
// returning instead of in the background.
func WithSyncUpserts() Option {
	return func(l *Lister) { l.syncUpserts = true }
}

// New creates a Lister backed by store. A nil store disables caching and
// every call performs a live listing.
func New(store RecordStore, opts ...Option) *Lister {
	l := &Lister{
		store: store,
		fs:    fileutil.OSFileSystem{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List returns the entries of dir. It never fails: a directory that is
// missing or unreadable yields an empty slice.
func (l *Lister) List(ctx context.Context, dir string) []string {
	if cached := l.cached(ctx, dir); len(cached) > 0 {
		l.debug(fmt.Sprintf("cache hit for %s (%d entries)", dir, len(cached)))
		return cached
	}

	entries, err := l.fs.ListDirectory(dir)
	if err != nil {
		l.debug(fmt.Sprintf("skipping %s: %v", dir, err))
		return []string{}
	}
	l.debug(fmt.Sprintf("cache miss for %s, listed %d entries", dir, len(entries)))

	if l.store != nil && len(entries) > 0 {
		// Cache writes outlive the caller's deadline or cancellation; a
		// directory is written whole or not at all.
		detached := context.WithoutCancel(ctx)
		if l.syncUpserts {
			l.upsertAll(detached, dir, entries)
		} else {
			l.pending.Add(1)
			go func() {
				defer l.pending.Done()
				l.upsertAll(detached, dir, entries)
			}()
		}
	}

	return entries
}

// Wait blocks until every background upsert started by List has finished.
// Call it before closing the store.
func (l *Lister) Wait() {
	l.pending.Wait()
}

func (l *Lister) cached(ctx context.Context, dir string) []string {
	if l.store == nil {
		return nil
	}

	records, err := l.store.FindByDirectory(ctx, dir)
	if err != nil {
		l.warn(fmt.Sprintf("cache lookup for %s failed, listing live: %v", dir, err))
		return nil
	}

	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.Path)
	}
	return paths
}

func (l *Lister) upsertAll(ctx context.Context, dir string, entries []string) {
	if _, err := l.store.UpsertAll(ctx, entries); err != nil {
		l.warn(fmt.Sprintf("failed to cache %d entries of %s: %v", len(entries), dir, err))
	}
}

func (l *Lister) debug(message string) {
	if l.logger != nil {
		l.logger.LogDebug(message)
	}
}

func (l *Lister) warn(message string) {
	if l.logger != nil {
		l.logger.LogWarn(message)
	}
}
