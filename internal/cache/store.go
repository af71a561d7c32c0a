// Package cache persists the files observed by directory listings so that
// repeated lookups can skip the filesystem.
//
// The store is record-oriented: one row per file, unique on path, with a
// secondary index on the parent directory. A directory listing is
// reconstructed by querying that index. Rows are never removed when files
// disappear from disk; only Clear deletes them.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrStoreUnavailable is returned when the backing database cannot be
// opened, configured or migrated. A store that failed this way is unusable.
var ErrStoreUnavailable = errors.New("cache store unavailable")

// Store manages the SQLite database holding FileRecords
type Store struct {
	db     *sql.DB
	dbPath string
}

// Stats summarizes the store contents
type Stats struct {
	Path          string
	Records       int64
	Directories   int64
	SchemaVersion int
}

// NewStore opens the database at dbPath, creating it and its parent
// directory if needed, and applies pending migrations.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create database directory: %w", ErrStoreUnavailable, err)
		}
	}

	store, err := openAndInitStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return store, nil
}

// openAndInitStore opens the database connection and initializes schema
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// The first statement forces a connection, surfacing unreadable or
	// corrupt files before migrations run.
	pragmas := []string{
		"PRAGMA cache_size=-16000", // 16MB cache
		"PRAGMA quick_check",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(context.Background(), db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("run %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return store, nil
}

// dsn applies connection pragmas to every pooled connection. busy_timeout
// lets concurrent writers wait on the lock instead of failing, and immediate
// transactions keep two openers from deadlocking on lock upgrade.
func dsn(dbPath string) string {
	return dbPath + "?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL&_txlock=immediate"
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(ctx context.Context, db *sql.DB, query string, maxRetries int, baseDelay time.Duration, args ...any) error {
	return retryOnLock(ctx, maxRetries, baseDelay, func() error {
		_, err := db.ExecContext(ctx, query, args...)
		return err
	})
}

// retryOnLock runs fn until it succeeds, fails with something other than a
// lock error, or maxRetries attempts are used up.
func retryOnLock(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if !isLockError(err) {
			return err
		}

		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(1<<attempt)):
		}
	}
	return lastErr
}

func isLockError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// Path returns the database location the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FindByDirectory returns every record whose parent directory is dir,
// ordered by path. An empty result only means nothing is cached for dir.
func (s *Store) FindByDirectory(ctx context.Context, dir string) ([]FileRecord, error) {
	query := `SELECT path, directory, base_name, stem, extension, updated_at
		FROM files WHERE directory = ? ORDER BY path ASC`
	return s.queryRecords(ctx, query, filepath.Clean(dir))
}

// FindByPath returns the record for path, or an empty slice.
func (s *Store) FindByPath(ctx context.Context, path string) ([]FileRecord, error) {
	query := `SELECT path, directory, base_name, stem, extension, updated_at
		FROM files WHERE path = ?`
	return s.queryRecords(ctx, query, filepath.Clean(path))
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	records := make([]FileRecord, 0)
	for rows.Next() {
		var rec FileRecord
		var updatedAt sql.NullTime
		if err := rows.Scan(&rec.Path, &rec.Directory, &rec.BaseName, &rec.Stem, &rec.Extension, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		if updatedAt.Valid {
			rec.UpdatedAt = updatedAt.Time
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return records, nil
}

const upsertQuery = `INSERT INTO files (path, directory, base_name, stem, extension, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		directory = excluded.directory,
		base_name = excluded.base_name,
		stem = excluded.stem,
		extension = excluded.extension,
		updated_at = excluded.updated_at`

// Upsert derives a FileRecord from path and inserts it, or overwrites the
// derived fields of the existing row for that path. Repeated calls with the
// same path converge to the same stored record; concurrent calls for one
// path leave exactly one row.
func (s *Store) Upsert(ctx context.Context, path string) (FileRecord, error) {
	records, err := s.UpsertAll(ctx, []string{path})
	if err != nil {
		return FileRecord{}, err
	}
	return records[0], nil
}

// UpsertAll upserts every path in a single transaction, so readers see
// either none or all of them. Callers pass the entries of one directory
// listing; a partly written directory would otherwise look fully cached.
// An invalid path fails the whole batch before anything is written.
func (s *Store) UpsertAll(ctx context.Context, paths []string) ([]FileRecord, error) {
	now := time.Now().UTC()
	records := make([]FileRecord, 0, len(paths))
	for _, path := range paths {
		rec, err := NewFileRecord(path)
		if err != nil {
			return nil, fmt.Errorf("upsert: %w", err)
		}
		rec.UpdatedAt = now
		records = append(records, rec)
	}
	if len(records) == 0 {
		return records, nil
	}

	err := retryOnLock(ctx, 5, 10*time.Millisecond, func() error {
		return s.upsertTx(ctx, records)
	})
	if err != nil {
		if len(records) == 1 {
			return nil, fmt.Errorf("upsert %s: %w", records[0].Path, err)
		}
		return nil, fmt.Errorf("upsert %d records under %s: %w", len(records), records[0].Directory, err)
	}

	return records, nil
}

func (s *Store) upsertTx(ctx context.Context, records []FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Path, rec.Directory, rec.BaseName, rec.Stem, rec.Extension, rec.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Stats reports how many records and distinct directories are cached.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.dbPath}

	query := `SELECT COUNT(*), COUNT(DISTINCT directory) FROM files`
	if err := s.db.QueryRowContext(ctx, query).Scan(&stats.Records, &stats.Directories); err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}

	version, err := s.GetLatestVersion(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.SchemaVersion = version

	return stats, nil
}

// Clear deletes cached records. An empty dir deletes everything, otherwise
// only the records directly under dir. It returns the number of rows removed.
func (s *Store) Clear(ctx context.Context, dir string) (int64, error) {
	var result sql.Result
	var err error
	if dir == "" {
		result, err = s.db.ExecContext(ctx, `DELETE FROM files`)
	} else {
		result, err = s.db.ExecContext(ctx, `DELETE FROM files WHERE directory = ?`, filepath.Clean(dir))
	}
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}
