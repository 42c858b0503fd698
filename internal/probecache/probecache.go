package probecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vidsift/internal/config"
	"vidsift/internal/media/ffprobe"
)

// Store persists ffprobe results across runs, backed by SQLite. Entries are
// keyed by path and validated against the file's size and modification time,
// so a changed file is always re-probed.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.CacheDir, "probecache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the cache database file.
func (s *Store) Path() string { return s.path }

// Get returns the cached probe result for path when the stored size and
// modification time still match. A stale or missing entry is a miss, not
// an error.
func (s *Store) Get(ctx context.Context, path string, size int64, modTimeUnix int64) (ffprobe.Result, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT size, mod_time, probe_json FROM probe_results WHERE path = ?`,
		path,
	)
	var (
		storedSize int64
		storedMod  int64
		probeJSON  string
	)
	if err := row.Scan(&storedSize, &storedMod, &probeJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ffprobe.Result{}, false, nil
		}
		return ffprobe.Result{}, false, fmt.Errorf("get probe result: %w", err)
	}
	if storedSize != size || storedMod != modTimeUnix {
		return ffprobe.Result{}, false, nil
	}

	var result ffprobe.Result
	if err := json.Unmarshal([]byte(probeJSON), &result); err != nil {
		return ffprobe.Result{}, false, fmt.Errorf("decode probe result: %w", err)
	}
	return result, true, nil
}

// Put stores or replaces the probe result for path.
func (s *Store) Put(ctx context.Context, path string, size int64, modTimeUnix int64, result ffprobe.Result) error {
	probeJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode probe result: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO probe_results (path, size, mod_time, probe_json, created_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             size = excluded.size, mod_time = excluded.mod_time,
             probe_json = excluded.probe_json, created_at = excluded.created_at`,
		path,
		size,
		modTimeUnix,
		string(probeJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put probe result: %w", err)
	}
	return nil
}

// Prune removes entries whose files no longer exist on disk and returns the
// number removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM probe_results`)
	if err != nil {
		return 0, fmt.Errorf("list cached paths: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return 0, err
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var removed int64
	for _, path := range stale {
		res, err := s.db.ExecContext(ctx, `DELETE FROM probe_results WHERE path = ?`, path)
		if err != nil {
			return removed, fmt.Errorf("prune %s: %w", path, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("rows affected: %w", err)
		}
		removed += affected
	}
	return removed, nil
}

// Clear removes every cached entry and returns the number removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM probe_results`)
	if err != nil {
		return 0, fmt.Errorf("clear probe cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats summarizes the cache for diagnostic output.
type Stats struct {
	DBPath    string
	Entries   int64
	SizeBytes int64
}

// Stats returns entry count and on-disk size of the cache database.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{DBPath: s.path}
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM probe_results`)
	if err := row.Scan(&stats.Entries); err != nil {
		return stats, fmt.Errorf("count probe results: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}
