package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/randalmurphal/dfs/pkg/dfs"
)

// SQLiteStore persists specs to SQLite.
// It is suitable for single-process use, such as the CLI spec library.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates a spec library.
// The path should be a file path (e.g., "./specs.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: an in-memory database is private to its connection,
	// and writes are serialized by mu anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS specs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			revision INTEGER NOT NULL,
			saved TEXT NOT NULL,
			data BLOB NOT NULL,
			UNIQUE (name, revision)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(name string, spec *dfs.Spec) (Info, error) {
	if err := checkName(name); err != nil {
		return Info{}, err
	}
	data, err := encode(spec)
	if err != nil {
		return Info{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Info{}, ErrStoreClosed
	}

	info := Info{
		ID:    uuid.NewString(),
		Name:  name,
		Saved: time.Now().UTC(),
		Size:  int64(len(data)),
	}
	err = s.db.QueryRow(`
		INSERT INTO specs (id, name, revision, saved, data)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(revision) FROM specs WHERE name = ?), 0) + 1,
			?, ?
		)
		RETURNING revision
	`, info.ID, name, name, info.Saved.Format(time.RFC3339Nano), data).Scan(&info.Revision)
	if err != nil {
		return Info{}, fmt.Errorf("save spec: %w", err)
	}
	return info, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(name string) (*dfs.Spec, Info, error) {
	return s.load(name, `
		SELECT id, revision, saved, data FROM specs
		WHERE name = ? ORDER BY revision DESC LIMIT 1
	`, name)
}

// LoadRevision implements Store. Revision 0 means the latest.
func (s *SQLiteStore) LoadRevision(name string, rev int) (*dfs.Spec, Info, error) {
	if rev == 0 {
		return s.Load(name)
	}
	return s.load(name, `
		SELECT id, revision, saved, data FROM specs
		WHERE name = ? AND revision = ?
	`, name, rev)
}

func (s *SQLiteStore) load(name, query string, args ...any) (*dfs.Spec, Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, Info{}, ErrStoreClosed
	}

	info := Info{Name: name}
	var saved string
	var data []byte
	err := s.db.QueryRow(query, args...).Scan(&info.ID, &info.Revision, &saved, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Info{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, Info{}, fmt.Errorf("load spec: %w", err)
	}
	info.Saved, _ = time.Parse(time.RFC3339Nano, saved)
	info.Size = int64(len(data))

	spec, err := dfs.FromJSON(data)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode %s revision %d: %w", name, info.Revision, err)
	}
	return spec, info, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]Info, error) {
	return s.query(`
		SELECT id, name, revision, saved, LENGTH(data) FROM specs AS a
		WHERE revision = (SELECT MAX(revision) FROM specs AS b WHERE b.name = a.name)
		ORDER BY name
	`)
}

// History implements Store.
func (s *SQLiteStore) History(name string) ([]Info, error) {
	return s.query(`
		SELECT id, name, revision, saved, LENGTH(data) FROM specs
		WHERE name = ? ORDER BY revision
	`, name)
}

func (s *SQLiteStore) query(query string, args ...any) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var info Info
		var saved string
		if err := rows.Scan(&info.ID, &info.Name, &info.Revision, &saved, &info.Size); err != nil {
			return nil, fmt.Errorf("scan spec info: %w", err)
		}
		info.Saved, _ = time.Parse(time.RFC3339Nano, saved)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate specs: %w", err)
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM specs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete spec: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
