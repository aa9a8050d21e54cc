package inkwell

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database caching public story metadata per user.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and bootstraps the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS stories (
    username TEXT NOT NULL,
    id TEXT NOT NULL,
    title TEXT NOT NULL,
    slug TEXT NOT NULL,
    created_at TEXT NOT NULL,
    fetched_at TEXT NOT NULL,
    PRIMARY KEY (username, id)
);

CREATE INDEX IF NOT EXISTS idx_stories_username ON stories(username);

CREATE TABLE IF NOT EXISTS avatars (
    username TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    fetched_at TEXT NOT NULL
);
`)
	return err
}

// ReplaceStories atomically swaps a user's cached story metadata for the
// freshly fetched listing. An empty listing clears the user's rows.
func (s *Store) ReplaceStories(username string, stories []StoryMeta) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM stories WHERE username = ?`, username); err != nil {
		return err
	}
	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	for _, m := range stories {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO stories (username, id, title, slug, created_at, fetched_at) VALUES (?, ?, ?, ?, ?, ?)`,
			username, m.ID, m.Title, m.Slug, m.CreatedAt, fetchedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListStories returns a user's cached stories ordered by creation date
// descending.
func (s *Store) ListStories(username string) ([]StoryMeta, error) {
	rows, err := s.db.Query(`SELECT id, title, slug, created_at FROM stories WHERE username = ? ORDER BY created_at DESC, id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []StoryMeta
	for rows.Next() {
		var m StoryMeta
		if err := rows.Scan(&m.ID, &m.Title, &m.Slug, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Username = username
		m.Link = "/" + username + "/" + m.ID
		stories = append(stories, m)
	}
	return stories, rows.Err()
}

// ListUsers returns cache state for every user with cached stories, ordered
// by username.
func (s *Store) ListUsers() ([]CachedUser, error) {
	rows, err := s.db.Query(`SELECT username, COUNT(*), MAX(fetched_at) FROM stories GROUP BY username ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []CachedUser
	for rows.Next() {
		var u CachedUser
		if err := rows.Scan(&u.Username, &u.StoryCount, &u.FetchedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser evicts a user's cached stories and avatar metadata.
func (s *Store) DeleteUser(username string) error {
	if _, err := s.db.Exec(`DELETE FROM stories WHERE username = ?`, username); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM avatars WHERE username = ?`, username)
	return err
}

// SaveAvatar upserts cached avatar metadata for a user.
func (s *Store) SaveAvatar(av Avatar) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO avatars (username, filename, width, height, size, fetched_at) VALUES (?, ?, ?, ?, ?, ?)`,
		av.Username, av.Filename, av.Width, av.Height, av.Size, av.FetchedAt)
	return err
}

// GetAvatar returns cached avatar metadata for a user, or sql.ErrNoRows.
func (s *Store) GetAvatar(username string) (Avatar, error) {
	var av Avatar
	err := s.db.QueryRow(`SELECT username, filename, width, height, size, fetched_at FROM avatars WHERE username = ?`, username).
		Scan(&av.Username, &av.Filename, &av.Width, &av.Height, &av.Size, &av.FetchedAt)
	return av, err
}
