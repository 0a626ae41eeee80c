package folio

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/eringen/folio/content"
)

// Store wraps a SQLite database holding the writing collection. The catalog
// is the source of truth; the store is reseeded from it on start and reload.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during a reseed; the busy timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
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
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    date TEXT NOT NULL,
    read_time TEXT NOT NULL,
    image TEXT NOT NULL,
    category TEXT NOT NULL,
    position INTEGER NOT NULL,
    content TEXT NOT NULL,
    seq INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_seq ON posts(seq);
`)
	return err
}

const postColumns = `slug, id, title, excerpt, date, read_time, image, category, position, content`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (content.Post, error) {
	var p content.Post
	err := r.Scan(&p.Slug, &p.ID, &p.Title, &p.Excerpt, &p.Date, &p.ReadTime, &p.Image, &p.Category, &p.Position, &p.Content)
	return p, err
}

// ReplacePosts swaps the whole collection in one transaction. Readers see
// either the old or the new collection, never a mix.
func (s *Store) ReplacePosts(posts []content.Post) error {
	if err := content.ValidatePosts(posts); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM posts`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO posts (` + postColumns + `, seq) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	// seq records collection order, so ties in Position keep load order.
	for i, p := range posts {
		if _, err := stmt.Exec(p.Slug, p.ID, p.Title, p.Excerpt, p.Date, p.ReadTime, p.Image, p.Category, p.Position, p.Content, i); err != nil {
			return fmt.Errorf("insert %s: %w", p.Slug, err)
		}
	}
	return tx.Commit()
}

// ListPosts returns the collection in display order.
func (s *Store) ListPosts() ([]content.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
