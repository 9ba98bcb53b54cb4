// Package journal keeps an append-only SQLite record of evaluated top-level
// sources so a session can be rebuilt by replaying them in order.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rphilander/lispy"
)

const schema = `CREATE TABLE IF NOT EXISTS entries (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	source     TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// Entry is one recorded source.
type Entry struct {
	Seq       int64
	Source    string
	CreatedAt string // RFC 3339, UTC
}

// Journal is a handle on one journal database file.
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the journal at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One connection keeps appends strictly ordered.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db, path: path}, nil
}

func (j *Journal) Path() string { return j.path }

// Append records src as the newest entry.
func (j *Journal) Append(src string) error {
	_, err := j.db.Exec(
		"INSERT INTO entries (source, created_at) VALUES (?, ?)",
		src, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

// Entries returns every entry, oldest first.
func (j *Journal) Entries() ([]Entry, error) {
	rows, err := j.db.Query("SELECT seq, source, created_at FROM entries ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}

// Replay evaluates every entry in order against env and returns how many ran.
// It stops at the first entry that fails.
func (j *Journal) Replay(env *lispy.Env) (int, error) {
	entries, err := j.Entries()
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if _, err := lispy.Run(e.Source, env); err != nil {
			return i, fmt.Errorf("replaying entry %d %q: %w", e.Seq, e.Source, err)
		}
	}
	return len(entries), nil
}

// Truncate removes every entry.
func (j *Journal) Truncate() error {
	if _, err := j.db.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
