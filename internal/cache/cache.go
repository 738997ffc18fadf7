// Package cache mirrors the last loaded assignments and courses into a local
// sqlite database so listings work while the backend is unreachable.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/marcus/studysync/internal/models"
)

// ErrEmpty is returned by Load before the first Save.
var ErrEmpty = errors.New("no cached snapshot")

const schema = `
CREATE TABLE IF NOT EXISTS assignments (
    id TEXT PRIMARY KEY,
    course_name TEXT NOT NULL DEFAULT '',
    due_at TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assignments_course ON assignments(course_name);

CREATE TABLE IF NOT EXISTS courses (
    name TEXT PRIMARY KEY,
    data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Cache is a sqlite-backed snapshot store.
type Cache struct {
	conn   *sql.DB
	locker *writeLocker
	log    zerolog.Logger
}

// Snapshot is what Load returns.
type Snapshot struct {
	Assignments []models.Assignment
	Courses     []models.Course
	SavedAt     time.Time
}

// Open opens or creates the cache database at path.
func Open(path string, logger zerolog.Logger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	c, err := OpenDB(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.locker = newWriteLocker(path)
	return c, nil
}

// OpenDB uses an already opened database, creating the schema if needed.
// No cross-process lock is taken for writes.
func OpenDB(conn *sql.DB, logger zerolog.Logger) (*Cache, error) {
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Cache{conn: conn, log: logger}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Save replaces the cached snapshot in one transaction.
func (c *Cache) Save(ctx context.Context, assignments []models.Assignment, courses []models.Course) error {
	if c.locker != nil {
		if err := c.locker.acquire(lockTimeout); err != nil {
			return err
		}
		defer c.locker.release()
	}

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM assignments", "DELETE FROM courses"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}

	for _, a := range assignments {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode assignment %s: %w", a.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (id, course_name, due_at, data) VALUES (?, ?, ?, ?)`,
			a.ID, a.CourseName, a.DueAt, string(data)); err != nil {
			return fmt.Errorf("insert assignment %s: %w", a.ID, err)
		}
	}
	for _, co := range courses {
		data, err := json.Marshal(co)
		if err != nil {
			return fmt.Errorf("encode course %s: %w", co.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO courses (name, data) VALUES (?, ?)`, co.Name, string(data)); err != nil {
			return fmt.Errorf("insert course %s: %w", co.Name, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('saved_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, now); err != nil {
		return fmt.Errorf("write saved_at: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.log.Debug().Int("assignments", len(assignments)).Int("courses", len(courses)).Msg("snapshot cached")
	return nil
}

// Load returns the cached snapshot, assignments ordered by due date.
func (c *Cache) Load(ctx context.Context) (*Snapshot, error) {
	var saved string
	err := c.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'saved_at'`).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read saved_at: %w", err)
	}

	snap := &Snapshot{}
	snap.SavedAt, _ = time.Parse(time.RFC3339Nano, saved)

	if err := queryJSON(ctx, c.conn, `SELECT data FROM assignments ORDER BY due_at = '', due_at, id`, &snap.Assignments); err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	if err := queryJSON(ctx, c.conn, `SELECT data FROM courses ORDER BY name`, &snap.Courses); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	return snap, nil
}

func queryJSON[T any](ctx context.Context, conn *sql.DB, query string, out *[]T) error {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return err
		}
		*out = append(*out, v)
	}
	return rows.Err()
}
