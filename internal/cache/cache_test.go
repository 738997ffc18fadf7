package cache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/marcus/studysync/internal/models"
)

func memCache(t *testing.T) *Cache {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	conn.SetMaxOpenConns(1)
	c, err := OpenDB(conn, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func fileCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "snapshot.db"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSaveLoad(t *testing.T) {
	drivers := map[string]func(*testing.T) *Cache{
		"mattn":   memCache,
		"modernc": fileCache,
	}
	id := int64(4)
	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			c := open(t)
			ctx := context.Background()

			if _, err := c.Load(ctx); !errors.Is(err, ErrEmpty) {
				t.Fatalf("Load() before Save = %v, want ErrEmpty", err)
			}

			assignments := []models.Assignment{
				{ID: "b", Title: "Later", CourseName: "Math", DueAt: "2025-03-01T10:00:00Z"},
				{ID: "c", Title: "Undated", CourseName: "Art"},
				{ID: "a", Title: "Soon", CourseName: "Math", DueAt: "2025-02-01T10:00:00Z", ReminderAdded: true},
			}
			courses := []models.Course{
				{ID: &id, Name: "Math", ReminderList: "Math HW", Enabled: true},
				{Name: "Art"},
			}
			if err := c.Save(ctx, assignments, courses); err != nil {
				t.Fatal(err)
			}

			snap, err := c.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, a := range snap.Assignments {
				got = append(got, a.ID)
			}
			if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
				t.Errorf("order = %v, want [a b c]", got)
			}
			if !snap.Assignments[0].ReminderAdded {
				t.Error("reminder flag lost")
			}
			if len(snap.Courses) != 2 || snap.Courses[1].Name != "Math" || snap.Courses[1].IsManual() {
				t.Errorf("courses = %+v", snap.Courses)
			}
			if snap.SavedAt.IsZero() {
				t.Error("SavedAt not set")
			}

			// Save replaces, never merges.
			if err := c.Save(ctx, assignments[:1], nil); err != nil {
				t.Fatal(err)
			}
			snap, _ = c.Load(ctx)
			if len(snap.Assignments) != 1 || len(snap.Courses) != 0 {
				t.Errorf("after replace: %d assignments, %d courses", len(snap.Assignments), len(snap.Courses))
			}
		})
	}
}
