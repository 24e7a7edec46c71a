package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	dbfs "github.com/garnizeh/studybuddy/db"
	"github.com/garnizeh/studybuddy/internal/db"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()

	d, err := db.New(ctx, filepath.Join(t.TempDir(), "migrate.db"), nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count < 1 {
		t.Fatalf("expected at least 1 migration recorded, got %d", count)
	}

	for _, table := range []string{"accounts", "user_profiles", "chats", "chat_messages"} {
		var name string
		r := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table)
		if err := r.Scan(&name); err != nil {
			t.Fatalf("expected %s table exists: %v", table, err)
		}
	}
}

func TestMigrate_AppliesInOrderAndSkipsNonSQL(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, filepath.Join(t.TempDir(), "order.db"), nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer d.Close()

	fsys := fstest.MapFS{
		"migrations/0002_add.sql":  {Data: []byte(`ALTER TABLE t ADD COLUMN extra TEXT;`)},
		"migrations/0001_base.sql": {Data: []byte(`CREATE TABLE t (id INTEGER PRIMARY KEY);`)},
		"migrations/README.md":     {Data: []byte(`not a migration`)},
	}
	if err := db.Migrate(ctx, d, fsys); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 recorded migrations, got %d", count)
	}
	if _, err := d.Exec(ctx, `INSERT INTO t (id, extra) VALUES (1, 'x')`); err != nil {
		t.Fatalf("expected column from second migration: %v", err)
	}
}

func TestMigrate_BrokenMigration(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, filepath.Join(t.TempDir(), "broken.db"), nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer d.Close()

	fsys := fstest.MapFS{
		"migrations/0001_bad.sql": {Data: []byte(`CREATE TABLE (`)},
	}
	if err := db.Migrate(ctx, d, fsys); err == nil {
		t.Fatalf("expected error for broken migration")
	}
}
