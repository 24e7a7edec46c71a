package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	dbpkg "github.com/garnizeh/studybuddy/internal/db"
)

func TestNew_Close_GetConn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	conn := d.GetConn()
	if conn == nil {
		t.Fatalf("expected non-nil sql.DB from GetConn")
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestExec_QueryRow_QueryRows(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer d.Close()

	_, err = d.Exec(ctx, `CREATE TABLE IF NOT EXISTS items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT);`)
	if err != nil {
		t.Fatalf("Exec create table returned error: %v", err)
	}

	for _, name := range []string{"foo", "bar"} {
		if _, err := d.Exec(ctx, `INSERT INTO items (name) VALUES (?)`, name); err != nil {
			t.Fatalf("Exec insert returned error: %v", err)
		}
	}

	row := d.QueryRow(ctx, `SELECT name FROM items WHERE id = ?`, 1)
	var name string
	if err := row.Scan(&name); err != nil {
		t.Fatalf("QueryRow scan returned error: %v", err)
	}
	if name != "foo" {
		t.Fatalf("expected name 'foo' got %q", name)
	}

	rows, err := d.QueryRows(ctx, `SELECT name FROM items ORDER BY id`)
	if err != nil {
		t.Fatalf("QueryRows returned error: %v", err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, n)
	}
	if len(got) != 2 || got[1] != "bar" {
		t.Fatalf("unexpected rows: %v", got)
	}
}

func TestNew_BadDSN(t *testing.T) {
	ctx := context.Background()
	_, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "missing", "dir", "test.db"), nil)
	if err == nil {
		t.Fatalf("expected error for unreachable path, got nil")
	}
}
