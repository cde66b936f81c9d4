package database

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseURL(t *testing.T) {
	cases := []struct {
		in      string
		dialect Dialect
		prefix  string
	}{
		{"postgres://u:p@localhost/books", Postgres, "postgres://u:p@localhost/books"},
		{"postgresql://localhost/books", Postgres, "postgresql://localhost/books"},
		{"sqlite://data/books.db", SQLite, "data/books.db?"},
		{"data/books.db", SQLite, "data/books.db?"},
		{"file:books?mode=memory&cache=shared", SQLite, "file:books?mode=memory&cache=shared&"},
	}
	for _, tc := range cases {
		d, dsn, err := ParseURL(tc.in)
		if err != nil {
			t.Fatalf("ParseURL(%q): %v", tc.in, err)
		}
		if d != tc.dialect || !strings.HasPrefix(dsn, tc.prefix) {
			t.Fatalf("ParseURL(%q) = %s %q", tc.in, d, dsn)
		}
	}

	if _, _, err := ParseURL("mysql://localhost/books"); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
	if _, _, err := ParseURL("  "); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver for empty url, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: Postgres}
	got := pg.Rebind(`SELECT * FROM books WHERE isbn = ? OR title = ?`)
	if got != `SELECT * FROM books WHERE isbn = $1 OR title = $2` {
		t.Fatalf("postgres rebind: %s", got)
	}

	lite := &DB{Dialect: SQLite}
	q := `SELECT * FROM books WHERE isbn = ?`
	if lite.Rebind(q) != q {
		t.Fatalf("sqlite rebind should be identity")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(Config{URL: "file:migratetest?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var n int
	if err := db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", n)
	}

	for _, table := range []string{"users", "books", "reviews", "sessions"} {
		if _, err := db.ExecContext(context.Background(), `SELECT COUNT(*) FROM `+table); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
