package testutil

import (
	"context"
	"strings"
	"testing"

	"bookreviews/pkg/database"
	"bookreviews/pkg/models"
)

// OpenInMemoryDB opens a migrated in-memory SQLite database unique to the test.
// The DB is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T) *database.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_", "&", "_").Replace(t.Name())
	d, err := database.Open(database.Config{URL: "file:" + name + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := database.Migrate(d); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return d
}

// SeedBooks inserts books directly, bypassing the repos.
func SeedBooks(t *testing.T, d *database.DB, books ...models.Book) {
	t.Helper()
	for _, b := range books {
		if _, err := d.ExecContext(context.Background(),
			`INSERT INTO books (isbn, title, author, year) VALUES (?, ?, ?, ?)`,
			b.ISBN, b.Title, b.Author, b.Year); err != nil {
			t.Fatalf("seed book %s: %v", b.ISBN, err)
		}
	}
}

// SeedUser inserts a user row with an already computed hash.
func SeedUser(t *testing.T, d *database.DB, username, hash string) {
	t.Helper()
	if _, err := d.ExecContext(context.Background(),
		`INSERT INTO users (username, hash) VALUES (?, ?)`, username, hash); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
}

// SeedReview inserts a review row directly.
func SeedReview(t *testing.T, d *database.DB, isbn, username, text string, rating int) {
	t.Helper()
	if _, err := d.ExecContext(context.Background(),
		`INSERT INTO reviews (isbn, username, review, rating) VALUES (?, ?, ?, ?)`,
		isbn, username, text, rating); err != nil {
		t.Fatalf("seed review %s/%s: %v", isbn, username, err)
	}
}
