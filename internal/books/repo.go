package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookreviews/pkg/database"
	"bookreviews/pkg/models"
)

type Repo struct {
	DB *database.DB
}

func NewRepo(db *database.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT isbn, title, author, year
		FROM books
		WHERE isbn = ?
	`, isbn)

	var b models.Book
	if err := row.Scan(&b.ISBN, &b.Title, &b.Author, &b.Year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &b, nil
}

// Search treats q as a case-insensitive prefix of isbn, title or author, so
// an empty q matches every book. LIKE wildcards typed by the user are passed
// through untouched.
func (r *Repo) Search(ctx context.Context, q string) ([]models.Book, error) {
	pattern := q + "%"
	rows, err := r.DB.QueryContext(ctx, `
		SELECT isbn, title, author, year
		FROM books
		WHERE LOWER(isbn) LIKE LOWER(?)
		   OR LOWER(title) LIKE LOWER(?)
		   OR LOWER(author) LIKE LOWER(?)
		ORDER BY title ASC, isbn ASC
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	out := make([]models.Book, 0)
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &b.Year); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Stats aggregates a book's reviews. The join is an inner join, so a book
// nobody has reviewed yields nil just like an unknown ISBN.
func (r *Repo) Stats(ctx context.Context, isbn string) (*models.BookStats, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT b.title, b.author, b.year, b.isbn,
		       COUNT(rv.rating), AVG(rv.rating)
		FROM books b
		JOIN reviews rv ON rv.isbn = b.isbn
		WHERE b.isbn = ?
		GROUP BY b.title, b.author, b.year, b.isbn
	`, isbn)

	var s models.BookStats
	var avg sql.NullFloat64
	if err := row.Scan(&s.Title, &s.Author, &s.Year, &s.ISBN, &s.ReviewCount, &avg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("book stats: %w", err)
	}
	s.AverageScore = avg.Float64
	return &s, nil
}

// SaveBooks upserts a batch of catalog rows in one transaction and returns
// how many were written.
func (r *Repo) SaveBooks(ctx context.Context, books []models.Book) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, r.DB.Rebind(`
		INSERT INTO books (isbn, title, author, year)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (isbn) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			year = excluded.year
	`))
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, b := range books {
		if b.ISBN == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, b.ISBN, b.Title, b.Author, b.Year); err != nil {
			return n, fmt.Errorf("upsert book %s: %w", b.ISBN, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// ListAll returns the whole catalog ordered by isbn.
func (r *Repo) ListAll(ctx context.Context) ([]models.Book, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT isbn, title, author, year
		FROM books
		ORDER BY isbn ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &b.Year); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
