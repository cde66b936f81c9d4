package reviews

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

// Create stores a review. Nothing stops the same user reviewing a book twice.
func (r *Repo) Create(ctx context.Context, isbn, username, text string, rating int) (*models.Review, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO reviews (isbn, username, review, rating)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, isbn, username, text, rating).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, isbn, username, review, rating, created_at
		FROM reviews
		WHERE id = ?
	`, id)

	var review models.Review
	if err := row.Scan(&review.ID, &review.ISBN, &review.Username, &review.Review, &review.Rating, &review.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &review, nil
}

// ListByISBN returns every review of a book, oldest first. Callers page the
// result in memory.
func (r *Repo) ListByISBN(ctx context.Context, isbn string) ([]models.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, isbn, username, review, rating, created_at
		FROM reviews
		WHERE isbn = ?
		ORDER BY created_at ASC, id ASC
	`, isbn)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(&review.ID, &review.ISBN, &review.Username, &review.Review, &review.Rating, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// CountByUser reports how many reviews username left on isbn.
func (r *Repo) CountByUser(ctx context.Context, isbn, username string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reviews WHERE isbn = ? AND username = ?
	`, isbn, username).Scan(&n); err != nil {
		return 0, fmt.Errorf("count user reviews: %w", err)
	}
	return n, nil
}

// ListAll returns every review in insertion order.
func (r *Repo) ListAll(ctx context.Context) ([]models.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, isbn, username, review, rating, created_at
		FROM reviews
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all reviews: %w", err)
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(&review.ID, &review.ISBN, &review.Username, &review.Review, &review.Rating, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		out = append(out, review)
	}
	return out, rows.Err()
}

// Tally is the per-book review summary used to seed a ratings mirror.
type Tally struct {
	ISBN      string
	Count     int
	TextCount int
	Average   float64
}

func (r *Repo) Tallies(ctx context.Context) ([]Tally, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT isbn,
		       COUNT(*),
		       SUM(CASE WHEN review <> '' THEN 1 ELSE 0 END),
		       AVG(rating)
		FROM reviews
		GROUP BY isbn
		ORDER BY isbn ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("tally reviews: %w", err)
	}
	defer rows.Close()

	var out []Tally
	for rows.Next() {
		var t Tally
		var avg sql.NullFloat64
		if err := rows.Scan(&t.ISBN, &t.Count, &t.TextCount, &avg); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		t.Average = avg.Float64
		out = append(out, t)
	}
	return out, rows.Err()
}
