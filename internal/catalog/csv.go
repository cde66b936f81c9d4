// Package catalog reads and writes the CSV files used to seed and back up
// the book catalog.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bookreviews/pkg/models"
)

var (
	BookHeader   = []string{"isbn", "title", "author", "year"}
	ReviewHeader = []string{"id", "isbn", "username", "rating", "review", "created_at"}
)

// ReadBooks parses a books CSV. The first row must name the columns; extra
// columns are ignored and rows without an isbn or title are skipped.
func ReadBooks(r io.Reader) ([]models.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"isbn", "title"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("missing %q column", col)
		}
	}

	var out []models.Book
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		b := models.Book{
			ISBN:   valueAt(header, row, "isbn"),
			Title:  valueAt(header, row, "title"),
			Author: valueAt(header, row, "author"),
		}
		if b.ISBN == "" || b.Title == "" {
			continue
		}
		if raw := valueAt(header, row, "year"); raw != "" {
			year, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse year for %s: %w", line, b.ISBN, err)
			}
			b.Year = year
		}
		out = append(out, b)
	}
	return out, nil
}

func WriteBooks(w io.Writer, books []models.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(BookHeader); err != nil {
		return err
	}
	for _, b := range books {
		if err := cw.Write([]string{b.ISBN, b.Title, b.Author, strconv.Itoa(b.Year)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteReviews(w io.Writer, reviews []models.Review) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReviewHeader); err != nil {
		return err
	}
	for _, rv := range reviews {
		if err := cw.Write([]string{
			strconv.FormatInt(rv.ID, 10),
			rv.ISBN,
			rv.Username,
			strconv.Itoa(rv.Rating),
			rv.Review,
			rv.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(strings.TrimPrefix(name, "\ufeff")))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
