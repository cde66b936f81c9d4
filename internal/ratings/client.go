// Package ratings looks up aggregate rating counts for an ISBN from a
// Goodreads-compatible review_counts.json endpoint.
package ratings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoRating means the API knows nothing about the ISBN.
var ErrNoRating = errors.New("no rating for isbn")

// Rating mirrors one entry of the "books" array in the API response.
type Rating struct {
	ID                   int64  `json:"id"`
	ISBN                 string `json:"isbn"`
	ISBN13               string `json:"isbn13"`
	RatingsCount         int    `json:"ratings_count"`
	ReviewsCount         int    `json:"reviews_count"`
	TextReviewsCount     int    `json:"text_reviews_count"`
	WorkRatingsCount     int    `json:"work_ratings_count"`
	WorkReviewsCount     int    `json:"work_reviews_count"`
	WorkTextReviewsCount int    `json:"work_text_reviews_count"`
	AverageRating        string `json:"average_rating"`
}

type response struct {
	Books []Rating `json:"books"`
}

type Client struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

func NewClient(baseURL, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		Key:     key,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Lookup fetches the rating counts for isbn.
func (c *Client) Lookup(ctx context.Context, isbn string) (*Rating, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, ErrNoRating
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("ratings: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("key", c.Key)
	q.Set("isbns", isbn)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("ratings: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ratings: request: %w", err)
	}
	defer resp.Body.Close()

	// the API answers 404 for ISBNs it does not know
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoRating
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ratings: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ratings: decode: %w", err)
	}
	if len(out.Books) == 0 {
		return nil, ErrNoRating
	}
	return &out.Books[0], nil
}
