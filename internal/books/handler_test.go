package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bookreviews/internal/ratings"
	"bookreviews/internal/reviews"
	"bookreviews/internal/testutil"
	"bookreviews/internal/web"
	"bookreviews/pkg/database"
	"bookreviews/pkg/models"
)

type stubRatings struct {
	rating *ratings.Rating
	err    error
	calls  int
}

func (s *stubRatings) Lookup(_ context.Context, _ string) (*ratings.Rating, error) {
	s.calls++
	return s.rating, s.err
}

func newTestRouter(t *testing.T, lookup RatingLookup) (*gin.Engine, *database.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenInMemoryDB(t)
	h := NewHandler(NewRepo(db), reviews.NewRepo(db), lookup)

	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.SetHTMLTemplate(web.Templates())
	h.RegisterAPIRoutes(r)
	h.RegisterRoutes(r)
	return r, db
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func seedNumbered(t *testing.T, db *database.DB, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		testutil.SeedBooks(t, db, models.Book{
			ISBN:   fmt.Sprintf("978%07d", i),
			Title:  fmt.Sprintf("Book %02d", i),
			Author: "Series Author",
			Year:   2000 + i,
		})
	}
}

func TestSearch_NoMatches(t *testing.T) {
	r, db := newTestRouter(t, nil)
	seedNumbered(t, db, 3)

	rec := get(r, "/search_results/alice/zzz")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), msgNoSuchBook) {
		t.Fatalf("expected no-results page, got %d %s", rec.Code, rec.Body)
	}
}

func TestSearch_PaginatesDeterministically(t *testing.T) {
	r, db := newTestRouter(t, nil)
	seedNumbered(t, db, 25)

	first := get(r, "/search_results/alice/series")
	if first.Code != http.StatusOK {
		t.Fatalf("search: %d %s", first.Code, first.Body)
	}
	body := first.Body.String()
	for i := 1; i <= 10; i++ {
		if !strings.Contains(body, fmt.Sprintf("Book %02d", i)) {
			t.Fatalf("page 1 missing Book %02d", i)
		}
	}
	if strings.Contains(body, "Book 11") {
		t.Fatalf("page 1 leaked an 11th row")
	}
	if !strings.Contains(body, "Displaying 1 - 10 of 25") {
		t.Fatalf("page 1 footer wrong: %s", body)
	}

	last := get(r, "/search_results/alice/series?page=3&per_page=10").Body.String()
	if !strings.Contains(last, "Book 21") || !strings.Contains(last, "Book 25") || strings.Contains(last, "Book 20") {
		t.Fatalf("page 3 rows wrong: %s", last)
	}

	again := get(r, "/search_results/alice/series")
	if again.Body.String() != body {
		t.Fatalf("same query produced different pages")
	}
}

func TestSearch_CaseInsensitivePrefix(t *testing.T) {
	r, db := newTestRouter(t, nil)
	testutil.SeedBooks(t, db,
		models.Book{ISBN: "0547928211", Title: "The Fellowship of the Ring", Author: "J.R.R. Tolkien", Year: 1954},
		models.Book{ISBN: "0380795272", Title: "Krondor: The Betrayal", Author: "Raymond E. Feist", Year: 1998},
	)

	cases := map[string]string{
		"/search_results/bob/tHe%20FELLOW": "Fellowship",
		"/search_results/bob/j.r.r":        "Fellowship",
		"/search_results/bob/038079":       "Krondor",
		"/search_results/bob?q=raymond":    "Krondor",
		"/search_results/bob?searching=kr": "Krondor",
	}
	for path, want := range cases {
		rec := get(r, path)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("%s: %d, want %q in %s", path, rec.Code, want, rec.Body)
		}
	}

	// prefix only: "ring" is inside a title but starts nothing
	if rec := get(r, "/search_results/bob/ring"); rec.Code != http.StatusNotFound {
		t.Fatalf("infix match should not hit, got %d", rec.Code)
	}
}

func TestSearch_EmptyQueryListsCatalog(t *testing.T) {
	r, db := newTestRouter(t, nil)
	seedNumbered(t, db, 12)

	rec := get(r, "/search_results/alice")
	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("empty query: %d %s", rec.Code, body)
	}
	for i := 1; i <= 10; i++ {
		if !strings.Contains(body, fmt.Sprintf("Book %02d", i)) {
			t.Fatalf("page 1 missing Book %02d", i)
		}
	}
	if strings.Contains(body, "Book 11") || !strings.Contains(body, "Displaying 1 - 10 of 12") {
		t.Fatalf("page 1 of the full catalog is wrong: %s", body)
	}
	if !strings.Contains(body, `href="/search_results/alice?page=2`) {
		t.Fatalf("next page link should keep the bare results path: %s", body)
	}
}

func TestSearch_EmptyCatalog(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rec := get(r, "/search_results/alice")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), msgNoSuchBook) {
		t.Fatalf("empty catalog: %d %s", rec.Code, rec.Body)
	}
}

func TestSearchSubmit_Redirects(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	cases := map[string]string{
		"a b/c": "/search_results/alice/a%20b%2Fc",
		"  ":    "/search_results/alice",
		"":      "/search_results/alice",
	}
	for searching, want := range cases {
		form := url.Values{"searching": {searching}}
		req := httptest.NewRequest(http.MethodPost, "/search/alice", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("submit %q: %d %s", searching, rec.Code, rec.Body)
		}
		if loc := rec.Header().Get("Location"); loc != want {
			t.Fatalf("submit %q: location %q, want %q", searching, loc, want)
		}
	}
}

func TestBookPage_Missing(t *testing.T) {
	stub := &stubRatings{}
	r, _ := newTestRouter(t, stub)

	rec := get(r, "/book_page/alice/nope")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), msgBookMissing) {
		t.Fatalf("missing book: %d %s", rec.Code, rec.Body)
	}
	if stub.calls != 0 {
		t.Fatalf("rating looked up for a missing book")
	}
}

func TestBookPage_ShowsRatingAndReviews(t *testing.T) {
	stub := &stubRatings{rating: &ratings.Rating{ISBN: "0380795272", AverageRating: "3.92", WorkRatingsCount: 6172}}
	r, db := newTestRouter(t, stub)
	testutil.SeedBooks(t, db, models.Book{ISBN: "0380795272", Title: "Krondor: The Betrayal", Author: "Raymond E. Feist", Year: 1998})
	testutil.SeedUser(t, db, "carol", "x")
	testutil.SeedReview(t, db, "0380795272", "carol", "Solid adventure", 4)

	rec := get(r, "/book_page/alice/0380795272")
	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("book page: %d %s", rec.Code, body)
	}
	for _, want := range []string{"Krondor: The Betrayal", "3.92", "6172", "Solid adventure", "Leave a review"} {
		if !strings.Contains(body, want) {
			t.Fatalf("book page missing %q", want)
		}
	}

	// carol has reviewed, so her page hides the form
	mine := get(r, "/book_page/carol/0380795272").Body.String()
	if strings.Contains(mine, "Leave a review") || !strings.Contains(mine, "already reviewed") {
		t.Fatalf("review form shown to a reviewer")
	}
}

func TestBookPage_RatingFailureDegrades(t *testing.T) {
	stub := &stubRatings{err: errors.New("upstream down")}
	r, db := newTestRouter(t, stub)
	testutil.SeedBooks(t, db, models.Book{ISBN: "1", Title: "Dune", Author: "Frank Herbert", Year: 1965})

	rec := get(r, "/book_page/alice/1")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "rating unavailable") {
		t.Fatalf("expected degraded page, got %d %s", rec.Code, rec.Body)
	}
}

func TestAPI_NotFoundCases(t *testing.T) {
	r, db := newTestRouter(t, nil)
	testutil.SeedBooks(t, db, models.Book{ISBN: "unreviewed", Title: "Quiet", Author: "Nobody", Year: 2001})

	cases := map[string]string{
		"/api/":           "No isbn",
		"/api/unknown":    "Not found",
		"/api/unreviewed": "Not found",
	}
	for path, want := range cases {
		rec := get(r, path)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
		var out map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if out["error"] != want {
			t.Fatalf("%s: error = %q, want %q", path, out["error"], want)
		}
	}
}

func TestAPI_Aggregates(t *testing.T) {
	r, db := newTestRouter(t, nil)
	testutil.SeedBooks(t, db, models.Book{ISBN: "0441172717", Title: "Dune", Author: "Frank Herbert", Year: 1965})
	testutil.SeedUser(t, db, "a", "x")
	testutil.SeedUser(t, db, "b", "x")
	testutil.SeedReview(t, db, "0441172717", "a", "great", 5)
	testutil.SeedReview(t, db, "0441172717", "b", "ok", 2)
	testutil.SeedReview(t, db, "0441172717", "a", "", 4)

	rec := get(r, "/api/0441172717")
	if rec.Code != http.StatusOK {
		t.Fatalf("api: %d %s", rec.Code, rec.Body)
	}
	var got models.BookStats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := models.BookStats{Title: "Dune", Author: "Frank Herbert", Year: 1965, ISBN: "0441172717", ReviewCount: 3, AverageScore: 11.0 / 3.0}
	if got.Title != want.Title || got.Author != want.Author || got.Year != want.Year || got.ISBN != want.ISBN || got.ReviewCount != want.ReviewCount {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if diff := got.AverageScore - want.AverageScore; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("average = %v, want %v", got.AverageScore, want.AverageScore)
	}
}
