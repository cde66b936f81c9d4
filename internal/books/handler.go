package books

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"bookreviews/internal/paginate"
	"bookreviews/internal/ratings"
	"bookreviews/internal/reviews"
	"bookreviews/internal/web"
	"bookreviews/pkg/logger"
)

const (
	msgNoSuchBook  = "Sorry, no such book"
	msgBookMissing = "Sorry, error. Try one more time."
	msgServerError = "Something went wrong, please try again"
)

// RatingLookup fetches the external aggregate rating for an ISBN.
type RatingLookup interface {
	Lookup(ctx context.Context, isbn string) (*ratings.Rating, error)
}

type Handler struct {
	Repo    *Repo
	Reviews *reviews.Repo
	Ratings RatingLookup
}

func NewHandler(repo *Repo, reviewRepo *reviews.Repo, lookup RatingLookup) *Handler {
	return &Handler{Repo: repo, Reviews: reviewRepo, Ratings: lookup}
}

// RegisterAPIRoutes mounts the unauthenticated JSON lookup.
func (h *Handler) RegisterAPIRoutes(r gin.IRoutes) {
	r.GET("/api/", h.api)
	r.GET("/api/:isbn", h.api)
}

// RegisterRoutes mounts the pages that need a logged-in user; rg must apply
// the session guard.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/search/:username", h.searchForm)
	rg.POST("/search/:username", h.searchSubmit)
	rg.GET("/search_results/:username", h.searchResults)
	rg.POST("/search_results/:username", h.searchResults)
	rg.GET("/search_results/:username/:searching", h.searchResults)
	rg.POST("/search_results/:username/:searching", h.searchResults)
	rg.GET("/book_page/:username/:book_isbn", h.bookPage)
}

func (h *Handler) searchForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "search.html", gin.H{"username": c.Param("username")})
}

func (h *Handler) searchSubmit(c *gin.Context) {
	username := c.Param("username")
	c.Redirect(http.StatusSeeOther, resultsPath(username, strings.TrimSpace(c.PostForm("searching"))))
}

// resultsPath drops the query segment when q is empty; the results page then
// lists the whole catalog.
func resultsPath(username, q string) string {
	p := "/search_results/" + url.PathEscape(username)
	if q != "" {
		p += "/" + url.PathEscape(q)
	}
	return p
}

func searchQuery(c *gin.Context) string {
	for _, v := range []string{
		c.Param("searching"),
		c.Query("searching"),
		c.Query("q"),
		c.PostForm("searching"),
		c.PostForm("q"),
	} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (h *Handler) searchResults(c *gin.Context) {
	username := c.Param("username")
	q := searchQuery(c)

	found, err := h.Repo.Search(c.Request.Context(), q)
	if err != nil {
		logger.Log.WithError(err).WithField("query", q).Error("search failed")
		web.Error(c, http.StatusInternalServerError, msgServerError)
		return
	}
	if len(found) == 0 {
		web.Error(c, http.StatusNotFound, msgNoSuchBook)
		return
	}

	p := paginate.Parse(c.Query("page"), c.Query("per_page"))
	base := resultsPath(username, q)

	web.Render(c, http.StatusOK, "search_results.html", gin.H{
		"username":   username,
		"searching":  q,
		"rows":       paginate.Slice(found, p.Offset(), p.PerPage),
		"pagination": paginate.New(base, p, len(found)),
	})
}

func (h *Handler) bookPage(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")
	isbn := strings.TrimSpace(c.Param("book_isbn"))

	book, err := h.Repo.GetByISBN(ctx, isbn)
	if err != nil {
		logger.Log.WithError(err).WithField("isbn", isbn).Error("get book failed")
		web.Error(c, http.StatusInternalServerError, msgServerError)
		return
	}
	if book == nil {
		web.Error(c, http.StatusNotFound, msgBookMissing)
		return
	}

	// a failed rating lookup only hides the rating
	var rating *ratings.Rating
	if h.Ratings != nil {
		rating, err = h.Ratings.Lookup(ctx, isbn)
		if err != nil {
			if !errors.Is(err, ratings.ErrNoRating) {
				logger.Log.WithError(err).WithField("isbn", isbn).Warn("rating lookup failed")
			}
			rating = nil
		}
	}

	all, err := h.Reviews.ListByISBN(ctx, isbn)
	if err != nil {
		logger.Log.WithError(err).WithField("isbn", isbn).Error("list reviews failed")
		web.Error(c, http.StatusInternalServerError, msgServerError)
		return
	}
	mine, err := h.Reviews.CountByUser(ctx, isbn, username)
	if err != nil {
		logger.Log.WithError(err).WithField("isbn", isbn).Error("count reviews failed")
		web.Error(c, http.StatusInternalServerError, msgServerError)
		return
	}

	p := paginate.Parse(c.Query("page"), c.Query("per_page"))
	base := "/book_page/" + url.PathEscape(username) + "/" + url.PathEscape(isbn)

	web.Render(c, http.StatusOK, "book_page.html", gin.H{
		"username":   username,
		"book":       book,
		"gd_rate":    rating,
		"reviews":    paginate.Slice(all, p.Offset(), p.PerPage),
		"reviewed":   mine > 0,
		"pagination": paginate.New(base, p, len(all)),
	})
}

func (h *Handler) api(c *gin.Context) {
	isbn := strings.TrimSpace(c.Param("isbn"))
	if isbn == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No isbn"})
		return
	}

	stats, err := h.Repo.Stats(c.Request.Context(), isbn)
	if err != nil {
		logger.Log.WithError(err).WithField("isbn", isbn).Error("api lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
