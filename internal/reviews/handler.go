package reviews

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bookreviews/internal/feed"
	"bookreviews/internal/web"
	"bookreviews/pkg/database"
	"bookreviews/pkg/logger"
)

// Publisher receives review events; *feed.Hub implements it.
type Publisher interface {
	BroadcastJSON(v any)
}

type Handler struct {
	Repo *Repo
	Feed Publisher
}

func NewHandler(repo *Repo, pub Publisher) *Handler {
	return &Handler{Repo: repo, Feed: pub}
}

// RegisterRoutes expects rg to already enforce the session guard.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/book_page/:username/:book_isbn", h.create)
}

func (h *Handler) create(c *gin.Context) {
	username := c.Param("username")
	isbn := strings.TrimSpace(c.Param("book_isbn"))

	rating, err := strconv.Atoi(strings.TrimSpace(c.PostForm("rating")))
	if err != nil {
		web.Error(c, http.StatusBadRequest, "Please choose a rating")
		return
	}
	text := c.PostForm("review")

	review, err := h.Repo.Create(c.Request.Context(), isbn, username, text, rating)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			web.Error(c, http.StatusNotFound, "Sorry, error. Try one more time.")
			return
		}
		logger.Log.WithError(err).WithField("isbn", isbn).Error("create review failed")
		web.Error(c, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	logger.Log.WithFields(logrus.Fields{"isbn": isbn, "username": username, "rating": rating}).Info("review created")

	if h.Feed != nil && review != nil {
		ev := feed.ReviewEvent{
			Type:     feed.ReviewCreated,
			ISBN:     review.ISBN,
			Username: review.Username,
			Rating:   review.Rating,
			Review:   review.Review,
			At:       time.Now().UTC(),
		}
		go h.Feed.BroadcastJSON(ev)
	}

	c.Redirect(http.StatusSeeOther, "/book_page/"+url.PathEscape(username)+"/"+url.PathEscape(isbn))
}
