// Package server assembles the HTTP surface of the book review site.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookreviews/internal/auth"
	"bookreviews/internal/books"
	"bookreviews/internal/feed"
	"bookreviews/internal/reviews"
	"bookreviews/internal/web"
	"bookreviews/pkg/database"
	"bookreviews/pkg/logger"
)

type Deps struct {
	DB       *database.DB
	Sessions *auth.Sessions
	// Ratings may be nil; book pages then render without an external rating.
	Ratings books.RatingLookup
	Hub     *feed.Hub
	// HashCost overrides the bcrypt cost when non-zero.
	HashCost int
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})

	r.Use(gin.Recovery(), logger.Middleware(), web.NoCache())
	r.SetHTMLTemplate(web.Templates())
	r.Use(auth.LoadSession(d.Sessions))

	r.GET("/", func(c *gin.Context) {
		web.Render(c, http.StatusOK, "index.html", nil)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": string(d.DB.Dialect)})
	})
	r.GET("/ready", ready(d))
	if d.Hub != nil {
		r.GET("/ws", feed.WSHandler(d.Hub))
	}

	authHandler := auth.NewHandler(d.Sessions.Repo, d.Sessions)
	if d.HashCost != 0 {
		authHandler.HashCost = d.HashCost
	}
	authHandler.RegisterRoutes(r)

	bookRepo := books.NewRepo(d.DB)
	reviewRepo := reviews.NewRepo(d.DB)
	bookHandler := books.NewHandler(bookRepo, reviewRepo, d.Ratings)
	bookHandler.RegisterAPIRoutes(r)

	var pub reviews.Publisher
	if d.Hub != nil {
		pub = d.Hub
	}

	protected := r.Group("", auth.RequireUser())
	bookHandler.RegisterRoutes(protected)
	reviews.NewHandler(reviewRepo, pub).RegisterRoutes(protected)

	return r
}

func ready(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats feed.Stats
		if d.Hub != nil {
			stats = d.Hub.Stats()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	}
}
