package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"bookreviews/internal/ratings"
	"bookreviews/internal/reviews"
	"bookreviews/pkg/database"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/utils"
)

func main() {
	var (
		file   = flag.String("file", "data/review_counts.json", "mirror JSON file")
		addr   = flag.String("addr", ":9000", "listen address")
		export = flag.Bool("export", false, "write the mirror file from local reviews and exit")
	)
	flag.Parse()

	if *export {
		if err := exportMirror(*file); err != nil {
			logger.Log.WithError(err).Fatal("export failed")
		}
		return
	}

	m, err := ratings.LoadMirror(*file)
	if err != nil {
		logger.Log.WithError(err).Fatal("load mirror")
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware())
	r.GET(ratings.MirrorPath, m.Handler())

	logger.Log.Infof("ratings mirror serving %d isbns on http://localhost%s%s", m.Len(), *addr, ratings.MirrorPath)
	if err := r.Run(*addr); err != nil {
		logger.Log.WithError(err).Fatal("mirror stopped")
	}
}

// exportMirror turns the local review tallies into upstream-shaped ratings so
// the web app can run against the mirror offline.
func exportMirror(path string) error {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(database.Config{URL: cfg.Database.URL})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	tallies, err := reviews.NewRepo(db).Tallies(ctx)
	if err != nil {
		return err
	}

	out := make([]ratings.Rating, 0, len(tallies))
	for i, t := range tallies {
		out = append(out, ratings.Rating{
			ID:                   int64(i + 1),
			ISBN:                 t.ISBN,
			RatingsCount:         t.Count,
			ReviewsCount:         t.Count,
			TextReviewsCount:     t.TextCount,
			WorkRatingsCount:     t.Count,
			WorkReviewsCount:     t.Count,
			WorkTextReviewsCount: t.TextCount,
			AverageRating:        fmt.Sprintf("%.2f", t.Average),
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := ratings.WriteMirror(path, out); err != nil {
		return err
	}
	logger.Log.Infof("exported %d ratings to %s", len(out), path)
	return nil
}
