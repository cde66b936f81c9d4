package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"bookreviews/internal/books"
	"bookreviews/internal/catalog"
	"bookreviews/internal/reviews"
	"bookreviews/pkg/database"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/utils"
)

func main() {
	var (
		booksOut   = flag.String("books", "data/books.csv", "output CSV path for the catalog")
		reviewsOut = flag.String("reviews", "data/reviews.csv", "output CSV path for reviews")
	)
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("config")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := database.MustOpen(database.Config{URL: cfg.Database.URL})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Log.WithError(err).Fatal("db migrate failed")
	}

	allBooks, err := books.NewRepo(db).ListAll(ctx)
	if err != nil {
		logger.Log.WithError(err).Fatal("list books")
	}
	allReviews, err := reviews.NewRepo(db).ListAll(ctx)
	if err != nil {
		logger.Log.WithError(err).Fatal("list reviews")
	}

	if err := writeFile(*booksOut, func(f *os.File) error { return catalog.WriteBooks(f, allBooks) }); err != nil {
		logger.Log.WithError(err).Fatal("export books failed")
	}
	if err := writeFile(*reviewsOut, func(f *os.File) error { return catalog.WriteReviews(f, allReviews) }); err != nil {
		logger.Log.WithError(err).Fatal("export reviews failed")
	}

	logger.Log.Infof("exported %d books to %s and %d reviews to %s",
		len(allBooks), *booksOut, len(allReviews), *reviewsOut)
}

func writeFile(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
