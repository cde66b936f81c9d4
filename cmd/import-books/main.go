package main

import (
	"context"
	"flag"
	"os"
	"time"

	"bookreviews/internal/books"
	"bookreviews/internal/catalog"
	"bookreviews/pkg/database"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/utils"
)

func main() {
	in := flag.String("in", "books.csv", "input CSV with isbn,title,author,year columns")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall import timeout")
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("config")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.MustOpen(database.Config{URL: cfg.Database.URL})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Log.WithError(err).Fatal("db migrate failed")
	}

	f, err := os.Open(*in)
	if err != nil {
		logger.Log.WithError(err).Fatal("open input")
	}
	defer f.Close()

	parsed, err := catalog.ReadBooks(f)
	if err != nil {
		logger.Log.WithError(err).Fatalf("parse %s", *in)
	}

	n, err := books.NewRepo(db).SaveBooks(ctx, parsed)
	if err != nil {
		logger.Log.WithError(err).Fatal("import failed")
	}
	logger.Log.Infof("imported %d books from %s", n, *in)
}
