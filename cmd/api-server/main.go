package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookreviews/internal/auth"
	"bookreviews/internal/feed"
	"bookreviews/internal/ratings"
	"bookreviews/internal/server"
	"bookreviews/pkg/database"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/utils"
)

func main() {
	envFile := flag.String("env", ".env", "optional env file loaded before the environment is read")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), utils.Usage())
	}
	flag.Parse()

	cfg, err := utils.LoadConfig(*envFile)
	if err != nil {
		flag.Usage()
		logger.Log.WithError(err).Fatal("config")
	}
	logger.SetLevel(cfg.LogLevel)
	gin.SetMode(cfg.Server.GinMode)
	logger.Log.Info(cfg.String())

	db := database.MustOpen(database.Config{URL: cfg.Database.URL})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Log.WithError(err).Fatal("db migrate failed")
	}

	sessions := auth.NewSessions(auth.NewRepo(db), auth.TokenService{
		Secret:   []byte(cfg.Session.Secret),
		Issuer:   "bookreviews",
		Duration: cfg.Session.TTL,
	}, cfg.Session.CookieName, cfg.Session.Secure)

	hub := feed.NewHub()
	tcpSrv := feed.NewServer(cfg.Server.FeedAddr, hub)
	// bind early so a taken port fails startup
	if _, err := tcpSrv.Listen(); err != nil {
		logger.Log.WithError(err).Fatal("feed listen failed")
	}

	router := server.New(server.Deps{
		DB:       db,
		Sessions: sessions,
		Ratings:  ratings.NewClient(cfg.Ratings.URL, cfg.Ratings.Key, cfg.Ratings.Timeout),
		Hub:      hub,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Log.Infof("HTTP server listening on %s", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Infof("shutdown signal received: %s", sig)
	case err := <-errCh:
		logger.Log.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("http shutdown")
	}
	if err := tcpSrv.Close(); err != nil {
		logger.Log.WithError(err).Warn("feed shutdown")
	}

	wg.Wait()
	logger.Log.Info("servers stopped")
}
