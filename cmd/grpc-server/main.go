package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"bookreviews/internal/books"
	"bookreviews/internal/grpcserver"
	"bookreviews/pkg/database"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("config")
	}
	logger.SetLevel(cfg.LogLevel)

	db := database.MustOpen(database.Config{URL: cfg.Database.URL})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Log.WithError(err).Fatal("db migrate failed")
	}

	listener, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Log.WithError(err).Fatal("grpc listen failed")
	}

	srv := grpcserver.New(books.NewRepo(db))

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Log.Infof("shutdown signal received: %s", sig)
		srv.GracefulStop()
	}()

	logger.Log.Infof("gRPC server listening on %s", cfg.Server.GRPCAddr)
	if err := srv.Serve(listener); err != nil {
		logger.Log.WithError(err).Fatal("grpc server stopped")
	}
}
