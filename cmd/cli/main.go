package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"bookreviews/internal/grpcserver"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/models"
)

const (
	defaultBaseURL  = "http://localhost:8080"
	defaultGRPCAddr = "localhost:50051"
)

func main() {
	global := flag.NewFlagSet("bookreviews", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "web app base URL")
	grpcAddr := global.String("grpc", defaultGRPCAddr, "gRPC book service address")
	if err := global.Parse(os.Args[1:]); err != nil {
		logger.Log.WithError(err).Fatal("parse flags")
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch args[0] {
	case "lookup":
		handleLookup(ctx, *baseURL, args[1:])
	case "rpc":
		handleRPC(ctx, *grpcAddr, args[1:])
	case "watch":
		if err := watch(*baseURL); err != nil {
			logger.Log.WithError(err).Fatal("watch")
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleLookup(ctx context.Context, baseURL string, args []string) {
	if len(args) != 1 {
		logger.Log.Fatal("usage: bookreviews lookup <isbn>")
	}

	var stats models.BookStats
	if err := getJSON(ctx, baseURL+"/api/"+url.PathEscape(args[0]), &stats); err != nil {
		logger.Log.WithError(err).Fatal("lookup failed")
	}
	printJSON(stats)
}

func handleRPC(ctx context.Context, addr string, args []string) {
	fs := flag.NewFlagSet("rpc", flag.ExitOnError)
	method := fs.String("method", "stats", "book|stats|search")
	page := fs.Int("page", 1, "search page")
	perPage := fs.Int("per-page", 10, "search page size")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		logger.Log.Fatal("usage: bookreviews rpc [-method book|stats|search] <isbn-or-query>")
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Log.WithError(err).Fatal("grpc dial")
	}
	defer conn.Close()
	client := grpcserver.NewClient(conn)

	arg := fs.Arg(0)
	var out *structpb.Struct
	switch *method {
	case "book":
		out, err = client.GetBook(ctx, arg)
	case "stats":
		out, err = client.GetBookStats(ctx, arg)
	case "search":
		out, err = client.SearchBooks(ctx, arg, *page, *perPage)
	default:
		logger.Log.Fatalf("unknown rpc method %q", *method)
	}
	if err != nil {
		logger.Log.WithError(err).Fatal("rpc failed")
	}

	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(out)
	if err != nil {
		logger.Log.WithError(err).Fatal("encode response")
	}
	fmt.Println(string(b))
}

func getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := (&http.Client{Timeout: 15 * time.Second}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: %s", endpoint, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}

func watch(baseURL string) error {
	wsURL, err := websocketURL(baseURL, "/ws")
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	logger.Log.Infof("watching review feed at %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Print(string(msg))
	}
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: path}).String(), nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Log.WithError(err).Fatal("json")
	}
	fmt.Println(string(b))
}

func printUsage() {
	fmt.Println("bookreviews [-api URL] [-grpc ADDR] <command>")
	fmt.Println("commands:")
	fmt.Println("  lookup <isbn>                        JSON API aggregate for a book")
	fmt.Println("  rpc [-method book|stats|search] <arg> call the gRPC book service")
	fmt.Println("  watch                                stream new reviews over WebSocket")
}
