package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"bookreviews/internal/feed"
	"bookreviews/pkg/logger"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP review feed address")
	raw := flag.Bool("raw", false, "print events as received instead of one summary line each")
	retry := flag.Duration("retry", time.Second, "delay before reconnecting")
	flag.Parse()

	for {
		if err := tail(*addr, *raw); err != nil {
			logger.Log.WithError(err).Warn("feed-client: disconnected")
		}
		time.Sleep(*retry)
	}
}

func tail(addr string, raw bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	logger.Log.Infof("feed-client: connected to %s", addr)
	return printEvents(conn, raw, func(s string) { fmt.Println(s) })
}

// printEvents reads newline-delimited feed messages until r is exhausted.
func printEvents(r io.Reader, raw bool, emit func(string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Bytes()
		if raw {
			emit(string(line))
			continue
		}
		emit(describe(line))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

// describe renders one feed line for a terminal. Lines that are not feed
// messages are passed through unchanged.
func describe(line []byte) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return string(line)
	}

	switch head.Type {
	case feed.Welcome:
		var h feed.Hello
		if err := json.Unmarshal(line, &h); err != nil {
			return string(line)
		}
		return fmt.Sprintf("connected over %s (%d subscribers)", h.Transport, h.Clients)
	case feed.ReviewCreated:
		var ev feed.ReviewEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return string(line)
		}
		s := fmt.Sprintf("%s  %s rated %s %d/5", ev.At.Local().Format(time.DateTime), ev.Username, ev.ISBN, ev.Rating)
		if text := strings.TrimSpace(ev.Review); text != "" {
			s += ": " + text
		}
		return s
	}
	return string(line)
}
