package feed

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestTCPFeedDeliversEvents(t *testing.T) {
	hub := NewHub()
	srv := NewServer("127.0.0.1:0", hub)
	addr, err := srv.Listen()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	rd := bufio.NewReader(conn)

	line, err := rd.ReadString('\n')
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	var hello Hello
	if err := json.Unmarshal([]byte(line), &hello); err != nil || hello.Type != Welcome || hello.Transport != "tcp" {
		t.Fatalf("unexpected welcome %q (err %v)", line, err)
	}

	waitFor(t, func() bool { return hub.Stats().TCPClients == 1 })

	hub.BroadcastJSON(ReviewEvent{Type: ReviewCreated, ISBN: "0380795272", Username: "alice", Rating: 4})

	line, err = rd.ReadString('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev ReviewEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != ReviewCreated || ev.ISBN != "0380795272" || ev.Username != "alice" || ev.Rating != 4 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if got := hub.Stats().Delivered; got != 1 {
		t.Fatalf("expected 1 delivery, got %d", got)
	}

	_ = conn.Close()
	waitFor(t, func() bool { return hub.Stats().TCPClients == 0 })

	if err := srv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Close")
	}
}

func TestWebSocketFeedDeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	ts := httptest.NewServer(r)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if !strings.Contains(string(msg), `"transport":"websocket"`) {
		t.Fatalf("unexpected welcome %s", msg)
	}

	waitFor(t, func() bool { return hub.Stats().WSClients == 1 })
	hub.BroadcastJSON(ReviewEvent{Type: ReviewCreated, ISBN: "x1", Username: "bob", Rating: 2, Review: "meh"})

	_, msg, err = ws.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev ReviewEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Review != "meh" || ev.Username != "bob" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	hub.BroadcastJSON(ReviewEvent{Type: ReviewCreated})
	if s := hub.Stats(); s.Delivered != 0 || s.TCPClients != 0 || s.WSClients != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}
