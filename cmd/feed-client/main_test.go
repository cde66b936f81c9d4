package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"bookreviews/internal/feed"
)

func TestDescribeReviewEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	line, err := json.Marshal(feed.ReviewEvent{
		Type:     feed.ReviewCreated,
		ISBN:     "0441172717",
		Username: "paul",
		Rating:   5,
		Review:   " The spice must flow ",
		At:       at,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := describe(line)
	want := "2024-05-01 09:30:00  paul rated 0441172717 5/5: The spice must flow"
	if got != want {
		t.Fatalf("describe = %q, want %q", got, want)
	}
}

func TestPrintEvents(t *testing.T) {
	in := `{"type":"welcome","transport":"tcp","clients":2}` + "\n" +
		`{"type":"review.created","isbn":"1","username":"ann","rating":3,"at":"2024-05-01T09:30:00Z"}` + "\n" +
		"not json\n" +
		`{"type":"something.else"}` + "\n"

	var out []string
	err := printEvents(strings.NewReader(in), false, func(s string) { out = append(out, s) })
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 lines, got %q", out)
	}
	if out[0] != "connected over tcp (2 subscribers)" {
		t.Fatalf("welcome line: %q", out[0])
	}
	if !strings.HasSuffix(out[1], "ann rated 1 3/5") {
		t.Fatalf("review line: %q", out[1])
	}
	if out[2] != "not json" || out[3] != `{"type":"something.else"}` {
		t.Fatalf("pass-through lines: %q", out[2:])
	}

	var raw []string
	_ = printEvents(strings.NewReader(in), true, func(s string) { raw = append(raw, s) })
	if len(raw) != 4 || raw[0] != `{"type":"welcome","transport":"tcp","clients":2}` {
		t.Fatalf("raw mode should echo lines: %q", raw)
	}
}
