package ratings

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestMirrorServesClientLookups(t *testing.T) {
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "mirror.json")
	if err := WriteMirror(path, []Rating{
		{ISBN: "0441172717", ISBN13: "9780441172719", RatingsCount: 3, WorkRatingsCount: 3, AverageRating: "4.33"},
	}); err != nil {
		t.Fatalf("write mirror: %v", err)
	}
	m, err := LoadMirror(path)
	if err != nil {
		t.Fatalf("load mirror: %v", err)
	}

	r := gin.New()
	r.GET(MirrorPath, m.Handler())
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := NewClient(srv.URL+MirrorPath, "any-key", time.Second)

	for _, isbn := range []string{"0441172717", "9780441172719"} {
		got, err := client.Lookup(context.Background(), isbn)
		if err != nil {
			t.Fatalf("lookup %s: %v", isbn, err)
		}
		if got.AverageRating != "4.33" || got.WorkRatingsCount != 3 {
			t.Fatalf("lookup %s: %+v", isbn, got)
		}
	}

	if _, err := client.Lookup(context.Background(), "0000000000"); !errors.Is(err, ErrNoRating) {
		t.Fatalf("unknown isbn: expected ErrNoRating, got %v", err)
	}
}

func TestLoadMirror_BadFile(t *testing.T) {
	if _, err := LoadMirror(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
