package ratings

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// MirrorPath is where the mirror answers, matching the upstream API.
const MirrorPath = "/book/review_counts.json"

// File is the document the mirror serves from: the same body the upstream
// API returns for a multi-ISBN query.
type File struct {
	Books []Rating `json:"books"`
}

// Mirror answers review_counts lookups from a fixed set of ratings.
type Mirror struct {
	byISBN map[string]Rating
}

func NewMirror(books []Rating) *Mirror {
	m := &Mirror{byISBN: make(map[string]Rating, len(books)*2)}
	for _, b := range books {
		if b.ISBN != "" {
			m.byISBN[b.ISBN] = b
		}
		if b.ISBN13 != "" {
			m.byISBN[b.ISBN13] = b
		}
	}
	return m
}

func LoadMirror(path string) (*Mirror, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mirror file: %w", err)
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode mirror file: %w", err)
	}
	return NewMirror(f.Books), nil
}

func WriteMirror(path string, books []Rating) error {
	b, err := json.MarshalIndent(File{Books: books}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func (m *Mirror) Len() int { return len(m.byISBN) }

// Handler serves GET ?isbns=a,b,c. Unknown ISBNs are left out; when none
// match the answer is 404 like upstream.
func (m *Mirror) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Query("isbns"))
		if raw == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "isbns required"})
			return
		}

		out := File{Books: []Rating{}}
		for _, isbn := range strings.Split(raw, ",") {
			if r, ok := m.byISBN[strings.TrimSpace(isbn)]; ok {
				out.Books = append(out.Books, r)
			}
		}
		if len(out.Books) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no books match"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
