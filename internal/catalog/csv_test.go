package catalog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bookreviews/pkg/models"
)

func TestReadBooks(t *testing.T) {
	in := "ISBN,Title,Author,Year\n" +
		"0380795272,Krondor: The Betrayal,Raymond E. Feist,1998\n" +
		"1416949658,\"The Dark Is Rising, Book 2\",Susan Cooper,1973\n" +
		",No ISBN,Someone,2000\n" +
		"0553803700,I Robot,Isaac Asimov,\n"

	got, err := ReadBooks(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []models.Book{
		{ISBN: "0380795272", Title: "Krondor: The Betrayal", Author: "Raymond E. Feist", Year: 1998},
		{ISBN: "1416949658", Title: "The Dark Is Rising, Book 2", Author: "Susan Cooper", Year: 1973},
		{ISBN: "0553803700", Title: "I Robot", Author: "Isaac Asimov"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d books, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadBooks_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"no isbn":    "title,author\nx,y\n",
		"bad year":   "isbn,title,author,year\n1,T,A,nineteen\n",
		"bad quotes": "isbn,title\n1,\"unterminated\n",
	}
	for name, in := range cases {
		if _, err := ReadBooks(strings.NewReader(in)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestWriteBooksRoundTrip(t *testing.T) {
	books := []models.Book{{ISBN: "1", Title: "A, with comma", Author: "B", Year: 2001}}
	var buf bytes.Buffer
	if err := WriteBooks(&buf, books); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadBooks(&buf)
	if err != nil || len(got) != 1 || got[0] != books[0] {
		t.Fatalf("round trip: %+v %v", got, err)
	}
}

func TestWriteReviews(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := WriteReviews(&buf, []models.Review{{ID: 7, ISBN: "1", Username: "ann", Rating: 4, Review: "line one\nline two", CreatedAt: at}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "id,isbn,username,rating,review,created_at\n") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, `7,1,ann,4,"line one`+"\n"+`line two",2024-03-01T12:00:00Z`) {
		t.Fatalf("unexpected row: %q", out)
	}
}
